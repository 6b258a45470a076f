//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/handler/api"
	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"
	"rogu-booking/tests/common/builder"
	"rogu-booking/tests/common/httptest"
	commandsmock "rogu-booking/tests/mock/commands"
	queriesmock "rogu-booking/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AccessHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockQueries  *queriesmock.MockAccessQueries
	mockCommands *commandsmock.MockAccessCommands
	controllerID uuid.UUID
}

func (s *AccessHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockAccessQueries(s.mockCtrl)
	s.mockCommands = commandsmock.NewMockAccessCommands(s.mockCtrl)
	s.controllerID = uuid.New()
	handler := api.NewAccessHandler(s.mockQueries, s.mockCommands)

	identity := func(c *gin.Context) {
		c.Set("user_id", s.controllerID)
		c.Next()
	}

	s.router.POST("/access/validate", identity, handler.Validate)
	s.router.POST("/access/check-ins", identity, handler.CheckIn)
}

func (s *AccessHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAccessHandlerSuite(t *testing.T) {
	suite.Run(t, new(AccessHandlerTestSuite))
}

func (s *AccessHandlerTestSuite) confirmedView() *queries.ReservationView {
	view := builder.NewReservationBuilder().BuildView()
	view.Status = string(reservation.StatusConfirmed)
	view.AccessToken = "tok-123"
	return view
}

// ================================================================================
// TestValidate
// ================================================================================

func (s *AccessHandlerTestSuite) TestValidate() {
	s.Run("success: echoes the reservation without counting an entry", func() {
		view := s.confirmedView()
		s.mockQueries.EXPECT().Validate(gomock.Any(), "tok-123").Return(&queries.AccessView{
			Reservation:  view,
			VenueName:    "Cancha Central",
			CheckInCount: 2,
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/access/validate", map[string]string{"token": "tok-123"}, "")
		var body resdto.AccessValidationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.True(body.Valid)
		s.Equal("Cancha Central", body.VenueName)
		s.Equal(2, body.CheckInCount)
		s.Equal(view.ID, body.Reservation.ID)
	})

	s.Run("error: 404 for an unknown token", func() {
		s.mockQueries.EXPECT().Validate(gomock.Any(), "nope").Return(nil, queries.ErrUnknownAccessToken).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/access/validate", map[string]string{"token": "nope"}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Invalid access token")
	})

	s.Run("error: 400 without a token", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/access/validate", map[string]string{}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}

// ================================================================================
// TestCheckIn
// ================================================================================

func (s *AccessHandlerTestSuite) TestCheckIn() {
	s.Run("success: records the entry for the scanning controller", func() {
		view := s.confirmedView()
		at := builder.ReferenceNow.Add(time.Hour)
		s.mockCommands.EXPECT().RecordCheckIn(gomock.Any(), "tok-123", s.controllerID).Return(&commands.CheckInResult{
			Reservation:  view,
			CheckInCount: 1,
			FirstCheckIn: true,
			CheckedInAt:  at,
		}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/access/check-ins", map[string]string{"token": "tok-123"}, "")
		var body resdto.CheckInResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.True(body.FirstCheckIn)
		s.Equal(1, body.CheckInCount)
		s.True(at.Equal(body.CheckedInAt))
	})

	s.Run("error: rejected tokens are refused with 403", func() {
		testCases := []struct {
			name string
			err  error
		}{
			{name: "unknown token", err: queries.ErrUnknownAccessToken},
			{name: "wrong day", err: reservation.ErrEntryWrongDay},
			{name: "not confirmed", err: reservation.ErrEntryNotConfirmed},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().RecordCheckIn(gomock.Any(), "tok-123", s.controllerID).Return(nil, tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/access/check-ins", map[string]string{"token": "tok-123"}, "")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "Invalid access token")
			})
		}
	})
}
