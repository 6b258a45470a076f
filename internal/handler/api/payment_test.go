//go:build unit

package api_test

import (
	"net/http"
	"testing"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/handler/api"
	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/tests/common/builder"
	"rogu-booking/tests/common/httptest"
	commandsmock "rogu-booking/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	handler := api.NewPaymentHandler(s.mockCommands)

	s.router.POST("/payments/:id/confirm", handler.Confirm)
	s.router.POST("/payments/:id/decline", handler.Decline)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

func (s *PaymentHandlerTestSuite) TestConfirm() {
	view := builder.NewReservationBuilder().BuildView()
	url := "/payments/" + view.ID.String() + "/confirm"

	s.Run("success: confirmed reservation carries its token", func() {
		confirmed := *view
		confirmed.Status = string(reservation.StatusConfirmed)
		confirmed.AccessToken = "tok-abc"
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), view.ID).Return(&confirmed, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("confirmed", body.Status)
		s.Equal("tok-abc", body.AccessToken)
	})

	s.Run("error: 409 once the hold has expired", func() {
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), view.ID).Return(nil, commands.ErrHoldExpired).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Invalid status transition")
	})

	s.Run("error: 404 for an unknown reservation", func() {
		s.mockCommands.EXPECT().ConfirmPayment(gomock.Any(), view.ID).Return(nil, commands.ErrReservationNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Reservation not found")
	})

	s.Run("error: 400 for a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/payments/x/confirm", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid reservation id")
	})
}

func (s *PaymentHandlerTestSuite) TestDecline() {
	view := builder.NewReservationBuilder().BuildView()
	url := "/payments/" + view.ID.String() + "/decline"

	s.Run("success: cancels with the payment reason", func() {
		declined := *view
		declined.Status = string(reservation.StatusCancelled)
		declined.CancelReason = string(reservation.CancelReasonPaymentDeclined)
		s.mockCommands.EXPECT().DeclinePayment(gomock.Any(), view.ID).Return(&declined, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("cancelled", body.Status)
		s.Equal("payment_declined", body.CancelReason)
	})

	s.Run("error: 409 when the reservation is no longer pending", func() {
		s.mockCommands.EXPECT().DeclinePayment(gomock.Any(), view.ID).Return(nil, reservation.ErrInvalidTransition).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Invalid status transition")
	})
}
