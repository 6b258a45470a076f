package api

import (
	"net/http"
	"strconv"

	reqdto "rogu-booking/internal/handler/dto/request"
	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/handler/httperr"
	"rogu-booking/internal/handler/middleware"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

const (
	idempotencyKeyHeader  = "Idempotency-Key"
	maxIdempotencyKeyLen  = 255
	idempotentReplayedHdr = "Idempotent-Replayed"
)

type ReservationHandler struct {
	cmds   commands.ReservationCommands
	q      queries.ReservationQueries
	access queries.AccessQueries
	clock  clock.Clock
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.ReservationQueries, access queries.AccessQueries, clock clock.Clock) *ReservationHandler {
	return &ReservationHandler{
		cmds:   cmds,
		q:      q,
		access: access,
		clock:  clock,
	}
}

// @Summary Create reservation
// @Description Book one or more hourly slots at a venue
// @Tags reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Replays the original result when reused with the same body"
// @Param request body reqdto.CreateReservationRequest true "Reservation request"
// @Success 201 {object} resdto.ReservationResponse
// @Success 200 {object} resdto.ReservationResponse "Idempotent replay"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 402 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	idempotencyKey := c.GetHeader(idempotencyKeyHeader)
	if len(idempotencyKey) > maxIdempotencyKeyLen {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Idempotency key too long", nil)
		return
	}

	var req reqdto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	in, err := req.ToCommand(clientID, idempotencyKey)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}

	result, err := h.cmds.CreateReservation(c.Request.Context(), in)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}

	if result.IsReplayed {
		c.Header(idempotentReplayedHdr, "true")
		c.JSON(http.StatusOK, resdto.FromReservationView(result.Reservation))
		return
	}
	c.Header("Location", "/api/reservations/"+result.Reservation.ID.String())
	c.JSON(http.StatusCreated, resdto.FromReservationView(result.Reservation))
}

// @Summary Get reservation
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid reservation id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	view, err := h.q.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary List own reservations
// @Description All reservations of the caller, or only upcoming confirmed ones
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param upcoming query bool false "Only confirmed reservations that have not ended"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /api/reservations [get]
func (h *ReservationHandler) GetUserReservations(c *gin.Context) {
	clientID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	upcoming := false
	if raw := c.Query("upcoming"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid upcoming flag", nil)
			return
		}
		upcoming = parsed
	}

	var (
		views []*queries.ReservationView
		err   error
	)
	if upcoming {
		views, err = h.q.UpcomingConfirmed(c.Request.Context(), clientID, h.clock.Now())
	} else {
		views, err = h.q.ByUser(c.Request.Context(), clientID)
	}
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViews(views))
}

// @Summary Cancel reservation
// @Description Cancel an own confirmed reservation before the notice period
// @Tags reservations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/cancel [post]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid reservation id")
	if !ok {
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	view, err := h.cmds.CancelReservation(c.Request.Context(), id, actorID)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Access QR code
// @Description PNG QR code carrying the reservation's access token
// @Tags reservations
// @Produce png
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {file} binary
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/reservations/{id}/access-qr [get]
func (h *ReservationHandler) GetAccessQR(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid reservation id")
	if !ok {
		return
	}
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	png, err := h.access.AccessQR(c.Request.Context(), actor, id)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

func currentActor(c *gin.Context) (queries.Actor, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return queries.Actor{}, false
	}
	role, _ := middleware.GetUserRole(c)
	return queries.Actor{ID: id, Role: role}, true
}
