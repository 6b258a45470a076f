package api

import (
	"net/http"

	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/handler/httperr"
	"rogu-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// PaymentHandler receives the processor's callbacks for deferred charges.
type PaymentHandler struct {
	cmds commands.ReservationCommands
}

func NewPaymentHandler(cmds commands.ReservationCommands) *PaymentHandler {
	return &PaymentHandler{cmds: cmds}
}

// @Summary Confirm deferred payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/payments/{id}/confirm [post]
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid reservation id")
	if !ok {
		return
	}
	view, err := h.cmds.ConfirmPayment(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}

// @Summary Decline deferred payment
// @Description Cancels the pending reservation and releases its slots
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /api/payments/{id}/decline [post]
func (h *PaymentHandler) Decline(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid reservation id")
	if !ok {
		return
	}
	view, err := h.cmds.DeclinePayment(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationView(view))
}
