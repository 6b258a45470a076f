package httperr

import (
	"context"
	"errors"
	"net/http"

	"rogu-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errors.New(msg)
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	sentinel error
	status   int
	message  string
}

// Order matters: access token errors are checked before validation because a
// malformed scanned token is reported as an unknown one.
var mappings = []mapping{
	{errs.ErrInvalidAccessToken, http.StatusNotFound, "Invalid access token"},
	{errs.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{errs.ErrValidation, http.StatusBadRequest, "Invalid request"},
	{errs.ErrVenueNotFound, http.StatusNotFound, "Venue not found"},
	{errs.ErrReservationNotFound, http.StatusNotFound, "Reservation not found"},
	{errs.ErrSlotConflict, http.StatusConflict, "Slot conflict"},
	{errs.ErrCancellationWindowClosed, http.StatusConflict, "Cancellation window closed"},
	{errs.ErrNotElapsed, http.StatusConflict, "Reservation has not elapsed"},
	{errs.ErrDuplicateRequest, http.StatusConflict, "Duplicate request"},
	{errs.ErrInvalidTransition, http.StatusConflict, "Invalid status transition"},
	{errs.ErrPaymentFailure, http.StatusPaymentRequired, "Payment failed"},
}

// Classify returns the status and public message for a use-case error.
// Unclassified errors are internal and carry no detail.
func Classify(err error) (int, string, bool) {
	for _, m := range mappings {
		if errs.Is(err, m.sentinel) {
			return m.status, m.message, true
		}
	}
	if errs.Is(err, context.DeadlineExceeded) || errs.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "Request timed out", false
	}
	return http.StatusInternalServerError, "Internal error", false
}

// AbortWithDomainError classifies err and aborts. override replaces the
// status for specific sentinels on endpoints that report them differently.
func AbortWithDomainError(c *gin.Context, err error, override map[error]int) {
	status, msg, public := Classify(err)
	for sentinel, s := range override {
		if errs.Is(err, sentinel) {
			status = s
			break
		}
	}

	var detail any
	if public {
		detail = err.Error()
	}
	AbortWithError(c, status, err, msg, detail)
}
