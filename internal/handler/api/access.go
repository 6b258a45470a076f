package api

import (
	"net/http"

	reqdto "rogu-booking/internal/handler/dto/request"
	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/handler/httperr"
	"rogu-booking/internal/handler/middleware"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

// A rejected token at the turnstile is a refusal, not a missing resource.
var checkInOverrides = map[error]int{
	errs.ErrInvalidAccessToken: http.StatusForbidden,
}

type AccessHandler struct {
	q    queries.AccessQueries
	cmds commands.AccessCommands
}

func NewAccessHandler(q queries.AccessQueries, cmds commands.AccessCommands) *AccessHandler {
	return &AccessHandler{q: q, cmds: cmds}
}

// @Summary Validate access token
// @Description Read-only check that a scanned token admits entry today
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AccessTokenRequest true "Scanned token"
// @Success 200 {object} resdto.AccessValidationResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/access/validate [post]
func (h *AccessHandler) Validate(c *gin.Context) {
	var req reqdto.AccessTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	view, err := h.q.Validate(c.Request.Context(), req.Token)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAccessView(view))
}

// @Summary Record check-in
// @Description Admits the holder of a valid token and logs the entry
// @Tags access
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AccessTokenRequest true "Scanned token"
// @Success 201 {object} resdto.CheckInResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /api/access/check-ins [post]
func (h *AccessHandler) CheckIn(c *gin.Context) {
	controllerID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}

	var req reqdto.AccessTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.RecordCheckIn(c.Request.Context(), req.Token, controllerID)
	if err != nil {
		httperr.AbortWithDomainError(c, err, checkInOverrides)
		return
	}
	c.JSON(http.StatusCreated, resdto.FromCheckInResult(result))
}
