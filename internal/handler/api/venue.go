package api

import (
	"net/http"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/venue"
	resdto "rogu-booking/internal/handler/dto/response"
	"rogu-booking/internal/handler/httperr"
	"rogu-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type VenueHandler struct {
	venues       queries.VenueQueries
	availability queries.AvailabilityQueries
	reservations queries.ReservationQueries
}

func NewVenueHandler(venues queries.VenueQueries, availability queries.AvailabilityQueries, reservations queries.ReservationQueries) *VenueHandler {
	return &VenueHandler{
		venues:       venues,
		availability: availability,
		reservations: reservations,
	}
}

// @Summary List venues
// @Description List active venues, optionally filtered by sport
// @Tags venues
// @Produce json
// @Param sport query string false "Sport filter"
// @Success 200 {array} resdto.VenueResponse
// @Failure 400 {object} httperr.Response
// @Router /api/venues [get]
func (h *VenueHandler) ListVenues(c *gin.Context) {
	var sport *venue.Sport
	if raw := c.Query("sport"); raw != "" {
		parsed, err := venue.NewSport(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid sport", nil)
			return
		}
		sport = &parsed
	}

	views, err := h.venues.ListVenues(c.Request.Context(), sport)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVenueViews(views))
}

// @Summary Get venue
// @Tags venues
// @Produce json
// @Param id path string true "Venue ID"
// @Success 200 {object} resdto.VenueResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/venues/{id} [get]
func (h *VenueHandler) GetVenue(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid venue id")
	if !ok {
		return
	}
	view, err := h.venues.GetVenue(c.Request.Context(), id)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVenueView(view))
}

// @Summary Day schedule
// @Description Per-hour status of a venue on one date
// @Tags venues
// @Produce json
// @Param id path string true "Venue ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} resdto.DayScheduleResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/venues/{id}/slots [get]
func (h *VenueHandler) GetSlots(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid venue id")
	if !ok {
		return
	}
	date, err := calendar.ParseDate(c.Query("date"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
		return
	}

	view, err := h.availability.DaySchedule(c.Request.Context(), id, date)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDayScheduleView(view))
}

// @Summary Venue reservations
// @Description Staff listing of a venue's reservations; access tokens are omitted
// @Tags venues
// @Produce json
// @Security BearerAuth
// @Param id path string true "Venue ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {array} resdto.ReservationResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/venues/{id}/reservations [get]
func (h *VenueHandler) ListReservations(c *gin.Context) {
	id, ok := pathUUID(c, "Invalid venue id")
	if !ok {
		return
	}

	var date *calendar.Date
	if raw := c.Query("date"); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid date", nil)
			return
		}
		date = &parsed
	}

	views, err := h.reservations.ByVenue(c.Request.Context(), id, date)
	if err != nil {
		httperr.AbortWithDomainError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservationViewsRedacted(views))
}

func pathUUID(c *gin.Context, msg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, msg, nil)
		return uuid.Nil, false
	}
	return id, true
}
