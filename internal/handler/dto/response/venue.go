package response

import (
	"rogu-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type VenueResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Sport        string    `json:"sport"`
	Location     string    `json:"location"`
	PricePerHour int64     `json:"price_per_hour"`
	OpensAt      string    `json:"opens_at"`
	ClosesAt     string    `json:"closes_at"`
}

type SlotResponse struct {
	Hour   string `json:"hour"`
	Status string `json:"status"`
}

type DayScheduleResponse struct {
	VenueID   uuid.UUID      `json:"venue_id"`
	Date      string         `json:"date"`
	Slots     []SlotResponse `json:"slots"`
	Available []string       `json:"available"`
}

func FromVenueView(v *queries.VenueView) *VenueResponse {
	res := &VenueResponse{}
	_ = copier.Copy(res, v)
	return res
}

func FromVenueViews(views []*queries.VenueView) []*VenueResponse {
	out := make([]*VenueResponse, len(views))
	for i, v := range views {
		out[i] = FromVenueView(v)
	}
	return out
}

func FromDayScheduleView(v *queries.DayScheduleView) *DayScheduleResponse {
	res := &DayScheduleResponse{
		VenueID:   v.VenueID,
		Date:      v.Date,
		Slots:     make([]SlotResponse, 0, len(v.Slots)),
		Available: append([]string{}, v.Available...),
	}
	for _, s := range v.Slots {
		res.Slots = append(res.Slots, SlotResponse{Hour: s.Hour, Status: s.Status})
	}
	return res
}
