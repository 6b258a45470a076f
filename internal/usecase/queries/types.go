package queries

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"

	"github.com/google/uuid"
)

// Read models (DTO for read side)
type ParticipantView struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type ReservationView struct {
	ID            uuid.UUID         `json:"id"`
	VenueID       uuid.UUID         `json:"venue_id"`
	ClientID      uuid.UUID         `json:"client_id"`
	Date          string            `json:"date"`
	TimeSlots     []string          `json:"time_slots"`
	TotalHours    int               `json:"total_hours"`
	TotalPrice    int64             `json:"total_price"`
	Status        string            `json:"status"`
	Participants  []ParticipantView `json:"participants"`
	PaymentMethod string            `json:"payment_method"`
	AccessToken   string            `json:"access_token,omitempty"`
	HoldExpiresAt *time.Time        `json:"hold_expires_at,omitempty"`
	CancelledBy   *uuid.UUID        `json:"cancelled_by,omitempty"`
	CancelReason  string            `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time        `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

type VenueView struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Sport        string    `json:"sport"`
	Location     string    `json:"location"`
	PricePerHour int64     `json:"price_per_hour"`
	OpensAt      string    `json:"opens_at"`
	ClosesAt     string    `json:"closes_at"`
	Active       bool      `json:"active"`
}

type SlotView struct {
	Hour   string `json:"hour"`
	Status string `json:"status"`
}

type DayScheduleView struct {
	VenueID   uuid.UUID  `json:"venue_id"`
	Date      string     `json:"date"`
	Slots     []SlotView `json:"slots"`
	Available []string   `json:"available"`
}

type AccessView struct {
	Reservation  *ReservationView `json:"reservation"`
	VenueName    string           `json:"venue_name"`
	CheckInCount int              `json:"check_in_count"`
}

func NewReservationView(r *reservation.Reservation) *ReservationView {
	participants := make([]ParticipantView, 0, len(r.Participants()))
	for _, p := range r.Participants() {
		participants = append(participants, ParticipantView{Name: p.Name(), Phone: p.Phone()})
	}
	return &ReservationView{
		ID:            r.ID(),
		VenueID:       r.VenueID(),
		ClientID:      r.ClientID(),
		Date:          r.Date().String(),
		TimeSlots:     r.TimeSlots().Strings(),
		TotalHours:    r.TotalHours(),
		TotalPrice:    r.TotalPrice().Amount(),
		Status:        r.Status().String(),
		Participants:  participants,
		PaymentMethod: r.PaymentMethod().String(),
		AccessToken:   r.AccessToken().String(),
		HoldExpiresAt: r.HoldExpiresAt(),
		CancelledBy:   r.CancelledBy(),
		CancelReason:  string(r.CancelReason()),
		CreatedAt:     r.CreatedAt(),
		UpdatedAt:     r.UpdatedAt(),
		ConfirmedAt:   r.ConfirmedAt(),
		CancelledAt:   r.CancelledAt(),
		CompletedAt:   r.CompletedAt(),
	}
}

func NewVenueView(v *venue.Venue) *VenueView {
	hours := v.OperatingHours()
	return &VenueView{
		ID:           v.ID(),
		Name:         v.Name(),
		Sport:        v.Sport().String(),
		Location:     v.Location(),
		PricePerHour: v.PricePerHour(),
		OpensAt:      fmt.Sprintf("%02d:00", hours.Open()),
		ClosesAt:     fmt.Sprintf("%02d:00", hours.Close()),
		Active:       v.Active(),
	}
}

// sortReservations orders by date, then earliest slot, then creation time.
func sortReservations(rs []*reservation.Reservation) {
	slices.SortStableFunc(rs, func(a, b *reservation.Reservation) int {
		if c := a.Date().Compare(b.Date()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.TimeSlots().Earliest(), b.TimeSlots().Earliest()); c != 0 {
			return c
		}
		return a.CreatedAt().Compare(b.CreatedAt())
	})
}

func toViews(rs []*reservation.Reservation) []*ReservationView {
	sortReservations(rs)
	out := make([]*ReservationView, 0, len(rs))
	for _, r := range rs {
		out = append(out, NewReservationView(r))
	}
	return out
}
