package response

import (
	"time"

	"rogu-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type ParticipantResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type ReservationResponse struct {
	ID            uuid.UUID             `json:"id"`
	VenueID       uuid.UUID             `json:"venue_id"`
	ClientID      uuid.UUID             `json:"client_id"`
	Date          string                `json:"date"`
	TimeSlots     []string              `json:"time_slots"`
	TotalHours    int                   `json:"total_hours"`
	TotalPrice    int64                 `json:"total_price"`
	Status        string                `json:"status"`
	Participants  []ParticipantResponse `json:"participants"`
	PaymentMethod string                `json:"payment_method"`
	AccessToken   string                `json:"access_token,omitempty"`
	HoldExpiresAt *time.Time            `json:"hold_expires_at,omitempty"`
	CancelledBy   *uuid.UUID            `json:"cancelled_by,omitempty"`
	CancelReason  string                `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	ConfirmedAt   *time.Time            `json:"confirmed_at,omitempty"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
}

func FromReservationView(v *queries.ReservationView) *ReservationResponse {
	res := &ReservationResponse{}
	if err := copier.CopyWithOption(res, v, copier.Option{DeepCopy: true}); err != nil {
		// Field sets are identical; a failure here is a programming error.
		panic("copy reservation view: " + err.Error())
	}
	if res.Participants == nil {
		res.Participants = []ParticipantResponse{}
	}
	if res.TimeSlots == nil {
		res.TimeSlots = []string{}
	}
	return res
}

func FromReservationViews(views []*queries.ReservationView) []*ReservationResponse {
	out := make([]*ReservationResponse, len(views))
	for i, v := range views {
		out[i] = FromReservationView(v)
	}
	return out
}

// FromReservationViewsRedacted drops access tokens for staff listings.
func FromReservationViewsRedacted(views []*queries.ReservationView) []*ReservationResponse {
	out := FromReservationViews(views)
	for _, r := range out {
		r.AccessToken = ""
	}
	return out
}
