package response

import (
	"time"

	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"
)

type AccessValidationResponse struct {
	Valid        bool                 `json:"valid"`
	VenueName    string               `json:"venue_name,omitempty"`
	CheckInCount int                  `json:"check_in_count"`
	Reservation  *ReservationResponse `json:"reservation"`
}

type CheckInResponse struct {
	Reservation  *ReservationResponse `json:"reservation"`
	CheckInCount int                  `json:"check_in_count"`
	FirstCheckIn bool                 `json:"first_check_in"`
	CheckedInAt  time.Time            `json:"checked_in_at"`
}

func FromAccessView(v *queries.AccessView) *AccessValidationResponse {
	return &AccessValidationResponse{
		Valid:        true,
		VenueName:    v.VenueName,
		CheckInCount: v.CheckInCount,
		Reservation:  FromReservationView(v.Reservation),
	}
}

func FromCheckInResult(r *commands.CheckInResult) *CheckInResponse {
	return &CheckInResponse{
		Reservation:  FromReservationView(r.Reservation),
		CheckInCount: r.CheckInCount,
		FirstCheckIn: r.FirstCheckIn,
		CheckedInAt:  r.CheckedInAt,
	}
}
