package request

import (
	"strings"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

type ParticipantRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone,omitempty"`
}

type CreateReservationRequest struct {
	VenueID       uuid.UUID            `json:"venue_id" binding:"required"`
	Date          string               `json:"date" binding:"required"`
	TimeSlots     []string             `json:"time_slots" binding:"required,min=1"`
	Participants  []ParticipantRequest `json:"participants" binding:"required,min=1,dive"`
	PaymentMethod string               `json:"payment_method" binding:"required"`
}

func (r CreateReservationRequest) ToCommand(clientID uuid.UUID, idempotencyKey string) (commands.CreateReservationInput, error) {
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return commands.CreateReservationInput{}, err
	}

	hours := make([]calendar.Hour, 0, len(r.TimeSlots))
	for _, s := range r.TimeSlots {
		h, err := calendar.ParseHour(s)
		if err != nil {
			return commands.CreateReservationInput{}, err
		}
		hours = append(hours, h)
	}

	participants := make([]reservation.Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		participant, err := reservation.NewParticipant(p.Name, p.Phone)
		if err != nil {
			return commands.CreateReservationInput{}, err
		}
		participants = append(participants, participant)
	}

	method, err := reservation.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return commands.CreateReservationInput{}, err
	}

	return commands.CreateReservationInput{
		VenueID:        r.VenueID,
		ClientID:       clientID,
		Date:           date,
		Hours:          hours,
		Participants:   participants,
		PaymentMethod:  method,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}, nil
}
