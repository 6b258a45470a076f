package reservation

import (
	"fmt"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/pkg/clock"

	"github.com/google/uuid"
)

// Draft is a validated-at-the-edges booking request before pricing. A zero ID
// gets a fresh one.
type Draft struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	Date          calendar.Date
	Hours         []calendar.Hour
	Participants  []Participant
	PaymentMethod PaymentMethod
}

type Factory struct {
	Clock           clock.Clock
	PriceCalculator PriceCalculator
	Policy          Policy
}

func NewFactory(clock clock.Clock, priceCalculator PriceCalculator, policy Policy) *Factory {
	return &Factory{
		Clock:           clock,
		PriceCalculator: priceCalculator,
		Policy:          policy,
	}
}

// CreateReservation builds a pending reservation priced at the venue's
// current rate. Slot conflicts are the caller's concern.
func (f *Factory) CreateReservation(v *venue.Venue, draft Draft) (*Reservation, error) {
	if !v.IsBookable() {
		return nil, ErrVenueNotBookable
	}
	if !draft.PaymentMethod.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, draft.PaymentMethod)
	}
	if len(draft.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	slots, err := NewTimeSlots(draft.Hours, v.OperatingHours())
	if err != nil {
		return nil, err
	}

	now := f.Clock.Now()
	loc := f.Policy.location()
	today := calendar.DateOf(now, loc)
	if draft.Date.Before(today) {
		return nil, fmt.Errorf("%w: %s", ErrDateInPast, draft.Date)
	}
	if draft.Date == today {
		if start := draft.Date.At(slots.Earliest(), loc); !now.Before(start) {
			return nil, fmt.Errorf("%w: %s", ErrSlotInPast, slots.Earliest())
		}
	}

	id := draft.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return &Reservation{
		id:            id,
		venueID:       v.ID(),
		clientID:      draft.ClientID,
		date:          draft.Date,
		timeSlots:     slots,
		totalPrice:    f.PriceCalculator.CalculatePrice(v, slots),
		status:        StatusPending,
		participants:  append([]Participant(nil), draft.Participants...),
		paymentMethod: draft.PaymentMethod,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}
