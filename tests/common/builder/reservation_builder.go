//go:build unit || e2e || integration

package builder

import (
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
	reqdto "rogu-booking/internal/handler/dto/request"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// ReferenceNow is the instant the booking fixtures are built against: the day
// before ReferenceDate.
var ReferenceNow = time.Date(2024, 3, 19, 12, 0, 0, 0, time.UTC)

const ReferenceDate = "2024-03-20"

type ParticipantSpec struct {
	Name  string
	Phone string
}

type ReservationBuilder struct {
	VenueID       uuid.UUID
	ClientID      uuid.UUID
	Date          string
	TimeSlots     []string
	Participants  []ParticipantSpec
	PaymentMethod string
	Now           time.Time
}

func NewReservationBuilder() *ReservationBuilder {
	return &ReservationBuilder{
		VenueID:       uuid.New(),
		ClientID:      uuid.New(),
		Date:          ReferenceDate,
		TimeSlots:     []string{"09:00", "10:00"},
		Participants:  []ParticipantSpec{{Name: "Ana Pérez", Phone: "+56 9 1234 5678"}},
		PaymentMethod: string(reservation.PaymentTraditional),
		Now:           ReferenceNow,
	}
}

func (r *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(r)
	return r
}

func (r *ReservationBuilder) ForVenue(v *venue.Venue) *ReservationBuilder {
	r.VenueID = v.ID()
	return r
}

func (r *ReservationBuilder) BuildDraft() (reservation.Draft, error) {
	date, err := calendar.ParseDate(r.Date)
	if err != nil {
		return reservation.Draft{}, err
	}
	hours := make([]calendar.Hour, 0, len(r.TimeSlots))
	for _, s := range r.TimeSlots {
		h, err := calendar.ParseHour(s)
		if err != nil {
			return reservation.Draft{}, err
		}
		hours = append(hours, h)
	}
	participants := make([]reservation.Participant, 0, len(r.Participants))
	for _, p := range r.Participants {
		participant, err := reservation.NewParticipant(p.Name, p.Phone)
		if err != nil {
			return reservation.Draft{}, err
		}
		participants = append(participants, participant)
	}
	return reservation.Draft{
		ClientID:      r.ClientID,
		Date:          date,
		Hours:         hours,
		Participants:  participants,
		PaymentMethod: reservation.PaymentMethod(r.PaymentMethod),
	}, nil
}

// BuildDomain creates a pending reservation through the domain factory.
func (r *ReservationBuilder) BuildDomain(v *venue.Venue) (*reservation.Reservation, error) {
	draft, err := r.BuildDraft()
	if err != nil {
		return nil, err
	}
	factory := reservation.NewFactory(
		clock.NewMockClock(r.Now),
		reservation.NewHourlyPriceCalculator(),
		reservation.Policy{Location: time.UTC, CancellationNotice: 2 * time.Hour, PendingHoldTTL: 15 * time.Minute},
	)
	return factory.CreateReservation(v, draft)
}

func (r *ReservationBuilder) BuildDTO() reqdto.CreateReservationRequest {
	participants := make([]reqdto.ParticipantRequest, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = reqdto.ParticipantRequest{Name: p.Name, Phone: p.Phone}
	}
	return reqdto.CreateReservationRequest{
		VenueID:       r.VenueID,
		Date:          r.Date,
		TimeSlots:     r.TimeSlots,
		Participants:  participants,
		PaymentMethod: r.PaymentMethod,
	}
}

// BuildView returns the read model of a reservation at a fresh venue.
func (r *ReservationBuilder) BuildView() *queries.ReservationView {
	v := NewVenueBuilder().With(func(b *VenueBuilder) { b.ID = r.VenueID }).MustBuild()
	res, err := r.BuildDomain(v)
	if err != nil {
		panic(err)
	}
	return queries.NewReservationView(res)
}
