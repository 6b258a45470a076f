package queries

import (
	"context"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/slot"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type AvailabilityQueries interface {
	ListAvailableSlots(ctx context.Context, venueID uuid.UUID, date calendar.Date) ([]calendar.Hour, error)
	ReservedSlots(ctx context.Context, venueID uuid.UUID, date calendar.Date) (calendar.HourSet, error)
	DaySchedule(ctx context.Context, venueID uuid.UUID, date calendar.Date) (*DayScheduleView, error)
}

type availabilityQueriesImpl struct {
	venues       VenueReadStore
	reservations ReservationReadStore
}

func NewAvailabilityQueries(venues VenueReadStore, reservations ReservationReadStore) AvailabilityQueries {
	return &availabilityQueriesImpl{venues: venues, reservations: reservations}
}

func (q *availabilityQueriesImpl) ListAvailableSlots(ctx context.Context, venueID uuid.UUID, date calendar.Date) ([]calendar.Hour, error) {
	hours, reserved, err := q.load(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	return slot.Available(hours, reserved), nil
}

func (q *availabilityQueriesImpl) ReservedSlots(ctx context.Context, venueID uuid.UUID, date calendar.Date) (calendar.HourSet, error) {
	_, reserved, err := q.load(ctx, venueID, date)
	if err != nil {
		return nil, err
	}
	return reserved, nil
}

func (q *availabilityQueriesImpl) DaySchedule(ctx context.Context, venueID uuid.UUID, date calendar.Date) (*DayScheduleView, error) {
	hours, reserved, err := q.load(ctx, venueID, date)
	if err != nil {
		return nil, err
	}

	schedule := slot.Schedule(hours, reserved)
	slots := make([]SlotView, 0, len(schedule))
	for _, s := range schedule {
		slots = append(slots, SlotView{Hour: s.Hour.String(), Status: string(s.Status)})
	}
	return &DayScheduleView{
		VenueID:   venueID,
		Date:      date.String(),
		Slots:     slots,
		Available: calendar.FormatHours(slot.Available(hours, reserved)),
	}, nil
}

func (q *availabilityQueriesImpl) load(ctx context.Context, venueID uuid.UUID, date calendar.Date) (venue.OperatingHours, calendar.HourSet, error) {
	v, err := activeVenue(ctx, q.venues, venueID)
	if err != nil {
		return venue.OperatingHours{}, nil, err
	}
	rs, err := q.reservations.ListByPartition(ctx, reservation.PartitionKey{VenueID: venueID, Date: date})
	if err != nil {
		return venue.OperatingHours{}, nil, shared.StoreError(err, ErrReservationNotFound)
	}
	return v.OperatingHours(), slot.Reserved(rs), nil
}
