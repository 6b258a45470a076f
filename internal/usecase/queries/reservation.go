package queries

import (
	"context"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/user"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrReservationNotFound = errs.Mark(errs.New("reservation not found"), errs.ErrReservationNotFound)
	ErrReservationAccess   = errs.Mark(errs.New("reservation belongs to another client"), errs.ErrForbidden)
)

// Actor is the authenticated caller of a read.
type Actor struct {
	ID   uuid.UUID
	Role user.Role
}

func (a Actor) CanSee(r *reservation.Reservation) bool {
	return a.Role.IsAdmin() || a.ID == r.ClientID()
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindByToken(ctx context.Context, token string) (*reservation.Reservation, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*reservation.Reservation, error)
	// ListByVenue returns every reservation of the venue, or of one day when date is set.
	ListByVenue(ctx context.Context, venueID uuid.UUID, date *calendar.Date) ([]*reservation.Reservation, error)
	ListByPartition(ctx context.Context, key reservation.PartitionKey) ([]*reservation.Reservation, error)
	CountCheckIns(ctx context.Context, reservationID uuid.UUID) (int, error)
}

type ReservationQueries interface {
	GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationView, error)
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	ByUser(ctx context.Context, clientID uuid.UUID) ([]*ReservationView, error)
	ByVenue(ctx context.Context, venueID uuid.UUID, date *calendar.Date) ([]*ReservationView, error)
	// UpcomingConfirmed lists confirmed reservations that have not ended at asOf.
	UpcomingConfirmed(ctx context.Context, clientID uuid.UUID, asOf time.Time) ([]*ReservationView, error)
}

type reservationQueriesImpl struct {
	store ReservationReadStore
	loc   *time.Location
}

func NewReservationQueries(store ReservationReadStore, loc *time.Location) ReservationQueries {
	if loc == nil {
		loc = time.UTC
	}
	return &reservationQueriesImpl{store: store, loc: loc}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor Actor, id uuid.UUID) (*ReservationView, error) {
	r, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	if !actor.CanSee(r) {
		return nil, ErrReservationAccess
	}
	return NewReservationView(r), nil
}

func (q *reservationQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*ReservationView, error) {
	r, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	return NewReservationView(r), nil
}

func (q *reservationQueriesImpl) ByUser(ctx context.Context, clientID uuid.UUID) ([]*ReservationView, error) {
	rs, err := q.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	return toViews(rs), nil
}

func (q *reservationQueriesImpl) ByVenue(ctx context.Context, venueID uuid.UUID, date *calendar.Date) ([]*ReservationView, error) {
	rs, err := q.store.ListByVenue(ctx, venueID, date)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	return toViews(rs), nil
}

func (q *reservationQueriesImpl) UpcomingConfirmed(ctx context.Context, clientID uuid.UUID, asOf time.Time) ([]*ReservationView, error) {
	rs, err := q.store.ListByClient(ctx, clientID)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}

	upcoming := rs[:0]
	for _, r := range rs {
		if r.Status() == reservation.StatusConfirmed && r.EndsAt(q.loc).After(asOf) {
			upcoming = append(upcoming, r)
		}
	}
	return toViews(upcoming), nil
}
