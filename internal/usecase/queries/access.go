package queries

import (
	"context"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrUnknownAccessToken = errs.Mark(errs.New("access token not recognised"), errs.ErrInvalidAccessToken)
	ErrNoAccessToken      = errs.Mark(errs.New("reservation has no access token"), errs.ErrInvalidTransition)
)

// QRRenderer turns an access token into a scannable PNG.
type QRRenderer interface {
	PNG(content string) ([]byte, error)
}

type AccessQueries interface {
	// Validate is read-only: it never changes the reservation or logs an entry.
	Validate(ctx context.Context, token string) (*AccessView, error)
	AccessQR(ctx context.Context, actor Actor, reservationID uuid.UUID) ([]byte, error)
}

type accessQueriesImpl struct {
	reservations ReservationReadStore
	venues       VenueReadStore
	qr           QRRenderer
	clock        clock.Clock
	loc          *time.Location
}

func NewAccessQueries(reservations ReservationReadStore, venues VenueReadStore, qr QRRenderer, clk clock.Clock, loc *time.Location) AccessQueries {
	if loc == nil {
		loc = time.UTC
	}
	return &accessQueriesImpl{
		reservations: reservations,
		venues:       venues,
		qr:           qr,
		clock:        clk,
		loc:          loc,
	}
}

func (q *accessQueriesImpl) Validate(ctx context.Context, token string) (*AccessView, error) {
	r, err := LookupToken(ctx, q.reservations, token)
	if err != nil {
		return nil, err
	}
	if err := r.CheckAdmission(q.clock.Now(), q.loc); err != nil {
		return nil, err
	}

	count, err := q.reservations.CountCheckIns(ctx, r.ID())
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}

	view := &AccessView{Reservation: NewReservationView(r), CheckInCount: count}
	if v, err := q.venues.FindByID(ctx, r.VenueID()); err == nil {
		view.VenueName = v.Name()
	}
	return view, nil
}

func (q *accessQueriesImpl) AccessQR(ctx context.Context, actor Actor, reservationID uuid.UUID) ([]byte, error) {
	r, err := q.reservations.FindByID(ctx, reservationID)
	if err != nil {
		return nil, shared.StoreError(err, ErrReservationNotFound)
	}
	if !actor.CanSee(r) {
		return nil, ErrReservationAccess
	}
	if r.Status() != reservation.StatusConfirmed || r.AccessToken().IsZero() {
		return nil, errs.Wrapf(ErrNoAccessToken, "status %s", r.Status())
	}
	png, err := q.qr.PNG(r.AccessToken().String())
	if err != nil {
		return nil, errs.Wrap(err, "render access qr")
	}
	return png, nil
}

// LookupToken resolves a scanned token; unknown tokens are InvalidAccessToken.
func LookupToken(ctx context.Context, store shared.ReservationLocator, token string) (*reservation.Reservation, error) {
	parsed, err := reservation.NewAccessToken(token)
	if err != nil {
		return nil, ErrUnknownAccessToken
	}
	r, err := store.FindByToken(ctx, parsed.String())
	if err != nil {
		return nil, shared.StoreError(err, ErrUnknownAccessToken)
	}
	return r, nil
}
