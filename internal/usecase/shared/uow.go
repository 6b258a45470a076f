package shared

import (
	"context"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// WithinPartition runs fn while holding the writer lock of one
	// (venue, date) partition. Writes made through tx become visible together
	// when fn returns nil and are discarded otherwise.
	WithinPartition(ctx context.Context, key reservation.PartitionKey, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	Reservations() ReservationRepository
	CheckIns() CheckInRepository
	Idempotency() IdempotencyRepository
}

type ReservationRepository interface {
	Insert(ctx context.Context, res *reservation.Reservation) error
	Update(ctx context.Context, res *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	ListByPartition(ctx context.Context, key reservation.PartitionKey) ([]*reservation.Reservation, error)
	TokenExists(ctx context.Context, token string) (bool, error)
}

type CheckIn struct {
	ID            uuid.UUID
	ReservationID uuid.UUID
	ControllerID  uuid.UUID
	CheckedInAt   time.Time
}

type CheckInRepository interface {
	Append(ctx context.Context, c CheckIn) error
	CountByReservation(ctx context.Context, reservationID uuid.UUID) (int, error)
}

// IdempotencyRecord binds a client-supplied key to the reservation it created.
type IdempotencyRecord struct {
	Key           string
	ClientID      uuid.UUID
	RequestHash   string
	ReservationID uuid.UUID
	CreatedAt     time.Time
}

type IdempotencyRepository interface {
	Find(ctx context.Context, clientID uuid.UUID, key string) (*IdempotencyRecord, error)
	// Save fails with a DUPLICATE_KEY repository error when the key is taken.
	Save(ctx context.Context, rec IdempotencyRecord) error
}

// VenueRepository is the catalog. It is written only by seeding and
// venue-management collaborators.
type VenueRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*venue.Venue, error)
	List(ctx context.Context) ([]*venue.Venue, error)
	Save(ctx context.Context, v *venue.Venue) error
}

// ReservationLocator resolves a reservation to its partition before the
// partition lock is taken.
type ReservationLocator interface {
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindByToken(ctx context.Context, token string) (*reservation.Reservation, error)
}
