package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra"

	"github.com/google/uuid"
)

type VenueStore struct {
	s *Store
}

func (v *VenueStore) FindByID(_ context.Context, id uuid.UUID) (*venue.Venue, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	found, ok := v.s.venues[id]
	if !ok {
		return nil, infra.NotFound("venue not found")
	}
	return found, nil
}

func (v *VenueStore) List(_ context.Context) ([]*venue.Venue, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]*venue.Venue, 0, len(v.s.venues))
	for _, found := range v.s.venues {
		out = append(out, found)
	}
	slices.SortFunc(out, func(a, b *venue.Venue) int {
		return strings.Compare(a.ID().String(), b.ID().String())
	})
	return out, nil
}

// Save replaces the catalog entry. Venues are immutable values, so the
// pointer is stored as is.
func (v *VenueStore) Save(_ context.Context, found *venue.Venue) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.venues[found.ID()] = found
	return nil
}

type ReservationStore struct {
	s *Store
}

func (r *ReservationStore) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	snap, ok := r.s.snapshot(id)
	if !ok {
		return nil, infra.NotFound("reservation not found")
	}
	return reservation.Reconstruct(snap), nil
}

func (r *ReservationStore) FindByToken(_ context.Context, token string) (*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.tokens[token]
	if !ok {
		return nil, infra.NotFound("access token not found")
	}
	return reservation.Reconstruct(r.s.reservations[id]), nil
}

func (r *ReservationStore) ListByClient(_ context.Context, clientID uuid.UUID) ([]*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.collect(r.s.byClient[clientID]), nil
}

func (r *ReservationStore) ListByVenue(_ context.Context, venueID uuid.UUID, date *calendar.Date) ([]*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if date != nil {
		return r.s.collect(r.s.byPartition[reservation.PartitionKey{VenueID: venueID, Date: *date}]), nil
	}
	var ids []uuid.UUID
	for key, partition := range r.s.byPartition {
		if key.VenueID == venueID {
			ids = append(ids, partition...)
		}
	}
	return r.s.collect(ids), nil
}

func (r *ReservationStore) ListByPartition(_ context.Context, key reservation.PartitionKey) ([]*reservation.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.collect(r.s.byPartition[key]), nil
}

func (r *ReservationStore) CountCheckIns(_ context.Context, reservationID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.checkIns[reservationID]), nil
}

func (r *ReservationStore) ListConfirmedBefore(_ context.Context, date calendar.Date) ([]*reservation.Reservation, error) {
	return r.filter(func(snap reservation.Snapshot) bool {
		return snap.Status == reservation.StatusConfirmed && snap.Date.Before(date)
	}), nil
}

func (r *ReservationStore) ListPendingHoldsExpiredAt(_ context.Context, at time.Time) ([]*reservation.Reservation, error) {
	return r.filter(func(snap reservation.Snapshot) bool {
		return snap.Status == reservation.StatusPending && snap.HoldExpiresAt != nil && !at.Before(*snap.HoldExpiresAt)
	}), nil
}

func (r *ReservationStore) filter(keep func(reservation.Snapshot) bool) []*reservation.Reservation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*reservation.Reservation
	for _, snap := range r.s.reservations {
		if keep(snap) {
			out = append(out, reservation.Reconstruct(snap))
		}
	}
	return out
}
