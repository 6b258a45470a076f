// Package memstore keeps venues and reservations in process memory. Writers
// are serialized per partition with a keyed lock and their changes are
// staged until the unit of work commits.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/pkg/keylock"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type idempotencyKey struct {
	clientID uuid.UUID
	key      string
}

type Store struct {
	mu sync.RWMutex

	venues       map[uuid.UUID]*venue.Venue
	reservations map[uuid.UUID]reservation.Snapshot
	byPartition  map[reservation.PartitionKey][]uuid.UUID
	byClient     map[uuid.UUID][]uuid.UUID
	tokens       map[string]uuid.UUID
	checkIns     map[uuid.UUID][]shared.CheckIn
	idempotency  map[idempotencyKey]shared.IdempotencyRecord

	locks  *keylock.Locker
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		venues:       make(map[uuid.UUID]*venue.Venue),
		reservations: make(map[uuid.UUID]reservation.Snapshot),
		byPartition:  make(map[reservation.PartitionKey][]uuid.UUID),
		byClient:     make(map[uuid.UUID][]uuid.UUID),
		tokens:       make(map[string]uuid.UUID),
		checkIns:     make(map[uuid.UUID][]shared.CheckIn),
		idempotency:  make(map[idempotencyKey]shared.IdempotencyRecord),
		locks:        keylock.New(),
		logger:       logger,
	}
}

func (s *Store) WithinPartition(ctx context.Context, key reservation.PartitionKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	unlock, err := s.locks.Lock(ctx, key.String())
	if err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindConflict, "partition lock not acquired", err)
	}
	defer unlock()

	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	// A deadline that fires inside fn discards the staged writes.
	if err := ctx.Err(); err != nil {
		return infra.WrapRepoErr(s.logger, infra.KindConflict, "unit of work cancelled", err)
	}
	return s.commit(tx)
}

// commit applies every staged write or none of them.
func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]uuid.UUID)
	for _, id := range tx.order {
		snap := tx.staged[id]
		if snap.AccessToken == "" {
			continue
		}
		if owner, ok := s.tokens[snap.AccessToken]; ok && owner != id {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "access token already in use", nil)
		}
		if owner, ok := staged[snap.AccessToken]; ok && owner != id {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "access token already in use", nil)
		}
		staged[snap.AccessToken] = id
	}
	for _, rec := range tx.idempotency {
		if _, ok := s.idempotency[idempotencyKey{clientID: rec.ClientID, key: rec.Key}]; ok {
			return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "idempotency key already used", nil)
		}
	}

	for _, id := range tx.order {
		snap := tx.staged[id]
		if prev, ok := s.reservations[id]; ok {
			if prev.AccessToken != "" && prev.AccessToken != snap.AccessToken {
				delete(s.tokens, prev.AccessToken)
			}
		} else {
			key := reservation.PartitionKey{VenueID: snap.VenueID, Date: snap.Date}
			s.byPartition[key] = append(s.byPartition[key], id)
			s.byClient[snap.ClientID] = append(s.byClient[snap.ClientID], id)
		}
		if snap.AccessToken != "" {
			s.tokens[snap.AccessToken] = id
		}
		s.reservations[id] = snap
	}
	for _, c := range tx.checkIns {
		s.checkIns[c.ReservationID] = append(s.checkIns[c.ReservationID], c)
	}
	for _, rec := range tx.idempotency {
		s.idempotency[idempotencyKey{clientID: rec.ClientID, key: rec.Key}] = rec
	}
	return nil
}

func (s *Store) snapshot(id uuid.UUID) (reservation.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.reservations[id]
	return snap, ok
}

func (s *Store) collect(ids []uuid.UUID) []*reservation.Reservation {
	out := make([]*reservation.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, reservation.Reconstruct(s.reservations[id]))
	}
	return out
}

// Venues exposes the catalog side of the store.
func (s *Store) Venues() *VenueStore {
	return &VenueStore{s: s}
}

// Reservations exposes lock-free reads over committed reservations.
func (s *Store) Reservations() *ReservationStore {
	return &ReservationStore{s: s}
}
