package memstore

import (
	"context"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type memTx struct {
	s *Store

	staged      map[uuid.UUID]reservation.Snapshot
	order       []uuid.UUID
	checkIns    []shared.CheckIn
	idempotency []shared.IdempotencyRecord
}

func newTx(s *Store) *memTx {
	return &memTx{s: s, staged: make(map[uuid.UUID]reservation.Snapshot)}
}

func (t *memTx) Reservations() shared.ReservationRepository { return txReservations{t} }
func (t *memTx) CheckIns() shared.CheckInRepository         { return txCheckIns{t} }
func (t *memTx) Idempotency() shared.IdempotencyRepository  { return txIdempotency{t} }

func (t *memTx) stage(snap reservation.Snapshot) {
	if _, ok := t.staged[snap.ID]; !ok {
		t.order = append(t.order, snap.ID)
	}
	t.staged[snap.ID] = snap
}

func (t *memTx) lookup(id uuid.UUID) (reservation.Snapshot, bool) {
	if snap, ok := t.staged[id]; ok {
		return snap, true
	}
	return t.s.snapshot(id)
}

type txReservations struct{ t *memTx }

func (r txReservations) Insert(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.t.lookup(res.ID()); ok {
		return infra.WrapRepoErr(r.t.s.logger, infra.KindDuplicateKey, "reservation already exists", nil)
	}
	r.t.stage(res.Snapshot())
	return nil
}

func (r txReservations) Update(_ context.Context, res *reservation.Reservation) error {
	if _, ok := r.t.lookup(res.ID()); !ok {
		return infra.NotFound("reservation not found")
	}
	r.t.stage(res.Snapshot())
	return nil
}

func (r txReservations) FindByID(_ context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	snap, ok := r.t.lookup(id)
	if !ok {
		return nil, infra.NotFound("reservation not found")
	}
	return reservation.Reconstruct(snap), nil
}

func (r txReservations) ListByPartition(_ context.Context, key reservation.PartitionKey) ([]*reservation.Reservation, error) {
	r.t.s.mu.RLock()
	committed := r.t.s.byPartition[key]
	out := make([]*reservation.Reservation, 0, len(committed)+len(r.t.order))
	seen := make(map[uuid.UUID]struct{}, len(committed))
	for _, id := range committed {
		seen[id] = struct{}{}
		snap := r.t.s.reservations[id]
		if staged, ok := r.t.staged[id]; ok {
			snap = staged
		}
		out = append(out, reservation.Reconstruct(snap))
	}
	r.t.s.mu.RUnlock()

	for _, id := range r.t.order {
		if _, ok := seen[id]; ok {
			continue
		}
		snap := r.t.staged[id]
		if snap.VenueID == key.VenueID && snap.Date == key.Date {
			out = append(out, reservation.Reconstruct(snap))
		}
	}
	return out, nil
}

func (r txReservations) TokenExists(_ context.Context, token string) (bool, error) {
	for _, snap := range r.t.staged {
		if snap.AccessToken == token {
			return true, nil
		}
	}
	r.t.s.mu.RLock()
	defer r.t.s.mu.RUnlock()
	_, ok := r.t.s.tokens[token]
	return ok, nil
}

type txCheckIns struct{ t *memTx }

func (c txCheckIns) Append(_ context.Context, in shared.CheckIn) error {
	if _, ok := c.t.lookup(in.ReservationID); !ok {
		return infra.NotFound("reservation not found")
	}
	c.t.checkIns = append(c.t.checkIns, in)
	return nil
}

func (c txCheckIns) CountByReservation(_ context.Context, reservationID uuid.UUID) (int, error) {
	c.t.s.mu.RLock()
	count := len(c.t.s.checkIns[reservationID])
	c.t.s.mu.RUnlock()

	for _, in := range c.t.checkIns {
		if in.ReservationID == reservationID {
			count++
		}
	}
	return count, nil
}

type txIdempotency struct{ t *memTx }

func (i txIdempotency) Find(_ context.Context, clientID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	for _, rec := range i.t.idempotency {
		if rec.ClientID == clientID && rec.Key == key {
			cp := rec
			return &cp, nil
		}
	}
	i.t.s.mu.RLock()
	defer i.t.s.mu.RUnlock()
	rec, ok := i.t.s.idempotency[idempotencyKey{clientID: clientID, key: key}]
	if !ok {
		return nil, infra.NotFound("idempotency key not found")
	}
	return &rec, nil
}

func (i txIdempotency) Save(ctx context.Context, rec shared.IdempotencyRecord) error {
	if _, err := i.Find(ctx, rec.ClientID, rec.Key); err == nil {
		return infra.WrapRepoErr(i.t.s.logger, infra.KindDuplicateKey, "idempotency key already used", nil)
	}
	i.t.idempotency = append(i.t.idempotency, rec)
	return nil
}
