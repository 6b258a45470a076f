package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/internal/usecase/shared"
)

// SweepCandidates finds reservations the sweeper may need to move. Results
// are re-checked under the partition lock, so stale rows are harmless.
type SweepCandidates interface {
	ListConfirmedBefore(ctx context.Context, date calendar.Date) ([]*reservation.Reservation, error)
	ListPendingHoldsExpiredAt(ctx context.Context, at time.Time) ([]*reservation.Reservation, error)
}

type SweepResult struct {
	Completed int
	Expired   int
}

type LifecycleSweeper interface {
	Sweep(ctx context.Context) (SweepResult, error)
	CompleteElapsed(ctx context.Context) (int, error)
	ExpireHolds(ctx context.Context) (int, error)
}

type lifecycleSweeperImpl struct {
	uow        shared.UnitOfWork
	candidates SweepCandidates
	clock      clock.Clock
	loc        *time.Location
}

func NewLifecycleSweeper(uow shared.UnitOfWork, candidates SweepCandidates, clock clock.Clock, policy reservation.Policy) LifecycleSweeper {
	loc := policy.Location
	if loc == nil {
		loc = time.UTC
	}
	return &lifecycleSweeperImpl{
		uow:        uow,
		candidates: candidates,
		clock:      clock,
		loc:        loc,
	}
}

func (s *lifecycleSweeperImpl) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	var errList []error

	completed, err := s.CompleteElapsed(ctx)
	result.Completed = completed
	if err != nil {
		errList = append(errList, err)
	}

	expired, err := s.ExpireHolds(ctx)
	result.Expired = expired
	if err != nil {
		errList = append(errList, err)
	}

	if result.Completed > 0 || result.Expired > 0 {
		slog.Info("lifecycle sweep finished", "completed", result.Completed, "expired", result.Expired)
	}
	return result, errors.Join(errList...)
}

func (s *lifecycleSweeperImpl) CompleteElapsed(ctx context.Context) (int, error) {
	now := s.clock.Now()
	today := calendar.DateOf(now, s.loc)

	found, err := s.candidates.ListConfirmedBefore(ctx, today)
	if err != nil {
		return 0, shared.StoreError(err, ErrReservationNotFound)
	}
	return s.apply(ctx, found, "complete", func(r *reservation.Reservation, now time.Time) error {
		return r.Complete(now, s.loc)
	})
}

func (s *lifecycleSweeperImpl) ExpireHolds(ctx context.Context) (int, error) {
	found, err := s.candidates.ListPendingHoldsExpiredAt(ctx, s.clock.Now())
	if err != nil {
		return 0, shared.StoreError(err, ErrReservationNotFound)
	}
	return s.apply(ctx, found, "expire", func(r *reservation.Reservation, now time.Time) error {
		return r.Expire(now)
	})
}

// apply moves each candidate under its own partition lock. A candidate that a
// concurrent writer already moved is skipped.
func (s *lifecycleSweeperImpl) apply(
	ctx context.Context,
	found []*reservation.Reservation,
	action string,
	fn func(r *reservation.Reservation, now time.Time) error,
) (int, error) {
	moved := 0
	var errList []error

	for _, candidate := range found {
		if ctx.Err() != nil {
			errList = append(errList, ctx.Err())
			break
		}

		err := s.uow.WithinPartition(ctx, candidate.Partition(), func(ctx context.Context, tx shared.Tx) error {
			current, err := tx.Reservations().FindByID(ctx, candidate.ID())
			if err != nil {
				return shared.StoreError(err, ErrReservationNotFound)
			}
			if err := fn(current, s.clock.Now()); err != nil {
				return err
			}
			return tx.Reservations().Update(ctx, current)
		})
		switch {
		case err == nil:
			moved++
			slog.Debug("sweeper moved reservation", "action", action, "reservation_id", candidate.ID())
		case errs.Is(err, errs.ErrInvalidTransition), errs.Is(err, errs.ErrNotElapsed):
			slog.Debug("sweeper skipped reservation", "action", action, "reservation_id", candidate.ID(), "reason", err.Error())
		default:
			slog.Error("sweeper failed to move reservation", "action", action, "reservation_id", candidate.ID(), "error", err.Error())
			errList = append(errList, err)
		}
	}
	return moved, errors.Join(errList...)
}
