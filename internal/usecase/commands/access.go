package commands

import (
	"context"
	"log/slog"
	"time"

	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/usecase/queries"
	"rogu-booking/internal/usecase/shared"

	"github.com/google/uuid"
)

type CheckInResult struct {
	Reservation  *queries.ReservationView
	CheckInCount int
	FirstCheckIn bool
	CheckedInAt  time.Time
}

type AccessCommands interface {
	// RecordCheckIn logs an entry. Repeated scans of the same token are
	// accepted and counted.
	RecordCheckIn(ctx context.Context, token string, controllerID uuid.UUID) (*CheckInResult, error)
}

type accessCommandsImpl struct {
	uow     shared.UnitOfWork
	locator shared.ReservationLocator
	clock   clock.Clock
	loc     *time.Location
}

func NewAccessCommands(uow shared.UnitOfWork, locator shared.ReservationLocator, clock clock.Clock, loc *time.Location) AccessCommands {
	if loc == nil {
		loc = time.UTC
	}
	return &accessCommandsImpl{
		uow:     uow,
		locator: locator,
		clock:   clock,
		loc:     loc,
	}
}

func (a *accessCommandsImpl) RecordCheckIn(ctx context.Context, token string, controllerID uuid.UUID) (*CheckInResult, error) {
	located, err := queries.LookupToken(ctx, a.locator, token)
	if err != nil {
		return nil, err
	}

	var result *CheckInResult
	err = a.uow.WithinPartition(ctx, located.Partition(), func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Reservations().FindByID(ctx, located.ID())
		if err != nil {
			return shared.StoreError(err, ErrReservationNotFound)
		}

		now := a.clock.Now()
		if err := current.CheckAdmission(now, a.loc); err != nil {
			return err
		}

		if err := tx.CheckIns().Append(ctx, shared.CheckIn{
			ID:            uuid.New(),
			ReservationID: current.ID(),
			ControllerID:  controllerID,
			CheckedInAt:   now,
		}); err != nil {
			return err
		}

		count, err := tx.CheckIns().CountByReservation(ctx, current.ID())
		if err != nil {
			return shared.StoreError(err, ErrReservationNotFound)
		}

		result = &CheckInResult{
			Reservation:  queries.NewReservationView(current),
			CheckInCount: count,
			FirstCheckIn: count == 1,
			CheckedInAt:  now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("check-in recorded",
		"reservation_id", result.Reservation.ID,
		"controller_id", controllerID,
		"check_in_count", result.CheckInCount)
	return result, nil
}
