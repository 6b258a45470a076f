//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra"
	"rogu-booking/internal/infra/postgres"
	"rogu-booking/internal/usecase/shared"
	"rogu-booking/tests/common/builder"
	"rogu-booking/tests/common/dbtest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*postgres.PostgresUoW, *venue.Venue) {
	t.Helper()
	pool, _ := dbtest.NewDatabase(t)
	v := builder.NewVenueBuilder().MustBuild()
	dbtest.CreateTestVenue(t, pool, v)
	return postgres.NewPostgresUoW(pool, nil), v
}

func pending(t *testing.T, v *venue.Venue, hours ...string) *reservation.Reservation {
	t.Helper()
	b := builder.NewReservationBuilder().ForVenue(v)
	if len(hours) > 0 {
		b.TimeSlots = hours
	}
	res, err := b.BuildDomain(v)
	require.NoError(t, err)
	return res
}

func confirm(t *testing.T, res *reservation.Reservation, token string) {
	t.Helper()
	tok, err := reservation.NewAccessToken(token)
	require.NoError(t, err)
	require.NoError(t, res.Confirm(tok, builder.ReferenceNow))
}

func insert(ctx context.Context, uow *postgres.PostgresUoW, res *reservation.Reservation) error {
	return uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().Insert(ctx, res)
	})
}

func TestReservationRoundTrip(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)

	res := pending(t, v, "10:00", "11:00")
	confirm(t, res, "tok-roundtrip")
	require.NoError(t, insert(ctx, uow, res))

	byID, err := uow.Reservations().FindByID(ctx, res.ID())
	require.NoError(t, err)
	want, got := res.Snapshot(), byID.Snapshot()
	assert.Equal(t, want.VenueID, got.VenueID)
	assert.Equal(t, want.ClientID, got.ClientID)
	assert.Equal(t, want.Date, got.Date)
	assert.Equal(t, want.TimeSlots, got.TimeSlots)
	assert.Equal(t, want.TotalPrice, got.TotalPrice)
	assert.Equal(t, want.Participants, got.Participants)
	assert.Equal(t, reservation.StatusConfirmed, got.Status)
	assert.Equal(t, "tok-roundtrip", got.AccessToken)
	require.NotNil(t, got.ConfirmedAt)
	assert.True(t, want.ConfirmedAt.Equal(*got.ConfirmedAt))

	byToken, err := uow.Reservations().FindByToken(ctx, "tok-roundtrip")
	require.NoError(t, err)
	assert.Equal(t, res.ID(), byToken.ID())

	_, err = uow.Reservations().FindByID(ctx, uuid.New())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestLifecycleUpdate(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)

	res := pending(t, v)
	confirm(t, res, "tok-cancel")
	require.NoError(t, insert(ctx, uow, res))

	require.NoError(t, res.Cancel(res.ClientID(), builder.ReferenceNow, reservation.Policy{
		Location:           time.UTC,
		CancellationNotice: 2 * time.Hour,
	}))
	require.NoError(t, uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().Update(ctx, res)
	}))

	found, err := uow.Reservations().FindByID(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCancelled, found.Status())
	assert.Equal(t, reservation.CancelReasonClient, found.CancelReason())
	require.NotNil(t, found.CancelledBy())
	assert.Equal(t, res.ClientID(), *found.CancelledBy())

	err = uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
		return tx.Reservations().Update(ctx, pending(t, v))
	})
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestConstraints(t *testing.T) {
	ctx := context.Background()

	t.Run("access tokens are unique", func(t *testing.T) {
		uow, v := setup(t)
		first := pending(t, v, "09:00")
		confirm(t, first, "tok-dup")
		second := pending(t, v, "10:00")
		confirm(t, second, "tok-dup")

		require.NoError(t, insert(ctx, uow, first))
		err := insert(ctx, uow, second)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)
	})

	t.Run("idempotency keys are unique per client", func(t *testing.T) {
		uow, v := setup(t)
		res := pending(t, v)
		require.NoError(t, insert(ctx, uow, res))

		rec := shared.IdempotencyRecord{
			Key:           "key-1",
			ClientID:      res.ClientID(),
			RequestHash:   "hash",
			ReservationID: res.ID(),
			CreatedAt:     builder.ReferenceNow,
		}
		save := func(r shared.IdempotencyRecord) error {
			return uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
				return tx.Idempotency().Save(ctx, r)
			})
		}
		require.NoError(t, save(rec))

		err := save(rec)
		assert.True(t, infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)

		other := rec
		other.ClientID = uuid.New()
		require.NoError(t, save(other))

		err = uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
			found, err := tx.Idempotency().Find(ctx, rec.ClientID, rec.Key)
			if err != nil {
				return err
			}
			assert.Equal(t, res.ID(), found.ReservationID)
			assert.Equal(t, "hash", found.RequestHash)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestWithinPartitionRollback(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)
	res := pending(t, v)
	boom := errors.New("boom")

	err := uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Reservations().Insert(ctx, res); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = uow.Reservations().FindByID(ctx, res.ID())
	assert.True(t, infra.IsKind(err, infra.KindNotFound))
}

func TestPartitionLockSerializesWriters(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)
	key := pending(t, v).Partition()

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		order []string
		wg    sync.WaitGroup
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = uow.WithinPartition(ctx, key, func(ctx context.Context, tx shared.Tx) error {
			close(entered)
			<-release
			record("first")
			return nil
		})
	}()
	<-entered
	go func() {
		defer wg.Done()
		_ = uow.WithinPartition(ctx, key, func(ctx context.Context, tx shared.Tx) error {
			record("second")
			return nil
		})
	}()

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	assert.Empty(t, order, "second writer ran while the partition was held")
	mu.Unlock()

	close(release)
	wg.Wait()
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestCheckInCounting(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)
	res := pending(t, v)
	confirm(t, res, "tok-gate")
	require.NoError(t, insert(ctx, uow, res))

	controller := uuid.New()
	for i := range 3 {
		err := uow.WithinPartition(ctx, res.Partition(), func(ctx context.Context, tx shared.Tx) error {
			return tx.CheckIns().Append(ctx, shared.CheckIn{
				ID:            uuid.New(),
				ReservationID: res.ID(),
				ControllerID:  controller,
				CheckedInAt:   builder.ReferenceNow.Add(time.Duration(i) * time.Minute),
			})
		})
		require.NoError(t, err)
	}

	n, err := uow.Reservations().CountCheckIns(ctx, res.ID())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = uow.Reservations().CountCheckIns(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweeperCandidates(t *testing.T) {
	ctx := context.Background()
	uow, v := setup(t)

	held := pending(t, v, "09:00")
	require.NoError(t, held.Hold(builder.ReferenceNow, 15*time.Minute))
	require.NoError(t, insert(ctx, uow, held))

	confirmed := pending(t, v, "12:00")
	confirm(t, confirmed, "tok-sweep")
	require.NoError(t, insert(ctx, uow, confirmed))

	due, err := uow.Reservations().ListPendingHoldsExpiredAt(ctx, builder.ReferenceNow.Add(15*time.Minute))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, held.ID(), due[0].ID())

	due, err = uow.Reservations().ListPendingHoldsExpiredAt(ctx, builder.ReferenceNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	elapsed, err := uow.Reservations().ListConfirmedBefore(ctx, confirmed.Date().AddDays(1))
	require.NoError(t, err)
	require.Len(t, elapsed, 1)
	assert.Equal(t, confirmed.ID(), elapsed[0].ID())

	elapsed, err = uow.Reservations().ListConfirmedBefore(ctx, confirmed.Date())
	require.NoError(t, err)
	assert.Empty(t, elapsed)
}

func TestVenueOperatingWindows(t *testing.T) {
	ctx := context.Background()
	pool, _ := dbtest.NewDatabase(t)
	repo := postgres.NewPostgresUoW(pool, nil).Venues()

	tests := []struct {
		name        string
		open, close int
	}{
		{name: "zero-length window", open: 10, close: 10},
		{name: "whole day", open: 0, close: 24},
		{name: "closed at midnight", open: 24, close: 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := builder.NewVenueBuilder().With(func(b *builder.VenueBuilder) {
				b.Open, b.Close = tt.open, tt.close
			}).MustBuild()
			require.NoError(t, repo.Save(ctx, v))

			found, err := repo.FindByID(ctx, v.ID())
			require.NoError(t, err)
			assert.Equal(t, tt.open, found.OperatingHours().Open())
			assert.Equal(t, tt.close, found.OperatingHours().Close())
		})
	}
}
