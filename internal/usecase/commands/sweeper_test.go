//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rogu-booking/internal/domain/reservation"
	"rogu-booking/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleSweeper(t *testing.T) {
	t.Run("lapsed holds are released", func(t *testing.T) {
		h := newHarness(t)
		pending := h.create(t, method(reservation.PaymentTokenBased))
		h.create(t, method(reservation.PaymentTokenBased), slots("14:00"))

		h.clock.Add(14 * time.Minute)
		expired, err := h.sweeper.ExpireHolds(context.Background())
		require.NoError(t, err)
		assert.Zero(t, expired)

		h.clock.Add(time.Minute)
		expired, err = h.sweeper.ExpireHolds(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, expired)

		stored, err := h.store.Reservations().FindByID(context.Background(), pending.Reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, stored.Status())
		assert.Equal(t, reservation.CancelReasonHoldExpired, stored.CancelReason())
		assert.Empty(t, h.reserved(t))

		h.create(t)
	})

	t.Run("elapsed confirmed reservations are completed", func(t *testing.T) {
		h := newHarness(t)
		confirmed := h.create(t)
		h.create(t, func(b *builder.ReservationBuilder) { b.Date = "2024-03-22" })

		h.clock.Set(time.Date(2024, 3, 21, 0, 30, 0, 0, time.UTC))
		result, err := h.sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Completed)
		assert.Zero(t, result.Expired)

		stored, err := h.store.Reservations().FindByID(context.Background(), confirmed.Reservation.ID)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCompleted, stored.Status())

		result, err = h.sweeper.Sweep(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.Completed)
	})

	t.Run("cancelled context stops the sweep", func(t *testing.T) {
		h := newHarness(t)
		h.create(t)
		h.clock.Set(time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := h.sweeper.CompleteElapsed(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
