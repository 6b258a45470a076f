//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/pkg/errs"
	"rogu-booking/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.ReservationBuilder)
	errIs  error
}

var policy = reservation.Policy{
	Location:           time.UTC,
	CancellationNotice: 2 * time.Hour,
	PendingHoldTTL:     15 * time.Minute,
}

func mustToken(t *testing.T, s string) reservation.AccessToken {
	t.Helper()
	token, err := reservation.NewAccessToken(s)
	require.NoError(t, err)
	return token
}

func newPending(t *testing.T, mutate func(*builder.ReservationBuilder)) *reservation.Reservation {
	t.Helper()
	v := builder.NewVenueBuilder().MustBuild()
	b := builder.NewReservationBuilder().ForVenue(v)
	if mutate != nil {
		b.With(mutate)
	}
	r, err := b.BuildDomain(v)
	require.NoError(t, err)
	return r
}

func newConfirmed(t *testing.T, mutate func(*builder.ReservationBuilder)) *reservation.Reservation {
	t.Helper()
	r := newPending(t, mutate)
	require.NoError(t, r.Confirm(mustToken(t, uuid.NewString()), builder.ReferenceNow))
	return r
}

func TestFactory(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		v := builder.NewVenueBuilder().MustBuild()
		b := builder.NewReservationBuilder().ForVenue(v)

		actual, err := b.BuildDomain(v)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, v.ID(), actual.VenueID())
		assert.Equal(t, b.ClientID, actual.ClientID())
		assert.Equal(t, calendar.MustDate(2024, time.March, 20), actual.Date())
		assert.Equal(t, []string{"09:00", "10:00"}, actual.TimeSlots().Strings())
		assert.Equal(t, 2, actual.TotalHours())
		assert.Equal(t, int64(30000), actual.TotalPrice().Amount())
		assert.Equal(t, reservation.StatusPending, actual.Status())
		assert.True(t, actual.AccessToken().IsZero())
		assert.Equal(t, builder.ReferenceNow, actual.CreatedAt())
		require.Len(t, actual.Participants(), 1)
		assert.Equal(t, "Ana Pérez", actual.Participants()[0].Name())
	})

	t.Run("slots are kept sorted", func(t *testing.T) {
		actual := newPending(t, func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"15:00", "09:00", "12:00"} })
		assert.Equal(t, []string{"09:00", "12:00", "15:00"}, actual.TimeSlots().Strings())
	})

	t.Run("validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "no slots",
				mutate: func(b *builder.ReservationBuilder) { b.TimeSlots = nil },
				errIs:  reservation.ErrEmptyTimeSlots,
			},
			{
				name:   "duplicate slot",
				mutate: func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"09:00", "09:00"} },
				errIs:  reservation.ErrDuplicateTimeSlot,
			},
			{
				name:   "before opening",
				mutate: func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"07:00"} },
				errIs:  reservation.ErrSlotOutsideHours,
			},
			{
				name:   "closing hour is not bookable",
				mutate: func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"22:00"} },
				errIs:  reservation.ErrSlotOutsideHours,
			},
			{
				name:   "last hour is bookable",
				mutate: func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"21:00"} },
			},
			{
				name:   "no participants",
				mutate: func(b *builder.ReservationBuilder) { b.Participants = nil },
				errIs:  reservation.ErrNoParticipants,
			},
			{
				name:   "unknown payment method",
				mutate: func(b *builder.ReservationBuilder) { b.PaymentMethod = "barter" },
				errIs:  reservation.ErrInvalidPaymentMethod,
			},
			{
				name:   "date in the past",
				mutate: func(b *builder.ReservationBuilder) { b.Date = "2024-03-18" },
				errIs:  reservation.ErrDateInPast,
			},
			{
				name:   "today with future slots",
				mutate: func(b *builder.ReservationBuilder) { b.Date = "2024-03-19"; b.TimeSlots = []string{"13:00"} },
			},
			{
				name:   "today with a started slot",
				mutate: func(b *builder.ReservationBuilder) { b.Date = "2024-03-19"; b.TimeSlots = []string{"12:00", "13:00"} },
				errIs:  reservation.ErrSlotInPast,
			},
		})
	})

	t.Run("validation errors carry the taxonomy mark", func(t *testing.T) {
		v := builder.NewVenueBuilder().MustBuild()
		_, err := builder.NewReservationBuilder().
			With(func(b *builder.ReservationBuilder) { b.TimeSlots = []string{"23:00"} }).
			BuildDomain(v)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.ErrValidation))
	})

	t.Run("inactive venue", func(t *testing.T) {
		v := builder.NewVenueBuilder().With(func(b *builder.VenueBuilder) { b.Active = false }).MustBuild()
		_, err := builder.NewReservationBuilder().BuildDomain(v)
		assert.ErrorIs(t, err, reservation.ErrVenueNotBookable)
		assert.True(t, errs.Is(err, errs.ErrVenueNotFound))
	})

	t.Run("blank participant name", func(t *testing.T) {
		_, err := reservation.NewParticipant("  ", "")
		assert.ErrorIs(t, err, reservation.ErrBlankParticipantName)
	})

	t.Run("price is snapshotted", func(t *testing.T) {
		v := builder.NewVenueBuilder().MustBuild()
		r, err := builder.NewReservationBuilder().BuildDomain(v)
		require.NoError(t, err)

		_, err = v.WithPrice(99999, builder.ReferenceNow)
		require.NoError(t, err)
		assert.Equal(t, int64(30000), r.TotalPrice().Amount())
	})
}

func TestReservationTransitions(t *testing.T) {
	t.Run("confirm sets token once", func(t *testing.T) {
		r := newPending(t, nil)
		require.NoError(t, r.Confirm(mustToken(t, "tok-1"), builder.ReferenceNow))

		assert.Equal(t, reservation.StatusConfirmed, r.Status())
		assert.Equal(t, "tok-1", r.AccessToken().String())
		require.NotNil(t, r.ConfirmedAt())

		err := r.Confirm(mustToken(t, "tok-2"), builder.ReferenceNow)
		assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
		assert.Equal(t, "tok-1", r.AccessToken().String())
	})

	t.Run("hold then decline", func(t *testing.T) {
		r := newPending(t, nil)
		require.NoError(t, r.Hold(builder.ReferenceNow, 15*time.Minute))
		require.NotNil(t, r.HoldExpiresAt())
		assert.Equal(t, builder.ReferenceNow.Add(15*time.Minute), *r.HoldExpiresAt())

		require.NoError(t, r.Decline(builder.ReferenceNow))
		assert.Equal(t, reservation.StatusCancelled, r.Status())
		assert.Equal(t, reservation.CancelReasonPaymentDeclined, r.CancelReason())
		assert.Nil(t, r.HoldExpiresAt())
		assert.False(t, r.BlocksSlots())
	})

	t.Run("expire requires an elapsed hold", func(t *testing.T) {
		r := newPending(t, nil)
		require.NoError(t, r.Hold(builder.ReferenceNow, 15*time.Minute))

		assert.ErrorIs(t, r.Expire(builder.ReferenceNow.Add(5*time.Minute)), reservation.ErrHoldStillActive)
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.False(t, r.HoldExpired(builder.ReferenceNow.Add(5*time.Minute)))
		assert.True(t, r.HoldExpired(builder.ReferenceNow.Add(15*time.Minute)))

		require.NoError(t, r.Expire(builder.ReferenceNow.Add(15*time.Minute)))
		assert.Equal(t, reservation.CancelReasonHoldExpired, r.CancelReason())
	})

	t.Run("cancel by owner", func(t *testing.T) {
		r := newConfirmed(t, nil)
		require.NoError(t, r.Cancel(r.ClientID(), builder.ReferenceNow, policy))

		assert.Equal(t, reservation.StatusCancelled, r.Status())
		require.NotNil(t, r.CancelledBy())
		assert.Equal(t, r.ClientID(), *r.CancelledBy())
		assert.Equal(t, reservation.CancelReasonClient, r.CancelReason())
	})

	t.Run("cancel by someone else", func(t *testing.T) {
		r := newConfirmed(t, nil)
		err := r.Cancel(uuid.New(), builder.ReferenceNow, policy)
		assert.ErrorIs(t, err, reservation.ErrNotOwner)
		assert.True(t, errs.Is(err, errs.ErrForbidden))
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
	})

	t.Run("cancellation notice window", func(t *testing.T) {
		// earliest slot starts 2024-03-20 09:00 UTC, so the cutoff is 07:00
		cutoff := time.Date(2024, 3, 20, 7, 0, 0, 0, time.UTC)

		r := newConfirmed(t, nil)
		require.NoError(t, r.Cancel(r.ClientID(), cutoff.Add(-time.Second), policy))

		r = newConfirmed(t, nil)
		err := r.Cancel(r.ClientID(), cutoff, policy)
		assert.ErrorIs(t, err, reservation.ErrCancellationTooLate)
		assert.True(t, errs.Is(err, errs.ErrCancellationWindowClosed))
		assert.Equal(t, reservation.StatusConfirmed, r.Status())
	})

	t.Run("cancel is not allowed from pending", func(t *testing.T) {
		r := newPending(t, nil)
		err := r.Cancel(r.ClientID(), builder.ReferenceNow, policy)
		assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
		assert.Equal(t, reservation.StatusPending, r.Status())
	})

	t.Run("complete only after the date has passed", func(t *testing.T) {
		r := newConfirmed(t, nil)

		err := r.Complete(time.Date(2024, 3, 20, 23, 59, 0, 0, time.UTC), time.UTC)
		assert.ErrorIs(t, err, reservation.ErrReservationNotElapsed)
		assert.True(t, errs.Is(err, errs.ErrNotElapsed))

		require.NoError(t, r.Complete(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), time.UTC))
		assert.Equal(t, reservation.StatusCompleted, r.Status())
		require.NotNil(t, r.CompletedAt())
	})

	t.Run("terminal states reject every move", func(t *testing.T) {
		later := time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC)

		cancelled := newConfirmed(t, nil)
		require.NoError(t, cancelled.Cancel(cancelled.ClientID(), builder.ReferenceNow, policy))

		completed := newConfirmed(t, nil)
		require.NoError(t, completed.Complete(later, time.UTC))

		for _, r := range []*reservation.Reservation{cancelled, completed} {
			status := r.Status()
			assert.ErrorIs(t, r.Cancel(r.ClientID(), builder.ReferenceNow, policy), reservation.ErrInvalidTransition)
			assert.ErrorIs(t, r.Complete(later, time.UTC), reservation.ErrInvalidTransition)
			assert.ErrorIs(t, r.Confirm(mustToken(t, "x"), later), reservation.ErrInvalidTransition)
			assert.ErrorIs(t, r.Decline(later), reservation.ErrInvalidTransition)
			assert.Equal(t, status, r.Status())
		}
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		r := newConfirmed(t, nil)
		restored := reservation.Reconstruct(r.Snapshot())
		assert.Equal(t, r.Snapshot(), restored.Snapshot())
	})
}

func TestStatus(t *testing.T) {
	testCases := []struct {
		from, to reservation.Status
		allowed  bool
	}{
		{reservation.StatusPending, reservation.StatusConfirmed, true},
		{reservation.StatusPending, reservation.StatusCancelled, true},
		{reservation.StatusPending, reservation.StatusCompleted, false},
		{reservation.StatusConfirmed, reservation.StatusCancelled, true},
		{reservation.StatusConfirmed, reservation.StatusCompleted, true},
		{reservation.StatusConfirmed, reservation.StatusPending, false},
		{reservation.StatusCancelled, reservation.StatusConfirmed, false},
		{reservation.StatusCompleted, reservation.StatusCancelled, false},
	}
	for _, tc := range testCases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}

	_, err := reservation.ParseStatus("archived")
	assert.ErrorIs(t, err, reservation.ErrInvalidStatus)
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	v := builder.NewVenueBuilder().MustBuild()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := builder.NewReservationBuilder().ForVenue(v).With(tc.mutate)
			actual, err := b.BuildDomain(v)
			if tc.errIs != nil {
				assert.ErrorIs(t, err, tc.errIs)
				assert.Nil(t, actual)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, actual)
		})
	}
}

func TestCheckAdmission(t *testing.T) {
	onTheDay := time.Date(2024, 3, 20, 8, 30, 0, 0, time.UTC)

	t.Run("confirmed on its date", func(t *testing.T) {
		r := newConfirmed(t, nil)
		assert.NoError(t, r.CheckAdmission(onTheDay, time.UTC))
		assert.NoError(t, r.CheckAdmission(time.Date(2024, 3, 20, 23, 0, 0, 0, time.UTC), time.UTC))
	})

	t.Run("wrong day", func(t *testing.T) {
		r := newConfirmed(t, nil)
		err := r.CheckAdmission(builder.ReferenceNow, time.UTC)
		assert.ErrorIs(t, err, reservation.ErrEntryWrongDay)
		assert.True(t, errs.Is(err, errs.ErrInvalidAccessToken))
	})

	t.Run("not confirmed", func(t *testing.T) {
		r := newPending(t, nil)
		assert.ErrorIs(t, r.CheckAdmission(onTheDay, time.UTC), reservation.ErrEntryNotConfirmed)
	})

	t.Run("business zone decides the day", func(t *testing.T) {
		loc := time.FixedZone("UTC-3", -3*60*60)
		r := newConfirmed(t, nil)
		// 02:00 UTC on the 21st is still the 20th three hours west
		assert.NoError(t, r.CheckAdmission(time.Date(2024, 3, 21, 2, 0, 0, 0, time.UTC), loc))
	})
}
