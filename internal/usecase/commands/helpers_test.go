//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"rogu-booking/internal/domain/calendar"
	"rogu-booking/internal/domain/reservation"
	"rogu-booking/internal/domain/venue"
	"rogu-booking/internal/infra/memstore"
	"rogu-booking/internal/infra/payment"
	"rogu-booking/internal/infra/token"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/config"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/shared"
	"rogu-booking/tests/common/builder"

	"github.com/stretchr/testify/require"
)

var testPolicy = reservation.Policy{
	Location:           time.UTC,
	CancellationNotice: 2 * time.Hour,
	PendingHoldTTL:     15 * time.Minute,
}

type harness struct {
	store   *memstore.Store
	clock   *clock.MockClock
	venue   *venue.Venue
	cmds    commands.ReservationCommands
	access  commands.AccessCommands
	sweeper commands.LifecycleSweeper
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	payments  config.PaymentConfig
	generator commands.TokenGenerator
	gateway   func(commands.PaymentGateway) commands.PaymentGateway
	uow       func(shared.UnitOfWork) shared.UnitOfWork
}

func withPayments(cfg config.PaymentConfig) harnessOption {
	return func(h *harnessConfig) { h.payments = cfg }
}

func withTokenGenerator(g commands.TokenGenerator) harnessOption {
	return func(h *harnessConfig) { h.generator = g }
}

// withGateway wraps the demo gateway the reservation commands charge through.
func withGateway(wrap func(commands.PaymentGateway) commands.PaymentGateway) harnessOption {
	return func(h *harnessConfig) { h.gateway = wrap }
}

// withUnitOfWork wraps the store as seen by the reservation commands.
func withUnitOfWork(wrap func(shared.UnitOfWork) shared.UnitOfWork) harnessOption {
	return func(h *harnessConfig) { h.uow = wrap }
}

// newHarness wires the use cases over an in-memory store holding the default
// venue, with the clock at builder.ReferenceNow.
func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	hc := harnessConfig{
		payments:  config.PaymentConfig{DeferredMethods: []string{string(reservation.PaymentTokenBased)}},
		generator: token.NewRandomGenerator(),
		gateway:   func(g commands.PaymentGateway) commands.PaymentGateway { return g },
		uow:       func(u shared.UnitOfWork) shared.UnitOfWork { return u },
	}
	for _, opt := range opts {
		opt(&hc)
	}

	store := memstore.New(nil)
	clk := clock.NewMockClock(builder.ReferenceNow)
	v := builder.NewVenueBuilder().MustBuild()
	require.NoError(t, store.Venues().Save(context.Background(), v))

	factory := reservation.NewFactory(clk, reservation.NewHourlyPriceCalculator(), testPolicy)
	issuer := commands.NewTokenIssuer(hc.generator, 5)

	return &harness{
		store: store,
		clock: clk,
		venue: v,
		cmds: commands.NewReservationCommands(
			hc.uow(store), store.Venues(), store.Reservations(), factory,
			hc.gateway(payment.NewDemoGateway(hc.payments)), issuer, clk,
		),
		access:  commands.NewAccessCommands(store, store.Reservations(), clk, time.UTC),
		sweeper: commands.NewLifecycleSweeper(store, store.Reservations(), clk, testPolicy),
	}
}

func (h *harness) input(t *testing.T, mutate ...func(*builder.ReservationBuilder)) commands.CreateReservationInput {
	t.Helper()
	b := builder.NewReservationBuilder().ForVenue(h.venue)
	for _, m := range mutate {
		b.With(m)
	}
	draft, err := b.BuildDraft()
	require.NoError(t, err)
	return commands.CreateReservationInput{
		VenueID:       b.VenueID,
		ClientID:      draft.ClientID,
		Date:          draft.Date,
		Hours:         draft.Hours,
		Participants:  draft.Participants,
		PaymentMethod: draft.PaymentMethod,
	}
}

func (h *harness) create(t *testing.T, mutate ...func(*builder.ReservationBuilder)) *commands.CreateReservationResult {
	t.Helper()
	result, err := h.cmds.CreateReservation(context.Background(), h.input(t, mutate...))
	require.NoError(t, err)
	return result
}

func (h *harness) reserved(t *testing.T) []string {
	t.Helper()
	date, err := calendar.ParseDate(builder.ReferenceDate)
	require.NoError(t, err)
	found, err := h.store.Reservations().ListByPartition(context.Background(),
		reservation.PartitionKey{VenueID: h.venue.ID(), Date: date})
	require.NoError(t, err)

	var out []string
	for _, r := range found {
		if r.BlocksSlots() {
			out = append(out, r.TimeSlots().Strings()...)
		}
	}
	return out
}

func slots(hours ...string) func(*builder.ReservationBuilder) {
	return func(b *builder.ReservationBuilder) { b.TimeSlots = hours }
}

func method(m reservation.PaymentMethod) func(*builder.ReservationBuilder) {
	return func(b *builder.ReservationBuilder) { b.PaymentMethod = string(m) }
}

// fixedGenerator always proposes the same token.
type fixedGenerator struct{ value string }

func (g fixedGenerator) Generate() (string, error) { return g.value, nil }

// sequenceGenerator proposes the given tokens in order, then random ones.
type sequenceGenerator struct {
	mu     sync.Mutex
	values []string
	next   commands.TokenGenerator
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.values) == 0 {
		return g.next.Generate()
	}
	v := g.values[0]
	g.values = g.values[1:]
	return v, nil
}

// countingGateway records every charge before delegating.
type countingGateway struct {
	commands.PaymentGateway

	mu         sync.Mutex
	references []string
}

func (g *countingGateway) Charge(ctx context.Context, reference string, res *reservation.Reservation) (commands.PaymentOutcome, error) {
	g.mu.Lock()
	g.references = append(g.references, reference)
	g.mu.Unlock()
	return g.PaymentGateway.Charge(ctx, reference, res)
}

func (g *countingGateway) charges() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.references...)
}

// barrierUoW holds the first n units at the end of their work until all n
// have staged their writes, so they reach commit together.
type barrierUoW struct {
	shared.UnitOfWork

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending int
}

func newBarrierUoW(inner shared.UnitOfWork, n int) *barrierUoW {
	b := &barrierUoW{UnitOfWork: inner, pending: n}
	b.wg.Add(n)
	return b
}

func (b *barrierUoW) WithinPartition(ctx context.Context, key reservation.PartitionKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	return b.UnitOfWork.WithinPartition(ctx, key, func(ctx context.Context, tx shared.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		b.mu.Lock()
		hold := b.pending > 0
		if hold {
			b.pending--
		}
		b.mu.Unlock()
		if hold {
			b.wg.Done()
			b.wg.Wait()
		}
		return nil
	})
}
