package components

import (
	"context"
	"fmt"
	"log/slog"

	"rogu-booking/internal/infra/db"
	"rogu-booking/internal/infra/memstore"
	"rogu-booking/internal/infra/postgres"
	"rogu-booking/internal/infra/seed"
	"rogu-booking/internal/pkg/clock"
	"rogu-booking/internal/pkg/config"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/usecase/queries"
	"rogu-booking/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPersistence,
	),
	fx.Invoke(seedVenues),
)

// Persistence exposes one storage driver through every port the use cases need.
type Persistence struct {
	fx.Out

	UnitOfWork   shared.UnitOfWork
	Venues       shared.VenueRepository
	VenueReads   queries.VenueReadStore
	Reservations queries.ReservationReadStore
	Locator      shared.ReservationLocator
	Candidates   commands.SweepCandidates
}

func NewPersistence(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (Persistence, error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		return newPostgresPersistence(lc, cfg, logger)
	default:
		store := memstore.New(logger)
		logger.Info("using in-memory store")
		return Persistence{
			UnitOfWork:   store,
			Venues:       store.Venues(),
			VenueReads:   store.Venues(),
			Reservations: store.Reservations(),
			Locator:      store.Reservations(),
			Candidates:   store.Reservations(),
		}, nil
	}
}

func newPostgresPersistence(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (Persistence, error) {
	ctx := context.Background()
	pool, cleanup, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return Persistence{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			cleanup()
			return nil
		},
	})

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			cleanup()
			return Persistence{}, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	uow := postgres.NewPostgresUoW(pool, logger)
	logger.Info("using postgres store", "host", cfg.DB.Host, "database", cfg.DB.DBName)
	return Persistence{
		UnitOfWork:   uow,
		Venues:       uow.Venues(),
		VenueReads:   uow.Venues(),
		Reservations: uow.Reservations(),
		Locator:      uow.Reservations(),
		Candidates:   uow.Reservations(),
	}, nil
}

func seedVenues(lc fx.Lifecycle, cfg config.Config, venues shared.VenueRepository, clk clock.Clock, logger *slog.Logger) {
	if cfg.Store.VenueSeedFile == "" {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			n, err := seed.LoadVenueFile(ctx, cfg.Store.VenueSeedFile, venues, clk.Now())
			if err != nil {
				return err
			}
			logger.Info("venues seeded", "count", n, "file", cfg.Store.VenueSeedFile)
			return nil
		},
	})
}
