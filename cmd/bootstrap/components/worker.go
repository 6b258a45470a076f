package components

import (
	"context"
	"log/slog"

	"rogu-booking/internal/pkg/config"
	"rogu-booking/internal/usecase/commands"
	"rogu-booking/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		func(sweeper commands.LifecycleSweeper, cfg config.Config, logger *slog.Logger) *worker.SweepRunner {
			return worker.NewSweepRunner(sweeper, cfg.Booking.SweepInterval, logger)
		},
	),
	fx.Invoke(startSweeper),
)

func startSweeper(lc fx.Lifecycle, runner *worker.SweepRunner) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			runner.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return runner.Stop(ctx)
		},
	})
}
