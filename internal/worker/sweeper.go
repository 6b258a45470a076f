// Package worker runs background jobs tied to the process lifecycle.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rogu-booking/internal/usecase/commands"
)

// SweepRunner calls the lifecycle sweeper on a fixed interval until stopped.
type SweepRunner struct {
	sweeper  commands.LifecycleSweeper
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSweepRunner(sweeper commands.LifecycleSweeper, interval time.Duration, logger *slog.Logger) *SweepRunner {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SweepRunner{sweeper: sweeper, interval: interval, logger: logger}
}

func (r *SweepRunner) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go r.loop(ctx)
	r.logger.Info("lifecycle sweeper started", "interval", r.interval.String())
}

// Stop cancels the running sweep and waits for the loop to exit or ctx to end.
func (r *SweepRunner) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.logger.Info("lifecycle sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single sweep bounded by the interval.
func (r *SweepRunner) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	result, err := r.sweeper.Sweep(ctx)
	if err != nil {
		r.logger.Error("lifecycle sweep failed",
			"completed", result.Completed,
			"expired", result.Expired,
			"error", err.Error())
	}
}

func (r *SweepRunner) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}
