package reminder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Runner fires dispatcher ticks on a fixed interval. Ticks run with
// time.Now().UTC() injected, so the dispatcher itself never reads the clock.
// If a tick is still running when the next one fires, the new one is skipped:
// overlapping sweeps over the same item set are the main duplicate-send hazard.
type Runner struct {
	c        *cron.Cron
	d        *Dispatcher
	interval time.Duration
	logger   zerolog.Logger
	running  atomic.Bool
}

// NewRunner returns a runner that ticks the dispatcher every interval.
func NewRunner(d *Dispatcher, interval time.Duration, logger zerolog.Logger) *Runner {
	return &Runner{c: cron.New(), d: d, interval: interval, logger: logger}
}

// Start schedules the periodic tick and starts the cron loop.
func (r *Runner) Start() error {
	if _, err := r.c.AddFunc(fmt.Sprintf("@every %s", r.interval), r.run); err != nil {
		return fmt.Errorf("schedule reminder tick: %w", err)
	}
	r.c.Start()
	r.logger.Info().Dur("interval", r.interval).Msg("reminder dispatcher started")
	return nil
}

// Stop halts scheduling and waits for an in-flight tick, bounded by ctx.
func (r *Runner) Stop(ctx context.Context) error {
	stopped := r.c.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) run() {
	if !r.running.CompareAndSwap(false, true) {
		r.logger.Warn().Msg("previous reminder tick still running, skipping")
		return
	}
	defer r.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()
	if err := r.d.Tick(ctx, time.Now().UTC()); err != nil {
		r.logger.Error().Err(err).Msg("reminder tick failed")
	}
}
