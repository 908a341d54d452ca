package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"StockPulse/pkg/logger"
)

const sweepTimeout = 5 * time.Minute

// Sweeper removes superseded stale runs.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Janitor runs the sweeper on a cron schedule.
type Janitor struct {
	sweeper  Sweeper
	schedule string
	cron     *cron.Cron
	log      *logger.Logger
	mu       sync.Mutex
}

func NewJanitor(sweeper Sweeper, schedule string, log *logger.Logger) *Janitor {
	if schedule == "" {
		schedule = "@every 1h"
	}
	return &Janitor{
		sweeper:  sweeper,
		schedule: schedule,
		cron:     cron.New(),
		log:      log,
	}
}

// Start registers the sweep and starts the scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.RunOnce); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("janitor started", logger.String("schedule", j.schedule))
	return nil
}

// Stop halts scheduling and waits for a running sweep.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
	j.log.Info("janitor stopped")
}

// RunOnce performs one sweep. Overlapping sweeps are skipped.
func (j *Janitor) RunOnce() {
	if !j.mu.TryLock() {
		j.log.Debug("sweep already running, skipping")
		return
	}
	defer j.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	start := time.Now()
	n, err := j.sweeper.Sweep(ctx)
	if err != nil {
		j.log.Error("sweep failed", logger.Error(err))
		return
	}
	j.log.Info("sweep completed",
		logger.Int("removed", n),
		logger.Duration("took", time.Since(start)),
	)
}
