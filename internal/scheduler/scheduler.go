// Package scheduler runs the periodic maintenance jobs: purging expired
// password reset tokens and refreshing the gauges that are computed from
// the database or the mail queue.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"gymops/internal/logger"

	"github.com/robfig/cron/v3"
)

const defaultTimeout = 2 * time.Minute

type Scheduler struct {
	cron    *cron.Cron
	timeout time.Duration
}

func New(timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		timeout: timeout,
	}
}

// Add registers fn under spec. Each run gets its own context bounded by the
// scheduler timeout.
func (s *Scheduler) Add(name, spec string, fn func(ctx context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, fn) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) run(name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		logger.WithError(err).Error("job failed", "job", name, "duration", time.Since(start))
		return
	}
	logger.Debug("job finished", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.Warn("scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}
