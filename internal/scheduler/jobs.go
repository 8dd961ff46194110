package scheduler

import (
	"context"
)

type ResetTokenPurger interface {
	PurgeExpiredResetTokens(ctx context.Context) (int64, error)
}

type ActiveGaugeRefresher interface {
	RefreshActiveGauge(ctx context.Context) error
}

type QueueMonitor interface {
	QueueLength(ctx context.Context) int64
}

type Schedules struct {
	Reaper string
	Gauge  string
}

type Jobs struct {
	Tokens        ResetTokenPurger
	Subscriptions ActiveGaugeRefresher
	// Mail is optional.
	Mail QueueMonitor
}

// Register adds the maintenance jobs to s.
func Register(s *Scheduler, schedules Schedules, jobs Jobs) error {
	if err := s.Add("purge-reset-tokens", schedules.Reaper, purgeResetTokens(jobs.Tokens)); err != nil {
		return err
	}
	if err := s.Add("refresh-active-gauge", schedules.Gauge, jobs.Subscriptions.RefreshActiveGauge); err != nil {
		return err
	}
	if jobs.Mail != nil {
		if err := s.Add("email-queue-gauge", schedules.Gauge, sampleQueue(jobs.Mail)); err != nil {
			return err
		}
	}
	return nil
}

func purgeResetTokens(p ResetTokenPurger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := p.PurgeExpiredResetTokens(ctx)
		return err
	}
}

func sampleQueue(q QueueMonitor) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		q.QueueLength(ctx)
		return nil
	}
}
