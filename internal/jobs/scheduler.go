// Package jobs runs periodic maintenance inside the API process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	ExpireAttemptsSpec = "0 */5 * * * *"
	PurgeAvailSpec     = "0 30 0 * * *"
	jobTimeout         = 2 * time.Minute
)

// AttemptExpirer marks abandoned payment attempts expired.
type AttemptExpirer interface {
	ExpireStaleAttempts(ctx context.Context) (int64, error)
}

// AvailabilityPurger deletes open days that are already past.
type AvailabilityPurger interface {
	PurgePast(ctx context.Context) (int64, error)
}

type Scheduler struct {
	cron     *cron.Cron
	attempts AttemptExpirer
	days     AvailabilityPurger
	log      logrus.FieldLogger
}

func NewScheduler(attempts AttemptExpirer, days AvailabilityPurger, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		attempts: attempts,
		days:     days,
		log:      log,
	}
}

// Start schedules both jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(ExpireAttemptsSpec, func() { s.ExpireAttempts(context.Background()) }); err != nil {
		return fmt.Errorf("schedule attempt expiry: %w", err)
	}
	if _, err := s.cron.AddFunc(PurgeAvailSpec, func() { s.PurgeAvailability(context.Background()) }); err != nil {
		return fmt.Errorf("schedule availability purge: %w", err)
	}
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("job scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("job scheduler stopped")
}

// RunOnce runs every job immediately, in order.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.ExpireAttempts(ctx); err != nil {
		return err
	}
	return s.PurgeAvailability(ctx)
}

func (s *Scheduler) ExpireAttempts(ctx context.Context) error {
	return s.run(ctx, "expire_payment_attempts", s.attempts.ExpireStaleAttempts)
}

func (s *Scheduler) PurgeAvailability(ctx context.Context) error {
	return s.run(ctx, "purge_past_availability", s.days.PurgePast)
}

func (s *Scheduler) run(ctx context.Context, name string, job func(context.Context) (int64, error)) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	n, err := job(ctx)
	entry := s.log.WithFields(logrus.Fields{
		"job":         name,
		"affected":    n,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("job failed")
		return fmt.Errorf("%s: %w", name, err)
	}
	entry.Info("job finished")
	return nil
}
