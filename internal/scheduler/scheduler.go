// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/DevSidd2006/learnquest/internal/logger"
)

// SessionPurger deletes auth sessions past their expiry.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

type Scheduler struct {
	scheduler *gocron.Scheduler
	purger    SessionPurger
	interval  time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

func New(purger SessionPurger, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		purger:    purger,
		interval:  interval,
		timeout:   30 * time.Second,
		log:       log.With("component", "scheduler"),
	}
}

// Start registers the jobs and runs them in the background. The first purge
// runs immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.purgeSessions); err != nil {
		return fmt.Errorf("schedule session purge: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "session_purge_interval", s.interval.String())
	return nil
}

func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) purgeSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		s.log.Error("session purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("purged expired sessions", "count", n)
	}
}
