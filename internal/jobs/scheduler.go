package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/stunity/feed-service/internal/platform/logger"
	"github.com/stunity/feed-service/internal/services"
)

// Scheduler drives the periodic score refresh and feed precompute. One
// warmup run fires shortly after startup so a fresh deployment serves
// ranked feeds without waiting for the first tick.
type Scheduler struct {
	log     *logger.Logger
	refresh services.RefreshService

	spec        string
	warmupDelay time.Duration
	cron        *cron.Cron
}

func NewScheduler(log *logger.Logger, refresh services.RefreshService, spec string, warmupDelay time.Duration) *Scheduler {
	return &Scheduler{
		log:         log.With("service", "Scheduler"),
		refresh:     refresh,
		spec:        spec,
		warmupDelay: warmupDelay,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.spec, func() {
		s.runOnce(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}
	s.cron.Start()
	s.log.Info("refresh schedule started", "spec", s.spec)

	go func() {
		select {
		case <-time.After(s.warmupDelay):
			s.log.Info("running warmup refresh")
			s.runOnce(context.Background())
		case <-ctx.Done():
		}
	}()
	return nil
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.log.Info("refresh schedule stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	count, err := s.refresh.RefreshPostScores(ctx)
	if err != nil {
		s.log.Error("score refresh finished with errors",
			"persisted", count, "elapsed", time.Since(start), "error", err)
	} else {
		s.log.Info("score refresh complete", "persisted", count, "elapsed", time.Since(start))
	}

	warmed, err := s.refresh.PrecomputeFeeds(ctx)
	if err != nil {
		s.log.Error("feed precompute failed", "error", err)
		return
	}
	if warmed > 0 {
		s.log.Info("feeds precomputed", "users", warmed)
	}
}
