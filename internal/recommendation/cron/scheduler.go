package cronjob

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shopgraph/shopgraph-backend/internal/platform/logger"
)

// Warmer refreshes cached query results.
type Warmer interface {
	Warm(ctx context.Context) error
}

// Scheduler runs the cache warm job on a six-field cron spec.
type Scheduler struct {
	cron    *cron.Cron
	warmer  Warmer
	timeout time.Duration
	log     *logger.Logger
}

func NewScheduler(warmer Warmer, timeout time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		warmer:  warmer,
		timeout: timeout,
		log:     log.With("component", "CacheWarmer"),
	}
}

// Start registers the job and starts the scheduler. An empty spec leaves
// the scheduler idle.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		s.log.Info("cache warm schedule disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return fmt.Errorf("failed to create cron job: %w", err)
	}
	s.cron.Start()
	s.log.Info("cron scheduler started", "schedule", spec)
	return nil
}

// RunOnce warms the cache a single time.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.warmer.Warm(ctx); err != nil {
		s.log.Warn("cache warm failed", "error", err)
		return
	}
	s.log.Info("cache warmed", "duration", time.Since(start))
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
