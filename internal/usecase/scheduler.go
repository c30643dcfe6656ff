package usecase

import (
	"context"
	"time"

	"ProductRanker/internal/ports"
)

// Scheduler wires the cron driver to recurring ranking runs over a fixed
// category list.
type Scheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	categories []string
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, categories []string) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, categories: categories}
}

// Start registers the ranking job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		if err := s.pipeline.RankAll(ctx, s.categories); err != nil {
			s.pipeline.logger.Error("scheduled run failed", "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
