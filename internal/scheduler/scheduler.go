package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/guttosm/bistpulse/internal/logger"
)

// Job is the unit of work the scheduler fires on each tick.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner around a single extraction job.
//
// Overlap guard: if a tick fires while the previous run is still in
// flight, the tick is skipped and logged rather than queued.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	running atomic.Bool
}

// New creates a Scheduler bound to ctx. Cancelling ctx cancels any
// in-flight job on the next blocking operation.
func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		ctx:  ctx,
	}
}

// Register schedules job under the given cron spec (six fields, with seconds).
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		if !s.running.CompareAndSwap(false, true) {
			logger.L().Warn().Str("spec", spec).Msg("previous run still in progress, skipping tick")
			return
		}
		defer s.running.Store(false)

		if err := job(s.ctx); err != nil {
			logger.L().Error().Err(err).Msg("scheduled run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("register job: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.L().Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	logger.L().Info().Msg("scheduler stopped")
}
