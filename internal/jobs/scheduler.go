// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/lockedin-be/internal/metrics"
	"github.com/isdelr/lockedin-be/internal/progress"
)

// CompletionPruner deletes completions dated before a cutoff.
type CompletionPruner interface {
	PruneBefore(ctx context.Context, date string) (int64, error)
}

// Sweeper forgets state idle for longer than maxIdle. The auth rate limiter implements it.
type Sweeper interface {
	Cleanup(maxIdle time.Duration) int
}

// Options configures the maintenance scheduler.
type Options struct {
	// Schedule is a standard five-field cron expression.
	Schedule      string
	RetentionDays int
	// LimiterIdle is how long an auth limiter entry may sit unused.
	LimiterIdle time.Duration
}

// Scheduler runs maintenance tasks.
type Scheduler struct {
	cron    *cron.Cron
	pruner  CompletionPruner
	sweeper Sweeper
	clock   *progress.DayClock
	opts    Options
}

// NewScheduler creates a new scheduler instance. sweeper may be nil.
func NewScheduler(pruner CompletionPruner, sweeper Sweeper, clock *progress.DayClock, opts Options) (*Scheduler, error) {
	if opts.RetentionDays < 1 {
		return nil, fmt.Errorf("retention must be at least one day, got %d", opts.RetentionDays)
	}
	if opts.LimiterIdle <= 0 {
		opts.LimiterIdle = time.Hour
	}

	s := &Scheduler{
		cron:    cron.New(),
		pruner:  pruner,
		sweeper: sweeper,
		clock:   clock,
		opts:    opts,
	}
	if _, err := s.cron.AddFunc(opts.Schedule, s.runMaintenance); err != nil {
		return nil, fmt.Errorf("invalid maintenance schedule %q: %w", opts.Schedule, err)
	}
	return s, nil
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	log.Info().Str("schedule", s.opts.Schedule).Msg("Starting maintenance scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped maintenance scheduler")
}

func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if _, err := s.RunOnce(ctx); err != nil {
		log.Error().Err(err).Msg("Maintenance run failed")
	}
}

// RunOnce prunes completions older than the retention window and sweeps idle
// limiter entries. It returns the number of completions removed.
func (s *Scheduler) RunOnce(ctx context.Context) (int64, error) {
	cutoff := s.clock.DaysAgo(s.opts.RetentionDays)
	pruned, err := s.pruner.PruneBefore(ctx, cutoff)
	metrics.RecordMaintenance(pruned, err == nil)
	if err != nil {
		return 0, fmt.Errorf("prune completions before %s: %w", cutoff, err)
	}

	swept := 0
	if s.sweeper != nil {
		swept = s.sweeper.Cleanup(s.opts.LimiterIdle)
	}
	log.Info().Int64("pruned", pruned).Int("limiters_swept", swept).Str("cutoff", cutoff).Msg("Maintenance run complete")
	return pruned, nil
}
