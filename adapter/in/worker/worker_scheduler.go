// Package worker runs the periodic mailbox ingest.
package worker

import (
	"context"
	"sync"
	"time"

	in "event_scraper/core/port/in"

	"github.com/rs/zerolog"
)

// =============================================================================
// Scheduler - periodic ingest
// =============================================================================

// SchedulerConfig holds scheduler timing.
type SchedulerConfig struct {
	Interval     time.Duration // between batches
	BatchTimeout time.Duration // per batch
	RunOnStart   bool          // run one batch immediately
}

type Scheduler struct {
	ingest in.IngestService
	config SchedulerConfig
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	started bool
}

// NewScheduler creates a new ingest scheduler.
func NewScheduler(ingest in.IngestService, cfg SchedulerConfig, log zerolog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 6 * time.Hour
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 15 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		ingest: ingest,
		config: cfg,
		log:    log.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Start starts the scheduler loop. Calling it twice has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	s.log.Info().
		Dur("interval", s.config.Interval).
		Dur("batch_timeout", s.config.BatchTimeout).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("starting scheduler")
	go s.run()
}

// Stop cancels the running batch and waits for the loop to exit.
func (s *Scheduler) Stop() {
	s.log.Info().Msg("stopping scheduler")
	s.cancel()

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	}
}

func (s *Scheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	if s.config.RunOnStart {
		s.RunOnce()
	}

	for {
		select {
		case <-s.ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce runs a single batch with the configured timeout.
func (s *Scheduler) RunOnce() *in.BatchReport {
	ctx, cancel := context.WithTimeout(s.ctx, s.config.BatchTimeout)
	defer cancel()

	report, err := s.ingest.RunBatch(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("ingest batch failed")
		return report
	}

	s.log.Info().
		Str("run_id", report.RunID).
		Int("found", report.Found).
		Int("inserted", report.Inserted).
		Int("failed", report.Failed).
		Msg("ingest batch finished")
	return report
}
