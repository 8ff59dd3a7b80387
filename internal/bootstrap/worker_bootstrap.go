package bootstrap

import (
	"context"
	"errors"

	"event_scraper/adapter/in/worker"
	"event_scraper/config"
	in "event_scraper/core/port/in"
	"event_scraper/pkg/logger"
)

var errNoMailSource = errors.New("mail source not configured")

// Worker runs the ingest scheduler.
type Worker struct {
	scheduler *worker.Scheduler
	deps      *Dependencies
}

// NewWorker builds a worker with its own dependencies.
func NewWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}

	w, err := NewWorkerWithDeps(deps)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return w, cleanup, nil
}

// NewWorkerWithDeps builds a worker that shares dependencies with the API.
func NewWorkerWithDeps(deps *Dependencies) (*Worker, error) {
	if deps.IngestService == nil {
		return nil, errNoMailSource
	}

	cfg := deps.Config
	scheduler := worker.NewScheduler(deps.IngestService, worker.SchedulerConfig{
		Interval:     cfg.IngestInterval,
		BatchTimeout: cfg.IngestTimeout,
		RunOnStart:   cfg.IngestOnStart,
	}, deps.Log)

	return &Worker{scheduler: scheduler, deps: deps}, nil
}

func (w *Worker) Start() {
	w.scheduler.Start()
}

func (w *Worker) Stop() {
	w.scheduler.Stop()
}

// RunOnce runs a single ingest batch and returns its report.
func (w *Worker) RunOnce(ctx context.Context) (*in.BatchReport, error) {
	if timeout := w.deps.Config.IngestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	report, err := w.deps.IngestService.RunBatch(ctx)
	if err != nil {
		logger.WithError(err).Error("Ingest batch failed")
		return report, err
	}
	return report, nil
}

func (w *Worker) Dependencies() *Dependencies {
	return w.deps
}
