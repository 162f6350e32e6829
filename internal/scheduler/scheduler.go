// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"yieldledger/internal/metrics"
)

// Job is a named unit of periodic work.
type Job struct {
	Name string
	Spec string // six-field cron expression, seconds first
	Run  func(ctx context.Context) error
}

// Scheduler runs jobs on cron specs. A job still running when its next tick
// fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New registers jobs on a seconds-enabled cron. It fails on the first invalid
// spec.
func New(logger *slog.Logger, m *metrics.Metrics, jobs ...Job) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With("component", "scheduler"),
		metrics: m,
	}
	for _, job := range jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Spec, func() { s.runJob(job) }); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
		s.logger.Info("job scheduled", "job", job.Name, "spec", job.Spec)
	}
	return s, nil
}

// Start begins firing jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("jobs still running at shutdown")
	}
}

func (s *Scheduler) runJob(job Job) {
	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("job failed", "job", job.Name, "error", err, "duration", time.Since(start))
		if s.metrics != nil {
			s.metrics.Errors.WithLabelValues("scheduler." + job.Name).Inc()
		}
		return
	}
	s.logger.Debug("job finished", "job", job.Name, "duration", time.Since(start))
}
