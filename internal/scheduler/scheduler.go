package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/greenleaf/internal/booking/domain"
	"github.com/smallbiznis/greenleaf/internal/clock"
	obsmetrics "github.com/smallbiznis/greenleaf/internal/observability/metrics"
	"github.com/smallbiznis/greenleaf/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const JobIndexRebuild = "index_rebuild"

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Booking domain.Service
	Locker  *ratelimit.Locker `optional:"true"`
	Config  Config            `optional:"true"`
}

// Scheduler runs background reconciliation of the booking index.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	clock   clock.Clock
	booking domain.Service
	locker  *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Booking == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		clock:   p.Clock,
		booking: p.Booking,
		locker:  p.Locker,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	timeout time.Duration,
	fn func(ctx context.Context, run *jobRun) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name)
	s.logJobStart(ctx, run)
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	jobMetrics := obsmetrics.Jobs()
	jobMetrics.IncJobRun(name)

	err := fn(ctx, run)
	jobMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err != nil {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	// deadline is a soft timeout; the next tick retries
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		jobMetrics.IncJobTimeout(name)
	}
	jobMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	jobs := []struct {
		Name    string
		Enabled bool
		Run     func(context.Context) error
	}{
		{JobIndexRebuild, s.isJobEnabled(JobIndexRebuild), func(ctx context.Context) error {
			return s.runJob(ctx, JobIndexRebuild, s.cfg.JobTimeout, s.IndexRebuildJob)
		}},
	}

	for _, job := range jobs {
		if job.Enabled {
			err = errors.Join(err, job.Run(parent))
		}
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	jobMetrics := obsmetrics.Jobs()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			jobMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// IndexRebuildJob rewrites index.json from the records. When a shared lease
// is configured only the instance holding it does the work.
func (s *Scheduler) IndexRebuildJob(ctx context.Context, run *jobRun) error {
	token, ok, err := s.locker.Acquire(ctx, JobIndexRebuild, s.cfg.LeaseTTL)
	if err != nil {
		return err
	}
	if !ok {
		s.logger(ctx).Debug("scheduler.job.skipped", zap.String("job", JobIndexRebuild), zap.String("reason", "lease_held"))
		return nil
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), JobIndexRebuild, token); err != nil {
			s.logger(ctx).Warn("failed to release lease", zap.String("job", JobIndexRebuild), zap.Error(err))
		}
	}()

	count, err := s.booking.RebuildIndex(ctx)
	if err != nil {
		return err
	}
	run.AddProcessed(count)
	obsmetrics.Jobs().AddBatchProcessed(JobIndexRebuild, "booking", count)
	return nil
}
