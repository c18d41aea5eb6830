package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-event-scheduler/internal/domain"
	"telegram-event-scheduler/internal/infra/metrics"
	red "telegram-event-scheduler/internal/infra/redis"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one schedulable unit of background work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

const (
	jobTimeout = 2 * time.Minute
	// The lock TTL outlives the job timeout so a crashed holder frees up
	// on its own.
	jobLockTTL = 3 * time.Minute
)

// Scheduler fires registered jobs on cron expressions. Every run takes a
// short per-job redis lock first, so two bot instances sharing a database
// never materialize or remind twice.
type Scheduler struct {
	cron   *cron.Cron
	locker red.Locker
	log    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(locker red.Locker, loc *time.Location, logger zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		locker: locker,
		log:    logger.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job under a cron expression.
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	return nil
}

// Start begins firing jobs on their schedules. It does not block.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop halts scheduling, waits for in-flight runs to drain, then cancels
// their contexts.
func (s *Scheduler) Stop() {
	drained := s.cron.Stop()
	<-drained.Done()
	s.cancel()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, jobTimeout)
	defer cancel()

	name := job.Name()
	token, err := s.locker.TryLock(ctx, red.JobLockKey(name), jobLockTTL)
	switch {
	case errors.Is(err, domain.ErrLockHeld):
		metrics.IncSchedulerRun(name, "skipped")
		s.log.Debug().Str("job", name).Msg("lock held elsewhere, skipping run")
		return
	case err != nil:
		s.log.Warn().Err(err).Str("job", name).Msg("job lock unavailable, running unlocked")
	}
	if token != "" {
		defer func() {
			// Fresh context: the run context may already be past its deadline.
			unlockCtx, unlockCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer unlockCancel()
			if err := s.locker.Unlock(unlockCtx, red.JobLockKey(name), token); err != nil {
				s.log.Warn().Err(err).Str("job", name).Msg("unlock failed, lock expires on its own")
			}
		}()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		metrics.IncSchedulerRun(name, "error")
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	metrics.IncSchedulerRun(name, "ok")
	s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
}
