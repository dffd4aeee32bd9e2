// Package scheduler fires the four ATS batch runs on cron schedules and
// exposes the same runs for on-demand triggering.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ats-sync/internal/config"
	"ats-sync/internal/domain"
	"ats-sync/internal/pkg/flags"
	"ats-sync/internal/pkg/logger"
)

// Runner executes one named batch run.
type Runner interface {
	Run(ctx context.Context, name domain.RunName, t domain.Trigger) (domain.BatchReport, error)
}

type entry struct {
	run  domain.RunName
	spec string
}

type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	flags   flags.Flags
	entries []entry
	logger  *zap.SugaredLogger
}

func New(runner Runner, ff flags.Flags, specs config.ScheduleConfig, log *zap.SugaredLogger) *Scheduler {
	log = logger.OrNop(log)
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		flags:  ff,
		entries: []entry{
			{run: domain.RunPushJobs, spec: specs.PushJobs},
			{run: domain.RunPushCandidates, spec: specs.PushCandidates},
			{run: domain.RunPullJobs, spec: specs.PullJobs},
			{run: domain.RunPullCandidates, spec: specs.PullCandidates},
		},
		logger: log,
	}
}

// Start registers every run and starts the cron loop. Unlike a scrape loop
// nothing runs immediately; the first run waits for its schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, e := range s.entries {
		e := e
		if _, err := s.cron.AddFunc(e.spec, func() { s.fire(ctx, e.run) }); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", e.run, e.spec, err)
		}
	}
	s.cron.Start()
	s.logger.Infow("sync scheduler started", "jobs", len(s.entries))
	return nil
}

// Stop prevents new runs and waits for running ones to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Infow("sync scheduler stopped")
}

// fire re-reads the flags at fire time so toggling them at runtime takes
// effect on the next tick.
func (s *Scheduler) fire(ctx context.Context, run domain.RunName) {
	if s.flags == nil || !s.flags.ScheduledSyncEnabled() {
		s.logger.Debugw("scheduled sync skipped, disabled", "run", run)
		return
	}

	report, err := s.runner.Run(ctx, run, domain.TriggerSchedule)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Warnw("scheduled sync did not complete", "run", run, "error", err)
		return
	}
	s.logger.Infow("scheduled sync finished", "run", run, "total", report.Total, "failed", report.Failed)
}

func (s *Scheduler) TriggerPushJobs(ctx context.Context) (domain.BatchReport, error) {
	return s.runner.Run(ctx, domain.RunPushJobs, domain.TriggerManual)
}

func (s *Scheduler) TriggerPushCandidates(ctx context.Context) (domain.BatchReport, error) {
	return s.runner.Run(ctx, domain.RunPushCandidates, domain.TriggerManual)
}

func (s *Scheduler) TriggerPullJobs(ctx context.Context) (domain.BatchReport, error) {
	return s.runner.Run(ctx, domain.RunPullJobs, domain.TriggerManual)
}

func (s *Scheduler) TriggerPullCandidates(ctx context.Context) (domain.BatchReport, error) {
	return s.runner.Run(ctx, domain.RunPullCandidates, domain.TriggerManual)
}

// Trigger runs any named run on demand.
func (s *Scheduler) Trigger(ctx context.Context, run domain.RunName) (domain.BatchReport, error) {
	if !run.Valid() {
		return domain.BatchReport{}, fmt.Errorf("unknown sync run %q", run)
	}
	return s.runner.Run(ctx, run, domain.TriggerManual)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
