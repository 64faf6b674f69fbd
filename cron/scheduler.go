// Package cron runs the periodic maintenance jobs of the service.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Archiver archives tournaments that stayed finished since before a cutoff.
type Archiver interface {
	ArchiveFinished(ctx context.Context, finishedBefore time.Time) (int, error)
}

type Scheduler struct {
	cron     *cron.Cron
	archiver Archiver
	schedule string
	grace    time.Duration
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

type Options struct {
	// Schedule is a six field cron expression (with seconds).
	Schedule string
	// Grace is how long a tournament stays finished before it is archived.
	Grace   time.Duration
	Timeout time.Duration
}

func NewScheduler(archiver Archiver, opts Options, logger *slog.Logger) *Scheduler {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	l := cronLogger{logger}
	c := cron.New(cron.WithSeconds(), cron.WithLogger(l), cron.WithChain(cron.Recover(l)))
	return &Scheduler{
		cron:     c,
		archiver: archiver,
		schedule: opts.Schedule,
		grace:    opts.Grace,
		timeout:  opts.Timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runAutoArchive); err != nil {
		return fmt.Errorf("failed to schedule auto archive %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("cron scheduler started", slog.String("auto_archive", s.schedule))
	return nil
}

// Stop waits for running jobs to finish or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("cron scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("cron scheduler stop timed out")
	}
}

// RunNow triggers the auto archive job synchronously.
func (s *Scheduler) RunNow() {
	s.runAutoArchive()
}

func (s *Scheduler) runAutoArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	cutoff := s.now().Add(-s.grace)
	archived, err := s.archiver.ArchiveFinished(ctx, cutoff)
	if err != nil {
		s.logger.Error("auto archive job failed", slog.Any("error", err), slog.Int("archived", archived))
		return
	}
	if archived > 0 {
		s.logger.Info("auto archive job completed", slog.Int("archived", archived), slog.Time("cutoff", cutoff))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
