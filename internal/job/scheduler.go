package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs background jobs on cron specs.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cronLogger{logger: logger}),
			cron.WithChain(cron.Recover(cronLogger{logger: logger}), cron.SkipIfStillRunning(cronLogger{logger: logger})),
		),
		logger: logger,
	}
}

// Add registers job under spec, e.g. "@every 1h" or "0 * * * *".
func (s *Scheduler) Add(name, spec string, job cron.Job) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Info("Job scheduled", zap.String("job", name), zap.String("spec", spec))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
