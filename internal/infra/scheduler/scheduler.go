package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Job is one batch run; RunService.Run satisfies it.
type Job func(ctx context.Context, now time.Time) error

// RunScheduler triggers the ride batch on a cron spec inside a long-running process,
// for hosts without an external scheduler.
type RunScheduler struct {
	cronEngine *cron.Cron
	job        Job
	logger     logrus.FieldLogger
	cronSpec   string
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewRunScheduler(job Job, logger logrus.FieldLogger, cronSpec string, loc *time.Location) *RunScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &RunScheduler{
		// A run still in progress makes the next tick a no-op, so runs never overlap
		// on the checkpoint files.
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		job:      job,
		logger:   logger,
		cronSpec: cronSpec, // e.g., "*/5 * * * *" (every 5 minutes)
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *RunScheduler) Start() error {
	s.logger.Info("Starting ride scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpec, s.execute)
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Infof("Ride scheduler started with spec %q.", s.cronSpec)
	return nil
}

func (s *RunScheduler) execute() {
	s.logger.Debug("Cron job triggered for ride run.")
	if err := s.job(s.ctx, time.Now()); err != nil {
		s.logger.Errorf("Ride run failed: %v", err)
	}
}

// Stop waits for a run in progress to finish.
func (s *RunScheduler) Stop() {
	s.logger.Info("Stopping ride scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.cancel()
	s.logger.Info("Ride scheduler gracefully stopped.")
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	logger logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			f[k] = keysAndValues[i+1]
		}
	}
	return f
}
