package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type PendingReleaser interface {
	ReleaseExpiredPending(ctx context.Context, now time.Time) (int64, error)
}

// ExpiryService periodically returns slots whose pending hold has lapsed
// to available, so abandoned checkouts stop blocking the calendar.
type ExpiryService struct {
	repo     PendingReleaser
	schedule string
	logger   *slog.Logger
	now      func() time.Time
	timeout  time.Duration
	cron     *cron.Cron
}

func NewExpiryService(repo PendingReleaser, schedule string, loc *time.Location, logger *slog.Logger) *ExpiryService {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{logger: logger}
	return &ExpiryService{
		repo:     repo,
		schedule: schedule,
		logger:   logger,
		now:      time.Now,
		timeout:  30 * time.Second,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}
}

func (es *ExpiryService) Start() error {
	if _, err := es.cron.AddFunc(es.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), es.timeout)
		defer cancel()
		_, _ = es.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", es.schedule, err)
	}
	es.cron.Start()
	es.logger.Info("Pending slot sweeper started", "schedule", es.schedule)
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (es *ExpiryService) Stop(ctx context.Context) {
	done := es.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		es.logger.Warn("Pending slot sweeper did not stop in time")
	}
}

func (es *ExpiryService) RunOnce(ctx context.Context) (int64, error) {
	released, err := es.repo.ReleaseExpiredPending(ctx, es.now().UTC())
	if err != nil {
		es.logger.Error("Failed to release expired pending slots", "error", err)
		return 0, err
	}
	if released > 0 {
		es.logger.Info("Released expired pending slots", "count", released)
	}
	return released, nil
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
