package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"leadtrack/services"
)

// RefreshWorker keeps the calls-today cache warm so the first call-list read
// of the day does not pay the join. Purely an optimization: a failed refresh
// is logged and retried on the next tick.
type RefreshWorker struct {
	Calls    *services.CallService
	Logger   *logrus.Logger
	Interval time.Duration
}

func NewRefreshWorker(calls *services.CallService, logger *logrus.Logger, interval time.Duration) *RefreshWorker {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RefreshWorker{Calls: calls, Logger: logger, Interval: interval}
}

func (rw *RefreshWorker) Start(ctx context.Context) {
	rw.Logger.Info("cache refresh worker started")

	ticker := time.NewTicker(rw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Info("cache refresh worker shutting down...")
			return
		case <-ticker.C:
			if err := rw.Calls.PrimeToday(ctx); err != nil {
				rw.Logger.WithField("error", err.Error()).Warn("calls-today refresh failed")
			}
		}
	}
}
