package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/redlink/internal/service"
)

// DeadlineTicker processes elapsed availability deadlines.
type DeadlineTicker interface {
	Tick(ctx context.Context) int
}

// DeadlinePoller drives the donor deadline queue at a fixed cadence.
type DeadlinePoller struct {
	ticker   DeadlineTicker
	interval time.Duration
	logger   *zap.Logger
}

// NewDeadlinePoller builds a poller. A non-positive interval means one second.
func NewDeadlinePoller(ticker DeadlineTicker, interval time.Duration, logger *zap.Logger) *DeadlinePoller {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeadlinePoller{ticker: ticker, interval: interval, logger: logger}
}

// Run ticks until ctx is cancelled. It always returns ctx.Err().
func (p *DeadlinePoller) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.logger.Info("deadline poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("deadline poller stopped")
			return ctx.Err()
		case <-t.C:
			if n := p.ticker.Tick(ctx); n > 0 {
				p.logger.Debug("deadlines processed", zap.Int("count", n))
			}
		}
	}
}

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
