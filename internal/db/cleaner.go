package db

import (
	"context"
	"time"

	"github.com/atinyakov/ourstory/internal/metrics"
	"go.uber.org/zap"
)

// MessagePruner deletes chat messages at or before a cutoff.
type MessagePruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionSweeper periodically deletes chat messages older than Retention.
// It implements suture.Service.
type RetentionSweeper struct {
	Pruner    MessagePruner
	Interval  time.Duration
	Retention time.Duration
	Log       *zap.Logger
}

// NewRetentionSweeper builds a sweeper with the given schedule.
func NewRetentionSweeper(p MessagePruner, interval, retention time.Duration, log *zap.Logger) *RetentionSweeper {
	return &RetentionSweeper{Pruner: p, Interval: interval, Retention: retention, Log: log}
}

// Serve runs the sweep loop until ctx is done.
func (s *RetentionSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *RetentionSweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.Retention)
	removed, err := s.Pruner.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.Log.Error("failed to sweep old chat messages", zap.Error(err))
		return
	}
	if removed > 0 {
		metrics.SweptMessages.Add(float64(removed))
		s.Log.Info("swept old chat messages", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))
	}
}

// String names the service in supervisor events.
func (s *RetentionSweeper) String() string {
	return "retention-sweeper"
}
