package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"taskboard/internal/logger"
)

// InvitationJanitor is the slice of the share repository the worker needs.
type InvitationJanitor interface {
	DeleteResolvedInvitationsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker periodically deletes invitations that reached a
// terminal status (accepted or rejected) longer than the retention
// period ago. Pending invitations are never touched.
type RetentionWorker struct {
	repo      InvitationJanitor
	interval  time.Duration
	retention time.Duration
}

func NewRetentionWorker(repo InvitationJanitor, interval, retention time.Duration) *RetentionWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &RetentionWorker{repo: repo, interval: interval, retention: retention}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Worker: retention sweep stopping")
			return
		}
	}
}

func (w *RetentionWorker) Sweep(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-w.retention)

	deleted, err := w.repo.DeleteResolvedInvitationsBefore(ctx, cutoff)
	if err != nil {
		logger.Warn("Worker: invitation sweep failed", zap.Error(err))
		return
	}

	logger.Info("Worker: invitation sweep finished",
		zap.Int64("deleted", deleted),
		zap.Time("cutoff", cutoff),
		zap.Duration("ms", time.Since(start)),
	)
}
