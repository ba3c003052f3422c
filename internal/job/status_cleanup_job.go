package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campus-chat-service/internal/metrics"
)

const cleanupTimeout = 30 * time.Second

// ExpiredStatusCleaner deletes statuses past their expiry.
type ExpiredStatusCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// StatusCleanupJob removes expired statuses so the table only holds visible ones.
type StatusCleanupJob struct {
	cleaner ExpiredStatusCleaner
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewStatusCleanupJob(cleaner ExpiredStatusCleaner, m *metrics.Metrics, logger *zap.Logger) *StatusCleanupJob {
	return &StatusCleanupJob{
		cleaner: cleaner,
		metrics: m,
		logger:  logger,
	}
}

// Run implements cron.Job.
func (j *StatusCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	j.logger.Debug("Starting expired status cleanup")

	deleted, err := j.cleaner.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("Failed to delete expired statuses", zap.Error(err))
		return
	}

	j.metrics.RecordExpiredStatusesDeleted(deleted)
	if deleted == 0 {
		j.logger.Debug("No expired statuses found")
		return
	}
	j.logger.Info("Expired statuses deleted", zap.Int64("count", deleted))
}
