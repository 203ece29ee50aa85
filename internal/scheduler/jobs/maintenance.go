package jobs

import (
	"context"

	"github.com/Miche5967/movie-analyse-recommendation/internal/memo"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// MemoCleanupJob drops in-process memo entries. Entries keyed by
// superseded source versions are never hit again.
type MemoCleanupJob struct {
	memo   *memo.Memo
	logger *logger.Logger
}

// NewMemoCleanupJob creates a new memo cleanup job
func NewMemoCleanupJob(m *memo.Memo, log *logger.Logger) *MemoCleanupJob {
	return &MemoCleanupJob{
		memo:   m,
		logger: log,
	}
}

// Name returns the job name
func (j *MemoCleanupJob) Name() string {
	return "memo_cleanup"
}

// Schedule returns the cron schedule (Sundays at 04:00)
func (j *MemoCleanupJob) Schedule() string {
	return "0 0 4 * * 0"
}

// Run purges the memo
func (j *MemoCleanupJob) Run(ctx context.Context) error {
	count := j.memo.Len()
	j.memo.Purge()

	if count > 0 {
		j.logger.WithField("removed", count).Info("Memo cleanup completed")
	}

	return nil
}
