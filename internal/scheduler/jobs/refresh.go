package jobs

import (
	"context"
	"fmt"

	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// PipelineRunner runs the batch pipeline
type PipelineRunner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// DatasetSink receives the dataset to serve
type DatasetSink interface {
	Dataset() *contracts.Dataset
	Set(ds *contracts.Dataset)
}

// DatasetRefreshJob rebuilds the dataset from the source tables and swaps it in
type DatasetRefreshJob struct {
	runner   PipelineRunner
	sink     DatasetSink
	schedule string
	persist  bool
	logger   *logger.Logger
}

// NewDatasetRefreshJob creates a new dataset refresh job
func NewDatasetRefreshJob(runner PipelineRunner, sink DatasetSink, schedule string, persist bool, log *logger.Logger) *DatasetRefreshJob {
	return &DatasetRefreshJob{
		runner:   runner,
		sink:     sink,
		schedule: schedule,
		persist:  persist,
		logger:   log,
	}
}

// Name returns the job name
func (j *DatasetRefreshJob) Name() string {
	return "dataset_refresh"
}

// Schedule returns the cron schedule
func (j *DatasetRefreshJob) Schedule() string {
	return j.schedule
}

// Run executes the pipeline. The served dataset is left untouched on failure.
func (j *DatasetRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled dataset refresh")

	result, err := j.runner.Run(ctx, brain.RunConfig{Persist: j.persist})
	if err != nil {
		return fmt.Errorf("dataset refresh: %w", err)
	}

	j.sink.Set(result.Dataset)

	j.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"titles":   len(result.Dataset.Titles),
		"memoized": result.Memoized(),
		"duration": result.Duration.String(),
	}).Info("Dataset refreshed")

	return nil
}

// SnapshotReloadJob serves the latest persisted dataset, for processes
// that do not run the pipeline themselves
type SnapshotReloadJob struct {
	runner   PipelineRunner
	sink     DatasetSink
	schedule string
	logger   *logger.Logger
}

// NewSnapshotReloadJob creates a new snapshot reload job
func NewSnapshotReloadJob(runner PipelineRunner, sink DatasetSink, schedule string, log *logger.Logger) *SnapshotReloadJob {
	return &SnapshotReloadJob{
		runner:   runner,
		sink:     sink,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *SnapshotReloadJob) Name() string {
	return "snapshot_reload"
}

// Schedule returns the cron schedule
func (j *SnapshotReloadJob) Schedule() string {
	return j.schedule
}

// Run loads the latest snapshot and swaps it in when it is newer than the served one
func (j *SnapshotReloadJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx, brain.RunConfig{FromSnapshot: true})
	if err != nil {
		return fmt.Errorf("snapshot reload: %w", err)
	}

	if current := j.sink.Dataset(); current != nil && current.RunID == result.Dataset.RunID {
		j.logger.WithField("run_id", current.RunID).Debug("Snapshot unchanged")
		return nil
	}

	j.sink.Set(result.Dataset)
	j.logger.WithField("run_id", result.Dataset.RunID).Info("Snapshot reloaded")

	return nil
}
