package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/memo"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

type fakeRunner struct {
	configs []brain.RunConfig
	result  *brain.RunResult
	err     error
}

func (r *fakeRunner) Run(_ context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	r.configs = append(r.configs, config)
	return r.result, r.err
}

func resultFor(runID string) *brain.RunResult {
	return &brain.RunResult{
		RunID:   runID,
		Success: true,
		Dataset: &contracts.Dataset{RunID: runID, Titles: make([]contracts.ClassifiedTitle, 3)},
	}
}

func TestDatasetRefreshJob(t *testing.T) {
	runner := &fakeRunner{result: resultFor("run-1")}
	current := &brain.Current{}
	job := NewDatasetRefreshJob(runner, current, "0 0 5 * * *", true, logger.Nop())

	assert.Equal(t, "dataset_refresh", job.Name())
	assert.Equal(t, "0 0 5 * * *", job.Schedule())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, runner.configs, 1)
	assert.True(t, runner.configs[0].Persist)
	assert.False(t, runner.configs[0].FromSnapshot)
	assert.Equal(t, "run-1", current.Dataset().RunID)
}

func TestDatasetRefreshJob_KeepsDatasetOnFailure(t *testing.T) {
	current := &brain.Current{}
	current.Set(&contracts.Dataset{RunID: "old"})

	runner := &fakeRunner{err: contracts.ErrSourceUnavailable}
	job := NewDatasetRefreshJob(runner, current, "@daily", false, logger.Nop())

	err := job.Run(context.Background())
	assert.True(t, errors.Is(err, contracts.ErrSourceUnavailable))
	assert.Equal(t, "old", current.Dataset().RunID)
}

func TestSnapshotReloadJob(t *testing.T) {
	runner := &fakeRunner{result: resultFor("run-2")}
	current := &brain.Current{}
	current.Set(&contracts.Dataset{RunID: "run-1"})
	job := NewSnapshotReloadJob(runner, current, "@every 10m", logger.Nop())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, runner.configs, 1)
	assert.True(t, runner.configs[0].FromSnapshot)
	served := current.Dataset()
	assert.Equal(t, "run-2", served.RunID)

	// Same run: the served pointer is not replaced
	runner.result = resultFor("run-2")
	require.NoError(t, job.Run(context.Background()))
	assert.Same(t, served, current.Dataset())

	runner.err = contracts.ErrNotFound
	assert.Error(t, job.Run(context.Background()))
}

func TestMemoCleanupJob(t *testing.T) {
	m, err := memo.New(8, nil, time.Hour, logger.Nop())
	require.NoError(t, err)

	_, _, err = memo.Do(context.Background(), m, contracts.StageCatalog, "fp", func() (int, error) { return 1, nil })
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())

	job := NewMemoCleanupJob(m, logger.Nop())
	assert.Equal(t, "memo_cleanup", job.Name())
	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 0, m.Len())
}
