package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s1_catalog"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s3_aggregate"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// Run statuses stored in pipeline_runs.status
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// SnapshotStore persists finished datasets in Postgres.
// A run is visible to LoadLatest only once every table is written.
type SnapshotStore struct {
	pool          *pgxpool.Pool
	genreRepo     *s1_catalog.Repository
	aggregateRepo *s3_aggregate.Repository
	selectionRepo *selection.Repository
	ranker        *selection.Ranker
	logger        *logger.Logger
}

var _ contracts.DatasetStore = (*SnapshotStore)(nil)

// NewSnapshotStore creates a store; ranker rebuilds rankings on load
func NewSnapshotStore(pool *pgxpool.Pool, ranker *selection.Ranker, log *logger.Logger) *SnapshotStore {
	return &SnapshotStore{
		pool:          pool,
		genreRepo:     s1_catalog.NewRepository(pool),
		aggregateRepo: s3_aggregate.NewRepository(pool),
		selectionRepo: selection.NewRepository(pool),
		ranker:        ranker,
		logger:        log.WithField("module", "snapshot_store"),
	}
}

// Save writes ds and marks its run completed
func (s *SnapshotStore) Save(ctx context.Context, ds *contracts.Dataset) error {
	runID, err := uuid.Parse(ds.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", ds.RunID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pipeline_runs (run_id, config_hash, status, started_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET
			config_hash = EXCLUDED.config_hash,
			status = EXCLUDED.status,
			error = NULL,
			started_at = EXCLUDED.started_at,
			finished_at = NULL
	`, runID, ds.ConfigHash, RunStatusRunning, ds.BuiltAt)
	if err != nil {
		return fmt.Errorf("failed to register run: %w", err)
	}

	if err := s.saveTables(ctx, runID, ds); err != nil {
		s.markFailed(ctx, runID, err)
		return err
	}

	_, err = s.pool.Exec(ctx, `
		UPDATE pipeline_runs
		SET status = $2, title_count = $3, finished_at = $4
		WHERE run_id = $1
	`, runID, RunStatusCompleted, len(ds.Titles), time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id": ds.RunID,
		"titles": len(ds.Titles),
	}).Info("Snapshot saved")

	return nil
}

func (s *SnapshotStore) saveTables(ctx context.Context, runID uuid.UUID, ds *contracts.Dataset) error {
	if err := s.genreRepo.SaveGenres(ctx, runID, ds.Genres); err != nil {
		return fmt.Errorf("save genres: %w", err)
	}
	if err := s.aggregateRepo.SaveAggregates(ctx, runID, &ds.Aggregates); err != nil {
		return fmt.Errorf("save aggregates: %w", err)
	}
	if err := s.selectionRepo.SaveClassified(ctx, runID, ds.Titles); err != nil {
		return fmt.Errorf("save classified titles: %w", err)
	}
	return nil
}

func (s *SnapshotStore) markFailed(ctx context.Context, runID uuid.UUID, cause error) {
	_, err := s.pool.Exec(ctx, `
		UPDATE pipeline_runs SET status = $2, error = $3, finished_at = $4 WHERE run_id = $1
	`, runID, RunStatusFailed, cause.Error(), time.Now())
	if err != nil {
		s.logger.WithError(err).Warn("Failed to mark run as failed")
	}
}

// LoadLatest returns the most recent completed dataset.
// contracts.ErrNotFound is returned when no run has completed.
func (s *SnapshotStore) LoadLatest(ctx context.Context) (*contracts.Dataset, error) {
	var (
		runID uuid.UUID
		ds    contracts.Dataset
	)
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, config_hash, finished_at
		FROM pipeline_runs
		WHERE status = $1
		ORDER BY finished_at DESC
		LIMIT 1
	`, RunStatusCompleted).Scan(&runID, &ds.ConfigHash, &ds.BuiltAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no completed pipeline run", contracts.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	ds.RunID = runID.String()

	if ds.Genres, err = s.genreRepo.LoadGenres(ctx, runID); err != nil {
		return nil, fmt.Errorf("load genres: %w", err)
	}

	aggs, err := s.aggregateRepo.LoadAggregates(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load aggregates: %w", err)
	}
	ds.Aggregates = *aggs
	ds.Rankings = *s.ranker.Rank(aggs)

	if ds.Titles, err = s.selectionRepo.LoadClassified(ctx, runID); err != nil {
		return nil, fmt.Errorf("load classified titles: %w", err)
	}

	return &ds, nil
}
