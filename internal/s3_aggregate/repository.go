package s3_aggregate

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Aggregate kinds stored in aggregate_buckets.kind
const (
	KindYearGenre = "year_genre"
	KindActors    = "actors"
	KindDirectors = "directors"
)

// Repository persists aggregate buckets
// ⭐ SSOT: aggregate_buckets is read and written only here
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new aggregate repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveAggregates replaces all buckets of runID
func (r *Repository) SaveAggregates(ctx context.Context, runID uuid.UUID, aggs *contracts.Aggregates) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM aggregate_buckets WHERE run_id = $1", runID); err != nil {
		return fmt.Errorf("failed to delete old buckets: %w", err)
	}

	rows := make([][]any, 0, len(aggs.YearGenre)+len(aggs.Actors)+len(aggs.Directors))
	for _, set := range []struct {
		kind    string
		buckets []contracts.Bucket
	}{
		{KindYearGenre, aggs.YearGenre},
		{KindActors, aggs.Actors},
		{KindDirectors, aggs.Directors},
	} {
		for _, b := range set.buckets {
			members := b.Members
			if members == nil {
				members = []string{}
			}
			means, err := json.Marshal(b.Means)
			if err != nil {
				return fmt.Errorf("failed to marshal means: %w", err)
			}
			rows = append(rows, []any{
				runID, set.kind, b.Key, members, b.TotalVotes,
				b.WeightedSum, b.WeightedRating, b.Count, means,
			})
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"aggregate_buckets"},
		[]string{"run_id", "kind", "bucket_key", "members", "total_votes",
			"weighted_sum", "weighted_rating", "fact_count", "means"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy buckets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadAggregates returns the buckets of runID, each kind sorted by key
func (r *Repository) LoadAggregates(ctx context.Context, runID uuid.UUID) (*contracts.Aggregates, error) {
	query := `
		SELECT kind, bucket_key, members, total_votes, weighted_sum, weighted_rating, fact_count, means
		FROM aggregate_buckets
		WHERE run_id = $1
		ORDER BY kind, bucket_key
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query buckets: %w", err)
	}
	defer rows.Close()

	aggs := &contracts.Aggregates{}
	for rows.Next() {
		var (
			kind  string
			b     contracts.Bucket
			means []byte
		)
		if err := rows.Scan(&kind, &b.Key, &b.Members, &b.TotalVotes,
			&b.WeightedSum, &b.WeightedRating, &b.Count, &means); err != nil {
			return nil, fmt.Errorf("failed to scan bucket: %w", err)
		}
		if len(means) > 0 {
			if err := json.Unmarshal(means, &b.Means); err != nil {
				return nil, fmt.Errorf("failed to unmarshal means: %w", err)
			}
		}

		switch kind {
		case KindYearGenre:
			aggs.YearGenre = append(aggs.YearGenre, b)
		case KindActors:
			aggs.Actors = append(aggs.Actors, b)
		case KindDirectors:
			aggs.Directors = append(aggs.Directors, b)
		}
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("failed to iterate buckets: %w", rows.Err())
	}

	// database collation may order keys differently
	SortBuckets(aggs.YearGenre)
	SortBuckets(aggs.Actors)
	SortBuckets(aggs.Directors)

	return aggs, nil
}
