package selection

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Repository handles classified title persistence
// ⭐ SSOT: classified_titles is read and written only here
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveClassified replaces the classified catalog of runID
func (r *Repository) SaveClassified(ctx context.Context, runID uuid.UUID, titles []contracts.ClassifiedTitle) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM classified_titles WHERE run_id = $1", runID); err != nil {
		return fmt.Errorf("failed to delete old titles: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"classified_titles"},
		[]string{"run_id", "position", "title_id", "title", "year", "runtime_minutes",
			"genres", "average_rating", "num_votes", "rule_hits", "recommended"},
		pgx.CopyFromSlice(len(titles), func(i int) ([]any, error) {
			t := titles[i]
			return []any{
				runID, i, t.ID, t.Title.Title, t.Year, t.RuntimeMinutes,
				t.Genres, t.AverageRating, t.NumVotes, t.RuleHits, t.Recommended,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy classified titles: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadClassified returns the classified catalog of runID in catalog order
func (r *Repository) LoadClassified(ctx context.Context, runID uuid.UUID) ([]contracts.ClassifiedTitle, error) {
	query := `
		SELECT
			title_id, title, year, runtime_minutes, genres,
			average_rating, num_votes, rule_hits, recommended
		FROM classified_titles
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query classified titles: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.ClassifiedTitle, 0)

	for rows.Next() {
		var t contracts.ClassifiedTitle
		err := rows.Scan(
			&t.ID, &t.Title.Title, &t.Year, &t.RuntimeMinutes, &t.Genres,
			&t.AverageRating, &t.NumVotes, &t.RuleHits, &t.Recommended,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		results = append(results, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}
