package s1_catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Repository persists the genre frequency table of a run
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveGenres replaces the genre table of runID
func (r *Repository) SaveGenres(ctx context.Context, runID uuid.UUID, genres []contracts.Genre) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM genre_frequencies WHERE run_id = $1`, runID)

	query := `
		INSERT INTO genre_frequencies (run_id, position, genre, occurrences, selected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, genre) DO UPDATE SET
			position = EXCLUDED.position,
			occurrences = EXCLUDED.occurrences,
			selected = EXCLUDED.selected
	`
	for i, g := range genres {
		batch.Queue(query, runID, i, g.Name, g.Occurrences, g.Selected)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save genres: %w", err)
		}
	}

	return nil
}

// LoadGenres returns the genre table of runID in frequency order
func (r *Repository) LoadGenres(ctx context.Context, runID uuid.UUID) ([]contracts.Genre, error) {
	query := `
		SELECT genre, occurrences, selected
		FROM genre_frequencies
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := make([]contracts.Genre, 0)
	for rows.Next() {
		var g contracts.Genre
		if err := rows.Scan(&g.Name, &g.Occurrences, &g.Selected); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate genres: %w", rows.Err())
	}

	return genres, nil
}
