package s2_credits

import (
	"context"
	"strconv"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// Reader loads the ratings, principals and names tables
type Reader struct {
	loader     *s0_data.Loader
	ratings    s0_data.Source
	principals s0_data.Source
	persons    s0_data.Source
	logger     *logger.Logger
}

// NewReader creates a new Reader
func NewReader(loader *s0_data.Loader, ratings, principals, persons s0_data.Source, log *logger.Logger) *Reader {
	return &Reader{
		loader:     loader,
		ratings:    ratings.WithColumns(s0_data.Columns[s0_data.SourceRatings]...),
		principals: principals.WithColumns(s0_data.Columns[s0_data.SourcePrincipals]...),
		persons:    persons.WithColumns(s0_data.Columns[s0_data.SourcePersons]...),
		logger:     log.WithField("module", "credits"),
	}
}

// LoadRatings loads the full ratings table. Rows with unparsable numbers are skipped.
func (r *Reader) LoadRatings(ctx context.Context) ([]contracts.Rating, error) {
	ratings, _, err := s0_data.LoadTable(ctx, r.loader, r.ratings, func(row s0_data.Row) (contracts.Rating, bool, error) {
		avg, err := strconv.ParseFloat(row.Get("averageRating"), 64)
		if err != nil {
			return contracts.Rating{}, false, nil
		}
		votes, err := strconv.ParseInt(row.Get("numVotes"), 10, 64)
		if err != nil || votes < 0 {
			return contracts.Rating{}, false, nil
		}
		return contracts.Rating{TitleID: row.Get("tconst"), AverageRating: avg, NumVotes: votes}, true, nil
	})
	return ratings, err
}

// IndexRatings maps title id to rating; the first row of an id wins
func IndexRatings(ratings []contracts.Rating) map[string]contracts.Rating {
	index := make(map[string]contracts.Rating, len(ratings))
	for _, r := range ratings {
		if _, ok := index[r.TitleID]; !ok {
			index[r.TitleID] = r
		}
	}
	return index
}

// JoinRatings inner-joins titles with their ratings, keeping title order
func JoinRatings(titles []contracts.Title, index map[string]contracts.Rating) []contracts.RatedTitle {
	rated := make([]contracts.RatedTitle, 0, len(titles))
	for _, t := range titles {
		r, ok := index[t.ID]
		if !ok {
			continue
		}
		rated = append(rated, contracts.RatedTitle{
			Title:         t,
			AverageRating: r.AverageRating,
			NumVotes:      r.NumVotes,
		})
	}
	return rated
}
