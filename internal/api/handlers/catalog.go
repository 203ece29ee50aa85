package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s1_catalog"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s3_aggregate"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// CatalogHandler serves genres, aggregates and rankings of the dataset
// ⭐ SSOT: read-only analysis endpoints live here only
type CatalogHandler struct {
	source   DatasetSource
	denylist []string
	logger   *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(source DatasetSource, denylist []string, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		source:   source,
		denylist: denylist,
		logger:   log,
	}
}

// GenresResponse is the genre frequency table
type GenresResponse struct {
	RunID     string            `json:"run_id"`
	Genres    []contracts.Genre `json:"genres"`
	Available []string          `json:"available"`
}

// GetGenres returns the genre frequency table with the selectable genres
// GET /api/genres
func (h *CatalogHandler) GetGenres(w http.ResponseWriter, r *http.Request) {
	ds := currentDataset(w, h.source)
	if ds == nil {
		return
	}

	respondJSON(w, http.StatusOK, GenresResponse{
		RunID:     ds.RunID,
		Genres:    ds.Genres,
		Available: s1_catalog.Available(ds.Genres, h.denylist),
	})
}

// YearGenreResponse lists (year, genre) buckets
type YearGenreResponse struct {
	RunID    string             `json:"run_id"`
	Genres   []string           `json:"genres"`
	Buckets  []contracts.Bucket `json:"buckets"`
	Computed bool               `json:"computed"` // true when aggregated for this request
}

// GetYearGenre returns the year×genre aggregates. A genres parameter
// re-aggregates the served titles for that selection.
// GET /api/aggregates/year-genre?genres=Drama,Comedy
func (h *CatalogHandler) GetYearGenre(w http.ResponseWriter, r *http.Request) {
	ds := currentDataset(w, h.source)
	if ds == nil {
		return
	}

	genres := queryList(r, "genres")
	if genres == nil {
		selected := make([]string, 0, len(ds.Genres))
		for _, g := range ds.Genres {
			if g.Selected {
				selected = append(selected, g.Name)
			}
		}
		respondJSON(w, http.StatusOK, YearGenreResponse{
			RunID:   ds.RunID,
			Genres:  selected,
			Buckets: ds.Aggregates.YearGenre,
		})
		return
	}

	titles := make([]contracts.Title, len(ds.Titles))
	ratings := make(map[string]contracts.Rating, len(ds.Titles))
	for i, t := range ds.Titles {
		titles[i] = t.Title
		ratings[t.ID] = contracts.Rating{TitleID: t.ID, AverageRating: t.AverageRating, NumVotes: t.NumVotes}
	}

	sel := contracts.NewGenreSelection(genres...)
	res := s3_aggregate.YearGenre(titles, ratings, sel)

	respondJSON(w, http.StatusOK, YearGenreResponse{
		RunID:    ds.RunID,
		Genres:   sel.Names(),
		Buckets:  res.Buckets,
		Computed: true,
	})
}

// RankingResponse is a people ranking
type RankingResponse struct {
	RunID    string                   `json:"run_id"`
	Role     string                   `json:"role"`
	ByRating bool                     `json:"by_rating"`
	People   []contracts.RankedPerson `json:"people"`
}

// GetRanking returns the top-n actors or directors by votes
// GET /api/rankings/{role}?n=10&by_rating=true
func (h *CatalogHandler) GetRanking(w http.ResponseWriter, r *http.Request) {
	role := mux.Vars(r)["role"]

	ds := currentDataset(w, h.source)
	if ds == nil {
		return
	}

	var buckets []contracts.Bucket
	switch role {
	case "actors":
		buckets = ds.Aggregates.Actors
	case "directors":
		buckets = ds.Aggregates.Directors
	default:
		respondError(w, http.StatusBadRequest, "Invalid role (valid: actors, directors)")
		return
	}

	n, err := queryInt(r, "n", 10)
	if err != nil || n < 0 {
		respondError(w, http.StatusBadRequest, "Invalid 'n' (expected a non-negative integer)")
		return
	}

	byRating := false
	if raw := r.URL.Query().Get("by_rating"); raw != "" {
		if byRating, err = strconv.ParseBool(raw); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'by_rating' (expected true or false)")
			return
		}
	}

	respondJSON(w, http.StatusOK, RankingResponse{
		RunID:    ds.RunID,
		Role:     role,
		ByRating: byRating,
		People:   selection.TopN(buckets, n, byRating),
	})
}
