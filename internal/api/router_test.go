package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/internal/api/handlers"
	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/recommend"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/redis"
)

func movie(id, name string, year, runtime int, rating float64, votes int64, genres ...string) contracts.ClassifiedTitle {
	return contracts.ClassifiedTitle{
		RatedTitle: contracts.RatedTitle{
			Title: contracts.Title{
				ID:             id,
				Title:          name,
				Year:           year,
				RuntimeMinutes: runtime,
				Genres:         genres,
			},
			AverageRating: rating,
			NumVotes:      votes,
		},
	}
}

func testDataset() *contracts.Dataset {
	return &contracts.Dataset{
		RunID: "run-1",
		Titles: []contracts.ClassifiedTitle{
			movie("tt1", "Le Parrain", 1972, 175, 9.2, 1000, "Crime", "Drama"),
			movie("tt2", "Les Affranchis", 1990, 146, 8.7, 800, "Crime", "Drama"),
			movie("tt3", "Casino", 1995, 178, 8.2, 400, "Crime", "Drama"),
			movie("tt4", "Casino", 2006, 0, 6.0, 50, "Drama"),
			movie("tt5", "Sans Duree", 2001, 0, 5.0, 10, "Comedy"),
		},
		Genres: []contracts.Genre{
			{Name: "Drama", Occurrences: 4, Selected: true},
			{Name: "Crime", Occurrences: 3, Selected: true},
			{Name: "Comedy", Occurrences: 1},
			{Name: "News", Occurrences: 1},
		},
		Aggregates: contracts.Aggregates{
			YearGenre: []contracts.Bucket{
				{Key: []string{"1972", "Drama"}, TotalVotes: 1000, WeightedRating: 9.2, Count: 1},
			},
			Actors: []contracts.Bucket{
				{Key: []string{"Al Pacino"}, Members: []string{"nm1"}, TotalVotes: 1000, WeightedRating: 9.2, Count: 1},
				{Key: []string{"Robert De Niro"}, Members: []string{"nm2"}, TotalVotes: 1200, WeightedRating: 8.5, Count: 2},
			},
			Directors: []contracts.Bucket{
				{Key: []string{"Martin Scorsese"}, Members: []string{"nm3"}, TotalVotes: 1200, WeightedRating: 8.5, Count: 2},
			},
		},
	}
}

func newTestRouter(t *testing.T, ds *contracts.Dataset) http.Handler {
	t.Helper()

	log := logger.Nop()
	current := &brain.Current{}
	if ds != nil {
		current.Set(ds)
	}

	cfg := recommend.DefaultConfig()
	cfg.MinFullMatch = 0

	client, err := redis.New(testConfig())
	require.NoError(t, err)

	h := Handlers{
		Catalog:   handlers.NewCatalogHandler(current, []string{"News"}, log),
		Recommend: handlers.NewRecommendHandler(current, recommend.New(cfg, log), nil, log),
	}
	return NewRouter(h, RouterOptions{
		Limiter:        redis.NewRateLimiter(client, "test"),
		MetricsEnabled: true,
	}, log)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestRouter(t, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDatasetNotLoaded(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, target := range []string{
		"/api/genres",
		"/api/aggregates/year-genre",
		"/api/rankings/actors",
		"/api/recommendations?title=Casino",
	} {
		rec := get(t, router, target)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, target)
	}
}

func TestGetGenres(t *testing.T) {
	rec := get(t, newTestRouter(t, testDataset()), "/api/genres")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.GenresResponse](t, rec)
	assert.Equal(t, "run-1", resp.RunID)
	assert.Len(t, resp.Genres, 4)
	assert.NotContains(t, resp.Available, "News")
	assert.Contains(t, resp.Available, "Drama")
}

func TestGetYearGenre(t *testing.T) {
	router := newTestRouter(t, testDataset())

	t.Run("served aggregates", func(t *testing.T) {
		rec := get(t, router, "/api/aggregates/year-genre")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handlers.YearGenreResponse](t, rec)
		assert.False(t, resp.Computed)
		assert.Equal(t, []string{"Drama", "Crime"}, resp.Genres)
		assert.Len(t, resp.Buckets, 1)
	})

	t.Run("custom selection", func(t *testing.T) {
		rec := get(t, router, "/api/aggregates/year-genre?genres=Crime")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handlers.YearGenreResponse](t, rec)
		assert.True(t, resp.Computed)
		assert.Equal(t, []string{"Crime"}, resp.Genres)
		require.Len(t, resp.Buckets, 3)
		for _, b := range resp.Buckets {
			assert.Equal(t, "Crime", b.Key[1])
		}
	})
}

func TestGetRanking(t *testing.T) {
	router := newTestRouter(t, testDataset())

	t.Run("by votes", func(t *testing.T) {
		rec := get(t, router, "/api/rankings/actors?n=1")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handlers.RankingResponse](t, rec)
		require.Len(t, resp.People, 1)
		assert.Equal(t, "Robert De Niro", resp.People[0].Name)
		assert.Equal(t, 1, resp.People[0].Rank)
	})

	t.Run("by rating", func(t *testing.T) {
		rec := get(t, router, "/api/rankings/actors?by_rating=true")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handlers.RankingResponse](t, rec)
		require.Len(t, resp.People, 2)
		assert.Equal(t, "Al Pacino", resp.People[0].Name)
	})

	t.Run("directors", func(t *testing.T) {
		rec := get(t, router, "/api/rankings/directors")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[handlers.RankingResponse](t, rec).People, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/rankings/writers").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/rankings/actors?n=-1").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/rankings/actors?by_rating=maybe").Code)
	})
}

func TestGetRecommendations(t *testing.T) {
	router := newTestRouter(t, testDataset())

	t.Run("by title", func(t *testing.T) {
		rec := get(t, router, "/api/recommendations?title=Le%20Parrain")
		require.Equal(t, http.StatusOK, rec.Code)

		resp := decode[handlers.RecommendResponse](t, rec)
		assert.Equal(t, "title:Le Parrain", resp.Seed)
		require.NotEmpty(t, resp.Results)
		for _, n := range resp.Results {
			assert.NotEqual(t, "tt1", n.ID)
			assert.Positive(t, n.RuntimeMinutes)
		}
	})

	t.Run("by id", func(t *testing.T) {
		rec := get(t, router, "/api/recommendations?id=tt2")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "id:tt2", decode[handlers.RecommendResponse](t, rec).Seed)
	})

	t.Run("ambiguous name", func(t *testing.T) {
		rec := get(t, router, "/api/recommendations?title=Casino")
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "tt3")
		assert.Contains(t, rec.Body.String(), "tt4")
	})

	t.Run("k override", func(t *testing.T) {
		rec := get(t, router, "/api/recommendations?title=Le%20Parrain&k=1")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[handlers.RecommendResponse](t, rec).Results, 1)

		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/recommendations?id=tt2&k=0").Code)
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/recommendations?id=tt2&k=many").Code)
	})

	t.Run("errors", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, router, "/api/recommendations").Code)
		assert.Equal(t, http.StatusNotFound, get(t, router, "/api/recommendations?title=Inconnu").Code)
		assert.Equal(t, http.StatusUnprocessableEntity, get(t, router, "/api/recommendations?id=tt5").Code)
	})
}

func TestRateLimitHeaders(t *testing.T) {
	rec := get(t, newTestRouter(t, testDataset()), "/api/recommendations?id=tt2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
}
