package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/redis"
)

// RecommendHandler answers similarity queries
type RecommendHandler struct {
	source      DatasetSource
	recommender contracts.Recommender
	cache       *redis.Cache // nil disables answer caching
	logger      *logger.Logger
}

// NewRecommendHandler creates a new recommendation handler
func NewRecommendHandler(source DatasetSource, recommender contracts.Recommender, cache *redis.Cache, log *logger.Logger) *RecommendHandler {
	return &RecommendHandler{
		source:      source,
		recommender: recommender,
		cache:       cache,
		logger:      log,
	}
}

// RecommendResponse lists similar titles, nearest first
type RecommendResponse struct {
	RunID   string               `json:"run_id"`
	Seed    string               `json:"seed"`
	Results []contracts.Neighbor `json:"results"`
}

// ambiguousResponse lists the candidate ids for a name shared by several titles
type ambiguousResponse struct {
	Error    string   `json:"error"`
	TitleIDs []string `json:"title_ids"`
}

// GetRecommendations returns titles similar to a seed given by name or id
// GET /api/recommendations?title=Le%20Parrain
// GET /api/recommendations?id=tt0068646&k=20
func (h *RecommendHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	title := r.URL.Query().Get("title")
	id := r.URL.Query().Get("id")
	if title == "" && id == "" {
		respondError(w, http.StatusBadRequest, "One of 'title' or 'id' is required")
		return
	}

	recommender := h.recommender
	if r.URL.Query().Get("k") != "" {
		k, err := queryInt(r, "k", recommender.K())
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'k'")
			return
		}
		if recommender, err = recommender.WithK(k); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	ds := currentDataset(w, h.source)
	if ds == nil {
		return
	}

	seed := "title:" + title
	if id != "" {
		seed = "id:" + id
	}
	key := redis.RecommendationKey(ds.RunID, fmt.Sprintf("%s:k%d", seed, recommender.K()))

	if h.cache != nil {
		var cached RecommendResponse
		found, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Recommendation cache read failed")
		} else if found {
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	var (
		results []contracts.Neighbor
		err     error
	)
	if id != "" {
		results, err = recommender.RecommendByID(ds.Titles, id)
	} else {
		results, err = recommender.Recommend(ds.Titles, title)
	}

	var amb *contracts.AmbiguousMatchError
	switch {
	case err == nil:
	case errors.As(err, &amb):
		respondJSON(w, http.StatusConflict, ambiguousResponse{Error: err.Error(), TitleIDs: amb.TitleIDs})
		return
	case errors.Is(err, contracts.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, contracts.ErrAmbiguousMatch):
		respondError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, contracts.ErrIncompleteFeatures):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	default:
		h.logger.WithError(err).Error("Recommendation failed")
		respondError(w, http.StatusInternalServerError, "Failed to compute recommendations")
		return
	}

	if results == nil {
		results = []contracts.Neighbor{}
	}
	resp := RecommendResponse{RunID: ds.RunID, Seed: seed, Results: results}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, resp, redis.TTLShort); err != nil {
			h.logger.WithError(err).Warn("Recommendation cache write failed")
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
