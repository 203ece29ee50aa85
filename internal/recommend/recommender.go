// Package recommend answers "find similar movies" queries over a classified
// catalog with a Euclidean k-nearest-neighbour search.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/metrics"
)

// Ambiguity policies for a seed name matching several titles
const (
	AmbiguityError = "error"
	AmbiguityFirst = "first"
)

// MaxK bounds the neighbours searched per query
const MaxK = 10_000

// Config holds the recommender settings
type Config struct {
	K                    int    `yaml:"k" json:"k"`                                         // neighbours searched
	MinFullMatch         int    `yaml:"min_full_match" json:"min_full_match"`               // full matches needed to skip relaxation
	RecommendedThreshold int    `yaml:"recommended_threshold" json:"recommended_threshold"` // recommended neighbours needed to filter on the flag
	MaxResults           int    `yaml:"max_results" json:"max_results"`
	Standardize          bool   `yaml:"standardize" json:"standardize"` // z-score features over seed and candidates
	Ambiguity            string `yaml:"ambiguity" json:"ambiguity"`     // "error" or "first"
}

// DefaultConfig returns the reference settings
func DefaultConfig() Config {
	return Config{
		K:                    50,
		MinFullMatch:         50,
		RecommendedThreshold: 10,
		MaxResults:           10,
		Standardize:          false,
		Ambiguity:            AmbiguityError,
	}
}

// Validate checks the recommender settings
func (c Config) Validate() error {
	if c.K <= 0 || c.K > MaxK {
		return fmt.Errorf("k must be in 1..%d, got %d", MaxK, c.K)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive")
	}
	if c.MinFullMatch < 0 || c.RecommendedThreshold < 0 {
		return fmt.Errorf("min_full_match and recommended_threshold must be >= 0")
	}
	if c.Ambiguity != AmbiguityError && c.Ambiguity != AmbiguityFirst {
		return fmt.Errorf("ambiguity must be %q or %q", AmbiguityError, AmbiguityFirst)
	}
	return nil
}

// Recommender implements S8: similarity search
// ⭐ SSOT: S8 query logic lives here only
type Recommender struct {
	config Config
	logger *logger.Logger
}

// New creates a new recommender
func New(config Config, log *logger.Logger) *Recommender {
	return &Recommender{
		config: config,
		logger: log.WithField("module", "recommender"),
	}
}

var _ contracts.Recommender = (*Recommender)(nil)

// K returns the number of neighbours searched
func (r *Recommender) K() int {
	return r.config.K
}

// WithK returns a recommender searching k neighbours, other settings unchanged
func (r *Recommender) WithK(k int) (contracts.Recommender, error) {
	config := r.config
	config.K = k
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Recommender{config: config, logger: r.logger}, nil
}

// Recommend returns titles similar to the one named seedName, nearest first
func (r *Recommender) Recommend(titles []contracts.ClassifiedTitle, seedName string) ([]contracts.Neighbor, error) {
	var matches []int
	for i := range titles {
		if titles[i].Title.Title == seedName {
			matches = append(matches, i)
		}
	}

	switch {
	case len(matches) == 0:
		return nil, r.observe(fmt.Errorf("%w: %q", contracts.ErrNotFound, seedName))
	case len(matches) > 1 && r.config.Ambiguity != AmbiguityFirst:
		ids := make([]string, len(matches))
		for i, idx := range matches {
			ids[i] = titles[idx].ID
		}
		return nil, r.observe(&contracts.AmbiguousMatchError{Name: seedName, TitleIDs: ids})
	}

	return r.observeResult(r.neighbors(titles, matches[0]))
}

// RecommendByID is Recommend with the seed given by title id
func (r *Recommender) RecommendByID(titles []contracts.ClassifiedTitle, seedID string) ([]contracts.Neighbor, error) {
	for i := range titles {
		if titles[i].ID == seedID {
			return r.observeResult(r.neighbors(titles, i))
		}
	}
	return nil, r.observe(fmt.Errorf("%w: id %s", contracts.ErrNotFound, seedID))
}

func (r *Recommender) neighbors(titles []contracts.ClassifiedTitle, seedIdx int) ([]contracts.Neighbor, error) {
	seed := titles[seedIdx]
	if !seed.HasRuntime() {
		return nil, fmt.Errorf("%w: %s has no runtime", contracts.ErrIncompleteFeatures, seed.ID)
	}

	candidates := r.candidates(titles, seedIdx)

	vectors := make([][]float64, len(candidates)+1)
	vectors[0] = features(&seed)
	for i, idx := range candidates {
		vectors[i+1] = features(&titles[idx])
	}
	if r.config.Standardize {
		standardize(vectors)
	}

	result := make([]contracts.Neighbor, len(candidates))
	for i, idx := range candidates {
		result[i] = contracts.Neighbor{
			ClassifiedTitle: titles[idx],
			Distance:        distance(vectors[0], vectors[i+1]),
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Distance < result[j].Distance
	})
	if len(result) > r.config.K {
		result = result[:r.config.K]
	}

	recommended := make([]contracts.Neighbor, 0, len(result))
	for _, n := range result {
		if n.Recommended {
			recommended = append(recommended, n)
		}
	}
	if len(recommended) > r.config.RecommendedThreshold {
		result = recommended
	}

	if len(result) > r.config.MaxResults {
		result = result[:r.config.MaxResults]
	}

	r.logger.WithFields(map[string]interface{}{
		"seed":       seed.ID,
		"candidates": len(candidates),
		"results":    len(result),
	}).Debug("Recommendation computed")

	return result, nil
}

// candidates returns the indexes of titles sharing the seed's genres.
// Titles with all seed genres are used when there are at least MinFullMatch
// of them; otherwise a multi-genre seed also admits titles missing one genre.
func (r *Recommender) candidates(titles []contracts.ClassifiedTitle, seedIdx int) []int {
	seed := titles[seedIdx]
	seedGenres := make(map[string]struct{}, len(seed.Genres))
	for _, g := range seed.Genres {
		seedGenres[g] = struct{}{}
	}
	need := len(seedGenres)

	var full, relaxed []int
	for i := range titles {
		if i == seedIdx || titles[i].ID == seed.ID || !titles[i].HasRuntime() {
			continue
		}

		common := 0
		for g := range seedGenres {
			if titles[i].HasGenre(g) {
				common++
			}
		}

		if common == need {
			full = append(full, i)
		}
		if need > 1 && common >= need-1 {
			relaxed = append(relaxed, i)
		}
	}

	if len(full) >= r.config.MinFullMatch || need <= 1 {
		return full
	}
	return relaxed
}

func (r *Recommender) observe(err error) error {
	outcome := "error"
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, contracts.ErrAmbiguousMatch):
		outcome = "ambiguous"
	case errors.Is(err, contracts.ErrIncompleteFeatures):
		outcome = "incomplete"
	}
	metrics.Recommendations.WithLabelValues(outcome).Inc()
	return err
}

func (r *Recommender) observeResult(result []contracts.Neighbor, err error) ([]contracts.Neighbor, error) {
	if err != nil {
		return nil, r.observe(err)
	}
	metrics.Recommendations.WithLabelValues("ok").Inc()
	return result, nil
}

// features returns [year, runtime, rating, votes, recommended]
func features(t *contracts.ClassifiedTitle) []float64 {
	rec := 0.0
	if t.Recommended {
		rec = 1
	}
	return []float64{
		float64(t.Year),
		float64(t.RuntimeMinutes),
		t.AverageRating,
		float64(t.NumVotes),
		rec,
	}
}

func distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// standardize rescales every dimension to zero mean and unit population
// standard deviation. Constant dimensions become 0.
func standardize(vectors [][]float64) {
	if len(vectors) == 0 {
		return
	}
	n := float64(len(vectors))

	for d := range vectors[0] {
		mean := 0.0
		for _, v := range vectors {
			mean += v[d]
		}
		mean /= n

		variance := 0.0
		for _, v := range vectors {
			variance += (v[d] - mean) * (v[d] - mean)
		}
		std := math.Sqrt(variance / n)

		for _, v := range vectors {
			if std == 0 {
				v[d] = 0
				continue
			}
			v[d] = (v[d] - mean) / std
		}
	}
}
