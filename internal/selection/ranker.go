package selection

import (
	"sort"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// TopN returns the n buckets with the greatest total votes as ranking rows.
// Ties keep input order. With sortByRating the selected rows are re-sorted by
// weighted rating (descending, stable) before ranks are assigned.
// The input slice is never modified.
func TopN(buckets []contracts.Bucket, n int, sortByRating bool) []contracts.RankedPerson {
	if n <= 0 || len(buckets) == 0 {
		return []contracts.RankedPerson{}
	}

	sorted := make([]contracts.Bucket, len(buckets))
	copy(sorted, buckets)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalVotes > sorted[j].TotalVotes
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}

	if sortByRating {
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].WeightedRating > sorted[j].WeightedRating
		})
	}

	ranked := make([]contracts.RankedPerson, len(sorted))
	for i, b := range sorted {
		ranked[i] = contracts.RankedPerson{
			Rank:           i + 1,
			Name:           b.KeyString(),
			PersonIDs:      b.Members,
			TotalVotes:     b.TotalVotes,
			WeightedRating: b.WeightedRating,
			Count:          b.Count,
		}
	}

	return ranked
}

// Ranker implements S6: vote rankings of actors and directors
// ⭐ SSOT: S6 ranking logic lives here only
type Ranker struct {
	topActors    int
	topDirectors int
	logger       *logger.Logger
}

// NewRanker creates a new ranker sized by the classifier's top-N settings
func NewRanker(config ClassifierConfig, log *logger.Logger) *Ranker {
	return &Ranker{
		topActors:    config.TopActors,
		topDirectors: config.TopDirectors,
		logger:       log.WithField("module", "ranker"),
	}
}

// Rank builds the vote rankings used by the classifier
func (r *Ranker) Rank(aggs *contracts.Aggregates) *contracts.Rankings {
	rankings := &contracts.Rankings{
		Actors:    TopN(aggs.Actors, r.topActors, false),
		Directors: TopN(aggs.Directors, r.topDirectors, false),
	}

	fields := map[string]interface{}{
		"actors":    len(rankings.Actors),
		"directors": len(rankings.Directors),
	}
	if len(rankings.Actors) > 0 {
		fields["top_actor"] = rankings.Actors[0].Name
	}
	if len(rankings.Directors) > 0 {
		fields["top_director"] = rankings.Directors[0].Name
	}
	r.logger.WithFields(fields).Info("Ranking completed")

	return rankings
}
