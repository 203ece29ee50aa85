package contracts

import "strings"

// Bucket is one vote-weighted aggregate
// ⭐ SSOT: S5 → S6 bucket
type Bucket struct {
	Key            []string           `json:"key"`
	Members        []string           `json:"members,omitempty"` // distinct person ids for name-keyed buckets
	TotalVotes     int64              `json:"total_votes"`
	WeightedSum    float64            `json:"weighted_sum"`    // Σ(rating × votes)
	WeightedRating float64            `json:"weighted_rating"` // WeightedSum / TotalVotes
	Count          int                `json:"count"`
	Means          map[string]float64 `json:"means,omitempty"`
}

// KeyString joins the key parts for display and map lookups
func (b *Bucket) KeyString() string {
	return strings.Join(b.Key, "|")
}

// Aggregates is the S5 output
type Aggregates struct {
	YearGenre  []Bucket `json:"year_genre"`
	Actors     []Bucket `json:"actors"`
	Directors  []Bucket `json:"directors"`
	Degenerate int      `json:"degenerate"` // buckets excluded for zero total votes
}

// RankedPerson is one row of a people ranking
// ⭐ SSOT: S6 → S7 ranking row
type RankedPerson struct {
	Rank           int      `json:"rank"` // 1-based
	Name           string   `json:"name"`
	PersonIDs      []string `json:"person_ids"`
	TotalVotes     int64    `json:"total_votes"`
	WeightedRating float64  `json:"weighted_rating"`
	Count          int      `json:"count"`
}

// Rankings is the S6 output used by the classifier
type Rankings struct {
	Actors    []RankedPerson `json:"actors"`
	Directors []RankedPerson `json:"directors"`
}
