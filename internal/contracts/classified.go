package contracts

import "time"

// ClassifiedTitle is a rated title with its recommendation flag
// ⭐ SSOT: S7 → S8 classified title (exactly one per title)
type ClassifiedTitle struct {
	RatedTitle
	RuleHits    int  `json:"rule_hits"`
	Recommended bool `json:"recommended"`
}

// Neighbor is one similarity search result
type Neighbor struct {
	ClassifiedTitle
	Distance float64 `json:"distance"`
}

// Dataset is everything a finished run serves to queries
type Dataset struct {
	RunID      string            `json:"run_id"`
	ConfigHash string            `json:"config_hash"`
	BuiltAt    time.Time         `json:"built_at"`
	Titles     []ClassifiedTitle `json:"titles"`
	Genres     []Genre           `json:"genres"`
	Aggregates Aggregates        `json:"aggregates"`
	Rankings   Rankings          `json:"rankings"`
}

// RecommendedCount returns the number of recommended titles
func (d *Dataset) RecommendedCount() int {
	n := 0
	for i := range d.Titles {
		if d.Titles[i].Recommended {
			n++
		}
	}
	return n
}
