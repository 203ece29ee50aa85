package selection

import (
	"fmt"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// RuleThreshold is a minimum vote count and rating pair
type RuleThreshold struct {
	MinVotes  int64   `yaml:"min_votes" json:"min_votes"`
	MinRating float64 `yaml:"min_rating" json:"min_rating"`
}

// ClassifierConfig defines the recommendation rules
type ClassifierConfig struct {
	MinRuntime   int           `yaml:"min_runtime" json:"min_runtime"` // minutes, inclusive
	MaxRuntime   int           `yaml:"max_runtime" json:"max_runtime"` // minutes, inclusive
	Acclaimed    RuleThreshold `yaml:"acclaimed" json:"acclaimed"`     // rule 1, on its own
	Credited     RuleThreshold `yaml:"credited" json:"credited"`       // rules 2 and 3, with a top-ranked credit
	TopActors    int           `yaml:"top_actors" json:"top_actors"`
	TopDirectors int           `yaml:"top_directors" json:"top_directors"`
}

// DefaultClassifierConfig returns the reference rules
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MinRuntime:   60,
		MaxRuntime:   180,
		Acclaimed:    RuleThreshold{MinVotes: 100_000, MinRating: 7.0},
		Credited:     RuleThreshold{MinVotes: 10_000, MinRating: 5.0},
		TopActors:    200,
		TopDirectors: 50,
	}
}

// Validate checks the classifier settings
func (c ClassifierConfig) Validate() error {
	if c.MinRuntime < 0 || c.MaxRuntime < c.MinRuntime {
		return fmt.Errorf("runtime window [%d,%d] is invalid", c.MinRuntime, c.MaxRuntime)
	}
	if c.Acclaimed.MinVotes < 0 || c.Credited.MinVotes < 0 {
		return fmt.Errorf("min_votes must be >= 0")
	}
	if c.TopActors < 0 || c.TopDirectors < 0 {
		return fmt.Errorf("top_actors and top_directors must be >= 0")
	}
	return nil
}

// Classifier implements S7: recommendation flags
// ⭐ SSOT: S7 classification rules live here only
type Classifier struct {
	config ClassifierConfig
	logger *logger.Logger
}

// NewClassifier creates a new classifier
func NewClassifier(config ClassifierConfig, log *logger.Logger) *Classifier {
	return &Classifier{
		config: config,
		logger: log.WithField("module", "classifier"),
	}
}

// Classify flags every rated title. Each credit fact of a title is evaluated
// against the rules; RuleHits is the number of facts with a hit and
// Recommended is RuleHits > 0. A title without credits is evaluated once.
// The output has exactly one row per input title, in input order.
func (c *Classifier) Classify(titles []contracts.RatedTitle, facts map[string][]contracts.CreditFact, rankings *contracts.Rankings) []contracts.ClassifiedTitle {
	topActors := rankedNames(rankings.Actors)
	topDirectors := rankedNames(rankings.Directors)

	out := make([]contracts.ClassifiedTitle, 0, len(titles))
	recommended := 0

	for _, t := range titles {
		inWindow := c.inRuntimeWindow(t.RuntimeMinutes)
		acclaimed := inWindow && meets(t, c.config.Acclaimed)
		credited := inWindow && meets(t, c.config.Credited)

		hit := func(f *contracts.CreditFact) bool {
			if acclaimed {
				return true
			}
			if !credited || f == nil {
				return false
			}
			switch f.Role {
			case contracts.RoleActing:
				_, ok := topActors[f.Name]
				return ok
			case contracts.RoleDirecting:
				_, ok := topDirectors[f.Name]
				return ok
			}
			return false
		}

		hits := 0
		titleFacts := facts[t.ID]
		if len(titleFacts) == 0 {
			if hit(nil) {
				hits = 1
			}
		}
		for i := range titleFacts {
			if hit(&titleFacts[i]) {
				hits++
			}
		}

		ct := contracts.ClassifiedTitle{
			RatedTitle:  t,
			RuleHits:    hits,
			Recommended: hits > 0,
		}
		if ct.Recommended {
			recommended++
		}
		out = append(out, ct)
	}

	c.logger.WithFields(map[string]interface{}{
		"titles":      len(out),
		"recommended": recommended,
	}).Info("Classification completed")

	return out
}

// inRuntimeWindow reports whether a known runtime lies in the window
func (c *Classifier) inRuntimeWindow(runtime int) bool {
	return runtime > 0 && runtime >= c.config.MinRuntime && runtime <= c.config.MaxRuntime
}

func meets(t contracts.RatedTitle, th RuleThreshold) bool {
	return t.NumVotes >= th.MinVotes && t.AverageRating >= th.MinRating
}

func rankedNames(ranked []contracts.RankedPerson) map[string]struct{} {
	names := make(map[string]struct{}, len(ranked))
	for _, p := range ranked {
		names[p.Name] = struct{}{}
	}
	return names
}
