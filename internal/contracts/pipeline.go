package contracts

// Pipeline stage definitions (SSOT)
// Every log line, snapshot and DB row refers to these constants.
//
// Pipeline flow:
//   S0 → S1 → S2 → S3 → S4 → S5 → S6 → S7 → (S8 on demand)
//   Sources  Catalog  Genres  Ratings  Credits  Aggregates  Ranking  Classify  Recommend

// Stage represents a pipeline stage
type Stage string

const (
	// StageSources S0: locate and validate the five source tables
	// location: internal/s0_data/
	StageSources Stage = "S0_SOURCES"

	// StageCatalog S1: region aliases joined with movie attributes
	// location: internal/s1_catalog/builder.go
	StageCatalog Stage = "S1_CATALOG"

	// StageGenres S2: genre split, frequency table, denylist
	// location: internal/s1_catalog/genres.go
	StageGenres Stage = "S2_GENRES"

	// StageRatings S3: ratings table joined onto the catalog
	// location: internal/s2_credits/ratings.go
	StageRatings Stage = "S3_RATINGS"

	// StageCredits S4: acting/directing credit facts
	// location: internal/s2_credits/resolver.go
	StageCredits Stage = "S4_CREDITS"

	// StageAggregates S5: vote-weighted buckets
	// location: internal/s3_aggregate/
	StageAggregates Stage = "S5_AGGREGATES"

	// StageRanking S6: top-N people by votes
	// location: internal/selection/ranker.go
	StageRanking Stage = "S6_RANKING"

	// StageClassify S7: rule-based "recommended" flag
	// location: internal/selection/classifier.go
	StageClassify Stage = "S7_CLASSIFY"

	// StageRecommend S8: similarity search, run per query
	// location: internal/recommend/
	StageRecommend Stage = "S8_RECOMMEND"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns abbreviated stage name (e.g., "S0", "S1")
func (s Stage) ShortName() string {
	switch s {
	case StageSources:
		return "S0"
	case StageCatalog:
		return "S1"
	case StageGenres:
		return "S2"
	case StageRatings:
		return "S3"
	case StageCredits:
		return "S4"
	case StageAggregates:
		return "S5"
	case StageRanking:
		return "S6"
	case StageClassify:
		return "S7"
	case StageRecommend:
		return "S8"
	default:
		return "UNKNOWN"
	}
}

// Description returns a human readable description of the stage
func (s Stage) Description() string {
	switch s {
	case StageSources:
		return "source tables"
	case StageCatalog:
		return "title catalog"
	case StageGenres:
		return "genre extraction"
	case StageRatings:
		return "ratings join"
	case StageCredits:
		return "credit facts"
	case StageAggregates:
		return "weighted aggregates"
	case StageRanking:
		return "people ranking"
	case StageClassify:
		return "recommendation rules"
	case StageRecommend:
		return "similar titles"
	default:
		return "unknown"
	}
}

// AllStages returns the batch stages in execution order.
// StageRecommend is query-time only and not part of a batch run.
func AllStages() []Stage {
	return []Stage{
		StageSources,
		StageCatalog,
		StageGenres,
		StageRatings,
		StageCredits,
		StageAggregates,
		StageRanking,
		StageClassify,
	}
}

// IsValidStage checks if a stage string is valid
func IsValidStage(s string) bool {
	if Stage(s) == StageRecommend {
		return true
	}
	for _, stage := range AllStages() {
		if string(stage) == s {
			return true
		}
	}
	return false
}

// PipelineResult represents the result of a pipeline stage execution
type PipelineResult struct {
	Stage       Stage                  `json:"stage"`
	Success     bool                   `json:"success"`
	Memoized    bool                   `json:"memoized"`
	InputCount  int                    `json:"input_count"`
	OutputCount int                    `json:"output_count"`
	Duration    int64                  `json:"duration_ms"`
	Error       string                 `json:"error,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
