package pipelineconfig

import (
	"fmt"
	"strings"
)

// ValidationError reports an invalid setting
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.Name == "" {
		return ValidationError{"meta.name", "required"}
	}

	// === Sources ===
	for name, file := range cfg.Sources.Files() {
		if strings.TrimSpace(file) == "" {
			return ValidationError{"sources", fmt.Sprintf("file for %s is required", name)}
		}
	}

	// === Loader ===
	if cfg.Loader.ChunkSize <= 0 {
		return ValidationError{"loader.chunk_size", "must be > 0"}
	}
	if cfg.Loader.Workers < 0 {
		return ValidationError{"loader.workers", "must be >= 0"}
	}

	// === Catalog ===
	if cfg.Catalog.Region == "" {
		return ValidationError{"catalog.region", "required"}
	}
	if cfg.Catalog.TitleType == "" {
		return ValidationError{"catalog.title_type", "required"}
	}
	if cfg.Catalog.MinYear < 1870 {
		return ValidationError{"catalog.min_year", "must be >= 1870"}
	}

	// === Genres ===
	deny := make(map[string]struct{}, len(cfg.Genres.Denylist))
	for _, g := range cfg.Genres.Denylist {
		deny[g] = struct{}{}
	}
	for _, g := range cfg.Genres.Selected {
		if _, ok := deny[g]; ok {
			return ValidationError{"genres.selected", fmt.Sprintf("%q is denylisted", g)}
		}
	}

	// === Classifier / Recommender ===
	if err := cfg.Classifier.Validate(); err != nil {
		return ValidationError{"classifier", err.Error()}
	}
	if err := cfg.Recommender.Validate(); err != nil {
		return ValidationError{"recommender", err.Error()}
	}

	// === Cache ===
	if cfg.Cache.LRUSize < 0 {
		return ValidationError{"cache.lru_size", "must be >= 0"}
	}
	if cfg.Cache.TTL < 0 {
		return ValidationError{"cache.ttl", "must be >= 0"}
	}

	return nil
}
