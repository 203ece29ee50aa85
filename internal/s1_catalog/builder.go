package s1_catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
)

// Config holds catalog filter criteria
type Config struct {
	Region    string `yaml:"region" json:"region"`         // alias region kept (e.g. "FR")
	TitleType string `yaml:"title_type" json:"title_type"` // attribute type kept (e.g. "movie")
	MinYear   int    `yaml:"min_year" json:"min_year"`     // earliest release year kept
}

// DefaultConfig returns the French movies from 1980 catalog
func DefaultConfig() Config {
	return Config{
		Region:    "FR",
		TitleType: "movie",
		MinYear:   1980,
	}
}

// Alias is a localized title in the configured region
type Alias struct {
	TitleID string
	Title   string
}

// Attributes is a filtered title.basics row
type Attributes struct {
	ID             string
	Year           int
	RuntimeMinutes int // 0 = unknown
	Genres         string
}

// Builder constructs the region catalog
type Builder struct {
	loader     *s0_data.Loader
	aliases    s0_data.Source
	attributes s0_data.Source
	config     Config
	logger     *logger.Logger
}

// NewBuilder creates a new catalog Builder
func NewBuilder(loader *s0_data.Loader, aliases, attributes s0_data.Source, config Config, log *logger.Logger) *Builder {
	return &Builder{
		loader:     loader,
		aliases:    aliases.WithColumns(s0_data.Columns[s0_data.SourceAliases]...),
		attributes: attributes.WithColumns(s0_data.Columns[s0_data.SourceAttributes]...),
		config:     config,
		logger:     log.WithField("module", "catalog"),
	}
}

// Build loads both tables and joins them
// ⭐ SSOT: S1 → S2 catalog
func (b *Builder) Build(ctx context.Context) (*contracts.Catalog, error) {
	start := time.Now()

	aliases, err := b.LoadAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}

	attributes, err := b.LoadAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}

	catalog := &contracts.Catalog{
		Rows:           Join(attributes, aliases),
		AliasCount:     len(aliases),
		AttributeCount: len(attributes),
	}

	b.logger.WithFields(map[string]interface{}{
		"region":     b.config.Region,
		"min_year":   b.config.MinYear,
		"aliases":    catalog.AliasCount,
		"attributes": catalog.AttributeCount,
		"titles":     len(catalog.Rows),
		"duration":   time.Since(start).String(),
	}).Info("Catalog built")

	return catalog, nil
}

// LoadAliases keeps the aliases of the configured region
func (b *Builder) LoadAliases(ctx context.Context) ([]Alias, error) {
	region := b.config.Region
	aliases, _, err := s0_data.LoadTable(ctx, b.loader, b.aliases, func(r s0_data.Row) (Alias, bool, error) {
		if r.Get("region") != region {
			return Alias{}, false, nil
		}
		return Alias{TitleID: r.Get("titleId"), Title: r.Get("title")}, true, nil
	})
	return aliases, err
}

// LoadAttributes keeps titles of the configured type released from MinYear.
// Rows with a non-numeric year are dropped, not reported.
func (b *Builder) LoadAttributes(ctx context.Context) ([]Attributes, error) {
	cfg := b.config
	attrs, _, err := s0_data.LoadTable(ctx, b.loader, b.attributes, func(r s0_data.Row) (Attributes, bool, error) {
		year := r.Get("startYear")
		if !s0_data.IsNumeric(year) || r.Get("titleType") != cfg.TitleType {
			return Attributes{}, false, nil
		}
		y := s0_data.ParseIntOrZero(year)
		if y < cfg.MinYear {
			return Attributes{}, false, nil
		}
		return Attributes{
			ID:             r.Get("tconst"),
			Year:           y,
			RuntimeMinutes: s0_data.ParseIntOrZero(r.Get("runtimeMinutes")),
			Genres:         r.Get("genres"),
		}, true, nil
	})
	return attrs, err
}

// Join inner-joins attributes with aliases on title id.
// Output follows attribute order; a title matched by several aliases keeps
// the first alias in alias order, and titles without genres are dropped.
func Join(attributes []Attributes, aliases []Alias) []contracts.CatalogRow {
	first := make(map[string]string, len(aliases))
	for _, a := range aliases {
		if _, ok := first[a.TitleID]; !ok {
			first[a.TitleID] = a.Title
		}
	}

	rows := make([]contracts.CatalogRow, 0, len(first))
	seen := make(map[string]struct{}, len(first))
	for _, attr := range attributes {
		title, ok := first[attr.ID]
		if !ok {
			continue
		}
		if _, dup := seen[attr.ID]; dup {
			continue
		}
		seen[attr.ID] = struct{}{}

		if attr.Genres == contracts.NoData || attr.Genres == "" {
			continue
		}

		rows = append(rows, contracts.CatalogRow{
			ID:             attr.ID,
			Title:          title,
			Year:           attr.Year,
			RuntimeMinutes: attr.RuntimeMinutes,
			GenresRaw:      attr.Genres,
		})
	}

	return rows
}
