// Package pipelineconfig loads the YAML settings of the movie pipeline.
package pipelineconfig

import (
	"time"

	"github.com/Miche5967/movie-analyse-recommendation/internal/recommend"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s1_catalog"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
)

// Config is the full pipeline configuration
type Config struct {
	Meta        Meta                       `yaml:"meta" json:"meta"`
	Sources     Sources                    `yaml:"sources" json:"sources"`
	Loader      s0_data.Config             `yaml:"loader" json:"loader"`
	Catalog     s1_catalog.Config          `yaml:"catalog" json:"catalog"`
	Genres      s1_catalog.GenreConfig     `yaml:"genres" json:"genres"`
	Classifier  selection.ClassifierConfig `yaml:"classifier" json:"classifier"`
	Recommender recommend.Config           `yaml:"recommender" json:"recommender"`
	Cache       Cache                      `yaml:"cache" json:"cache"`
}

// Meta identifies a configuration
type Meta struct {
	Name    string `yaml:"name" json:"name"`
	Version string `yaml:"version" json:"version"`
}

// Sources holds the file name of each IMDb export
type Sources struct {
	Aliases    string `yaml:"aliases" json:"aliases"`
	Attributes string `yaml:"attributes" json:"attributes"`
	Ratings    string `yaml:"ratings" json:"ratings"`
	Principals string `yaml:"principals" json:"principals"`
	Persons    string `yaml:"persons" json:"persons"`
}

// Files returns the file names keyed by source name
func (s Sources) Files() s0_data.Files {
	return s0_data.Files{
		s0_data.SourceAliases:    s.Aliases,
		s0_data.SourceAttributes: s.Attributes,
		s0_data.SourceRatings:    s.Ratings,
		s0_data.SourcePrincipals: s.Principals,
		s0_data.SourcePersons:    s.Persons,
	}
}

// Cache configures stage memoization
type Cache struct {
	LRUSize int           `yaml:"lru_size" json:"lru_size"` // entries kept in process; 0 disables
	TTL     time.Duration `yaml:"ttl" json:"ttl"`           // Redis entry lifetime
}

// Default returns the reference configuration
func Default() *Config {
	return &Config{
		Meta: Meta{Name: "imdb_fr_movies", Version: "1"},
		Sources: Sources{
			Aliases:    "title.akas.tsv.gz",
			Attributes: "title.basics.tsv.gz",
			Ratings:    "title.ratings.tsv.gz",
			Principals: "title.principals.tsv.gz",
			Persons:    "name.basics.tsv.gz",
		},
		Loader:      s0_data.Config{ChunkSize: s0_data.DefaultChunkSize, Workers: 4},
		Catalog:     s1_catalog.DefaultConfig(),
		Genres:      s1_catalog.DefaultGenreConfig(),
		Classifier:  selection.DefaultClassifierConfig(),
		Recommender: recommend.DefaultConfig(),
		Cache:       Cache{LRUSize: 64, TTL: 6 * time.Hour},
	}
}
