package contracts

import "context"

// CatalogBuilder builds the region catalog (S1)
// ⭐ SSOT: S1 interface
type CatalogBuilder interface {
	Build(ctx context.Context) (*Catalog, error)
}

// RatingsLoader loads the ratings table (S3)
type RatingsLoader interface {
	LoadRatings(ctx context.Context) ([]Rating, error)
}

// CreditsLoader loads principal credits and person names (S4)
type CreditsLoader interface {
	LoadCredits(ctx context.Context, scope map[string]struct{}) ([]Credit, error)
	LoadPersons(ctx context.Context, scope map[string]struct{}) ([]Person, error)
}

// Recommender answers similarity queries (S8)
// ⭐ SSOT: S8 interface
type Recommender interface {
	Recommend(titles []ClassifiedTitle, seedName string) ([]Neighbor, error)
	RecommendByID(titles []ClassifiedTitle, seedID string) ([]Neighbor, error)
	// WithK returns the same recommender searching k neighbours per query
	WithK(k int) (Recommender, error)
	K() int
}

// DatasetStore persists and restores finished runs
type DatasetStore interface {
	Save(ctx context.Context, ds *Dataset) error
	LoadLatest(ctx context.Context) (*Dataset, error)
}
