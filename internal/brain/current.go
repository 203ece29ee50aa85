package brain

import (
	"sync/atomic"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// Current holds the dataset served to queries; a refresh swaps it whole.
// Safe for concurrent use.
type Current struct {
	ds atomic.Pointer[contracts.Dataset]
}

// Dataset returns the served dataset, nil before the first load
func (c *Current) Dataset() *contracts.Dataset {
	return c.ds.Load()
}

// Set replaces the served dataset
func (c *Current) Set(ds *contracts.Dataset) {
	c.ds.Store(ds)
}
