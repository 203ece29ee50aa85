package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every stage. Callers match with errors.Is.
var (
	// ErrSourceUnavailable: a source table could not be opened or read
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaMismatch: a required column is missing from a source header
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrNotFound: the seed title name matches nothing in the catalog
	ErrNotFound = errors.New("title not found")

	// ErrAmbiguousMatch: the seed title name matches more than one title
	ErrAmbiguousMatch = errors.New("ambiguous title match")

	// ErrDegenerateAggregate: a bucket has zero total votes
	ErrDegenerateAggregate = errors.New("degenerate aggregate: zero total votes")

	// ErrIncompleteFeatures: the seed title lacks a feature (unknown runtime)
	ErrIncompleteFeatures = errors.New("incomplete feature vector")
)

// AmbiguousMatchError lists the titles sharing the requested name
type AmbiguousMatchError struct {
	Name     string
	TitleIDs []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: %q matches %d titles (%s)",
		ErrAmbiguousMatch, e.Name, len(e.TitleIDs), strings.Join(e.TitleIDs, ", "))
}

// Unwrap lets errors.Is(err, ErrAmbiguousMatch) succeed
func (e *AmbiguousMatchError) Unwrap() error {
	return ErrAmbiguousMatch
}
