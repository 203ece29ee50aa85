package contracts

import "sort"

// NoData is the IMDb export's "no value" sentinel
const NoData = `\N`

// CatalogRow is one joined (alias, attributes) row passed from S1 to S2
// ⭐ SSOT: S1 → S2 catalog row
type CatalogRow struct {
	ID             string `json:"id"`
	Title          string `json:"title"`           // localized title from the region alias
	Year           int    `json:"year"`            // release year, >= catalog cutoff
	RuntimeMinutes int    `json:"runtime_minutes"` // 0 = unknown
	GenresRaw      string `json:"genres_raw"`      // comma-delimited, never NoData
}

// Catalog is the S1 output
type Catalog struct {
	Rows           []CatalogRow `json:"rows"`
	AliasCount     int          `json:"alias_count"`
	AttributeCount int          `json:"attribute_count"`
}

// Title is a catalog movie with its genre list
// ⭐ SSOT: S2 → S3 title
type Title struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Year           int      `json:"year"`
	RuntimeMinutes int      `json:"runtime_minutes"` // 0 = unknown
	Genres         []string `json:"genres"`          // order preserved, never empty
}

// HasRuntime reports whether the runtime is known
func (t *Title) HasRuntime() bool {
	return t.RuntimeMinutes > 0
}

// HasGenre reports whether the title carries genre g
func (t *Title) HasGenre(g string) bool {
	for _, tag := range t.Genres {
		if tag == g {
			return true
		}
	}
	return false
}

// Genre is one row of the genre frequency table
type Genre struct {
	Name        string `json:"name"`
	Occurrences int    `json:"occurrences"`
	Selected    bool   `json:"selected"`
}

// GenreTable is the S2 output
type GenreTable struct {
	Titles      []Title `json:"titles"`
	Frequencies []Genre `json:"frequencies"` // counted before the denylist filter
	Removed     int     `json:"removed"`     // titles dropped by the denylist
}

// GenreSelection is the set of genres analysed by the year×genre view.
// It is passed explicitly to every call that needs it.
type GenreSelection struct {
	names []string
	set   map[string]struct{}
}

// NewGenreSelection builds a selection; duplicates are ignored
func NewGenreSelection(names ...string) GenreSelection {
	s := GenreSelection{set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, ok := s.set[n]; ok || n == "" {
			continue
		}
		s.set[n] = struct{}{}
		s.names = append(s.names, n)
	}
	return s
}

// Contains reports whether name is selected
func (s GenreSelection) Contains(name string) bool {
	_, ok := s.set[name]
	return ok
}

// Len returns the number of selected genres
func (s GenreSelection) Len() int {
	return len(s.names)
}

// Names returns the selected genres sorted by name
func (s GenreSelection) Names() []string {
	out := append([]string(nil), s.names...)
	sort.Strings(out)
	return out
}
