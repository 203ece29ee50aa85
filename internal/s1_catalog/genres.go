package s1_catalog

import (
	"sort"
	"strings"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// GenreConfig holds the genre denylist and the default analysis selection
type GenreConfig struct {
	Denylist []string `yaml:"denylist" json:"denylist"`
	Selected []string `yaml:"selected" json:"selected"`
}

// DefaultGenreConfig returns the stock denylist and the pre-selected genres
func DefaultGenreConfig() GenreConfig {
	return GenreConfig{
		Denylist: []string{"Adult", "News", "Reality-TV", "Talk-Show", "Short", "Game-Show"},
		Selected: []string{"Drama", "Comedy", "Action", "Thriller", "Crime", "Romance", "Adventure", "Horror"},
	}
}

// SplitGenres splits a comma-delimited genre field, dropping empty tags
func SplitGenres(raw string) []string {
	if raw == "" || raw == contracts.NoData {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExtractGenres splits genres, counts them and removes denylisted titles.
// Frequencies are counted over every catalog row, before the denylist
// removes anything.
// ⭐ SSOT: S2 → S3 titles with genres
func ExtractGenres(rows []contracts.CatalogRow, denylist []string) *contracts.GenreTable {
	deny := make(map[string]struct{}, len(denylist))
	for _, g := range denylist {
		deny[g] = struct{}{}
	}

	counts := make(map[string]int)
	var order []string

	table := &contracts.GenreTable{Titles: make([]contracts.Title, 0, len(rows))}
	for _, row := range rows {
		genres := SplitGenres(row.GenresRaw)
		if len(genres) == 0 {
			continue
		}

		denied := false
		for _, g := range genres {
			if _, ok := counts[g]; !ok {
				order = append(order, g)
			}
			counts[g]++
			if _, ok := deny[g]; ok {
				denied = true
			}
		}

		if denied {
			table.Removed++
			continue
		}

		table.Titles = append(table.Titles, contracts.Title{
			ID:             row.ID,
			Title:          row.Title,
			Year:           row.Year,
			RuntimeMinutes: row.RuntimeMinutes,
			Genres:         genres,
		})
	}

	table.Frequencies = make([]contracts.Genre, 0, len(order))
	for _, g := range order {
		table.Frequencies = append(table.Frequencies, contracts.Genre{Name: g, Occurrences: counts[g]})
	}
	sort.SliceStable(table.Frequencies, func(i, j int) bool {
		return table.Frequencies[i].Occurrences > table.Frequencies[j].Occurrences
	})

	return table
}

// ApplySelection returns a copy of freqs with Selected set from sel
func ApplySelection(freqs []contracts.Genre, sel contracts.GenreSelection) []contracts.Genre {
	out := make([]contracts.Genre, len(freqs))
	for i, g := range freqs {
		g.Selected = sel.Contains(g.Name)
		out[i] = g
	}
	return out
}

// Available returns genre names in frequency order, minus the denylist.
// These are the choices offered for a selection.
func Available(freqs []contracts.Genre, denylist []string) []string {
	deny := make(map[string]struct{}, len(denylist))
	for _, g := range denylist {
		deny[g] = struct{}{}
	}

	names := make([]string, 0, len(freqs))
	for _, g := range freqs {
		if _, ok := deny[g.Name]; !ok {
			names = append(names, g.Name)
		}
	}
	return names
}
