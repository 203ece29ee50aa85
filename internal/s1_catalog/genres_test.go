package s1_catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"Drama", []string{"Drama"}},
		{"Action,Adventure,Sci-Fi", []string{"Action", "Adventure", "Sci-Fi"}},
		{"Drama,,Comedy", []string{"Drama", "Comedy"}},
		{`\N`, nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitGenres(tt.raw))
		})
	}
}

func TestExtractGenres(t *testing.T) {
	rows := []contracts.CatalogRow{
		{ID: "tt1", Title: "A", Year: 2000, RuntimeMinutes: 100, GenresRaw: "Comedy,Drama"},
		{ID: "tt2", Title: "B", Year: 2001, RuntimeMinutes: 90, GenresRaw: "Drama"},
		{ID: "tt3", Title: "C", Year: 2002, RuntimeMinutes: 20, GenresRaw: "Short,Comedy"},
		{ID: "tt4", Title: "D", Year: 2003, RuntimeMinutes: 95, GenresRaw: "Horror"},
		{ID: "tt5", Title: "E", Year: 2004, RuntimeMinutes: 60, GenresRaw: "Adult"},
	}

	table := ExtractGenres(rows, DefaultGenreConfig().Denylist)

	t.Run("denylisted titles are removed entirely", func(t *testing.T) {
		require.Len(t, table.Titles, 3)
		assert.Equal(t, []string{"tt1", "tt2", "tt4"}, []string{table.Titles[0].ID, table.Titles[1].ID, table.Titles[2].ID})
		assert.Equal(t, []string{"Comedy", "Drama"}, table.Titles[0].Genres)
		assert.Equal(t, 2, table.Removed)
	})

	t.Run("frequencies are counted before the denylist", func(t *testing.T) {
		// Comedy counts tt3 even though tt3 is dropped; Short and Adult still appear.
		want := []contracts.Genre{
			{Name: "Comedy", Occurrences: 2},
			{Name: "Drama", Occurrences: 2},
			{Name: "Short", Occurrences: 1},
			{Name: "Horror", Occurrences: 1},
			{Name: "Adult", Occurrences: 1},
		}
		assert.Equal(t, want, table.Frequencies)
	})

	t.Run("titles keep catalog properties", func(t *testing.T) {
		deny := map[string]bool{}
		for _, g := range DefaultGenreConfig().Denylist {
			deny[g] = true
		}
		for _, title := range table.Titles {
			assert.NotEmpty(t, title.Genres)
			for _, g := range title.Genres {
				assert.False(t, deny[g], "title %s carries denylisted %s", title.ID, g)
			}
		}
	})
}

func TestApplySelectionAndAvailable(t *testing.T) {
	freqs := []contracts.Genre{
		{Name: "Drama", Occurrences: 5},
		{Name: "Short", Occurrences: 3},
		{Name: "Horror", Occurrences: 2},
	}

	selected := ApplySelection(freqs, contracts.NewGenreSelection("Horror"))
	assert.False(t, selected[0].Selected)
	assert.True(t, selected[2].Selected)
	assert.False(t, freqs[2].Selected, "input is not mutated")

	assert.Equal(t, []string{"Drama", "Horror"}, Available(freqs, DefaultGenreConfig().Denylist))
}
