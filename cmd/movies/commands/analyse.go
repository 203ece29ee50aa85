package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s1_catalog"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s3_aggregate"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
)

// analyseCmd represents the analyse command
var analyseCmd = &cobra.Command{
	Use:   "analyse",
	Short: "Print the analysis views of the dataset",
	Long: `Prints the genre table, the year×genre aggregates and the people rankings.

The latest snapshot is used when a database is configured; otherwise (or
with --fresh) the pipeline runs first.

Subcommands:
  genres      - genre frequencies and selectable genres
  year-genre  - vote-weighted rating per (year, genre)
  actors      - top actors by votes
  directors   - top directors by votes

Example:
  go run ./cmd/movies analyse genres
  go run ./cmd/movies analyse year-genre --genres Drama,Horror
  go run ./cmd/movies analyse actors --top 20 --by-rating`,
}

var (
	analyseGenresCmd = &cobra.Command{
		Use:   "genres",
		Short: "Genre frequency table",
		RunE:  runAnalyseGenres,
	}

	analyseYearGenreCmd = &cobra.Command{
		Use:   "year-genre",
		Short: "Vote-weighted rating per (year, genre)",
		RunE:  runAnalyseYearGenre,
	}

	analyseActorsCmd = &cobra.Command{
		Use:   "actors",
		Short: "Top actors by votes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysePeople(cmd, "actors")
		},
	}

	analyseDirectorsCmd = &cobra.Command{
		Use:   "directors",
		Short: "Top directors by votes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalysePeople(cmd, "directors")
		},
	}

	// Flags
	analyseFresh    bool
	analyseGenres   []string
	analyseTop      int
	analyseByRating bool
)

func init() {
	rootCmd.AddCommand(analyseCmd)
	analyseCmd.AddCommand(analyseGenresCmd)
	analyseCmd.AddCommand(analyseYearGenreCmd)
	analyseCmd.AddCommand(analyseActorsCmd)
	analyseCmd.AddCommand(analyseDirectorsCmd)

	analyseCmd.PersistentFlags().BoolVar(&analyseFresh, "fresh", false, "run the pipeline instead of reading the snapshot")
	analyseYearGenreCmd.Flags().StringSliceVar(&analyseGenres, "genres", nil, "genres to aggregate (default: selected genres)")
	for _, c := range []*cobra.Command{analyseActorsCmd, analyseDirectorsCmd} {
		c.Flags().IntVar(&analyseTop, "top", 10, "number of people to list")
		c.Flags().BoolVar(&analyseByRating, "by-rating", false, "re-order the top list by weighted rating")
	}
}

func loadDataset(cmd *cobra.Command) (*app, *contracts.Dataset, error) {
	a, err := newApp(cmd.Context())
	if err != nil {
		return nil, nil, err
	}

	ds, err := a.dataset(cmd.Context(), analyseFresh)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("load dataset: %w", err)
	}
	return a, ds, nil
}

func runAnalyseGenres(cmd *cobra.Command, args []string) error {
	a, ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader("Genres", map[string]string{"Run ID": ds.RunID}, []string{"Run ID"})

	widths := []int{16, 12, 8}
	PrintTableHeader([]string{"Genre", "Titles", "Selected"}, widths)
	for _, g := range ds.Genres {
		selected := ""
		if g.Selected {
			selected = "✓"
		}
		PrintTableRow([]string{g.Name, formatNumber(int64(g.Occurrences)), selected}, widths)
	}

	fmt.Println()
	fmt.Printf("Available: %s\n", strings.Join(s1_catalog.Available(ds.Genres, a.pipeline.Genres.Denylist), ", "))
	return nil
}

func runAnalyseYearGenre(cmd *cobra.Command, args []string) error {
	a, ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	buckets := ds.Aggregates.YearGenre
	if len(analyseGenres) > 0 {
		titles := make([]contracts.Title, len(ds.Titles))
		ratings := make(map[string]contracts.Rating, len(ds.Titles))
		for i, t := range ds.Titles {
			titles[i] = t.Title
			ratings[t.ID] = contracts.Rating{TitleID: t.ID, AverageRating: t.AverageRating, NumVotes: t.NumVotes}
		}
		buckets = s3_aggregate.YearGenre(titles, ratings, contracts.NewGenreSelection(analyseGenres...)).Buckets
	}

	PrintHeader("Year × Genre", map[string]string{"Run ID": ds.RunID}, []string{"Run ID"})

	widths := []int{6, 14, 8, 14, 8, 10}
	PrintTableHeader([]string{"Year", "Genre", "Rating", "Votes", "Titles", "Runtime"}, widths)
	for _, b := range buckets {
		runtime := "-"
		if m, ok := b.Means[s3_aggregate.MeanRuntime]; ok {
			runtime = fmt.Sprintf("%.0f min", m)
		}
		PrintTableRow([]string{
			b.Key[0],
			b.Key[1],
			fmt.Sprintf("%.2f", b.WeightedRating),
			formatNumber(b.TotalVotes),
			formatNumber(int64(b.Count)),
			runtime,
		}, widths)
	}
	return nil
}

func runAnalysePeople(cmd *cobra.Command, role string) error {
	a, ds, err := loadDataset(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	buckets := ds.Aggregates.Actors
	if role == "directors" {
		buckets = ds.Aggregates.Directors
	}
	people := selection.TopN(buckets, analyseTop, analyseByRating)

	PrintHeader("Top "+role, map[string]string{
		"Run ID":   ds.RunID,
		"Order":    orderLabel(analyseByRating),
		"Homonyms": "merged by name",
	}, []string{"Run ID", "Order", "Homonyms"})

	widths := []int{5, 28, 14, 8, 8}
	PrintTableHeader([]string{"Rank", "Name", "Votes", "Rating", "Titles"}, widths)
	for _, p := range people {
		name := p.Name
		if len(p.PersonIDs) > 1 {
			name = fmt.Sprintf("%s (%d)", p.Name, len(p.PersonIDs))
		}
		PrintTableRow([]string{
			fmt.Sprintf("%d", p.Rank),
			name,
			formatNumber(p.TotalVotes),
			fmt.Sprintf("%.2f", p.WeightedRating),
			formatNumber(int64(p.Count)),
		}, widths)
	}
	return nil
}

func orderLabel(byRating bool) string {
	if byRating {
		return "top by votes, then by rating"
	}
	return "by votes"
}
