package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/recommend"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend [title]",
	Short: "Titles similar to a seed movie",
	Long: `Lists the titles nearest to a seed movie among those sharing its genres.

Distance is Euclidean over (year, runtime, rating, votes, recommended).
The seed is given by its localized title, or by id with --id.

Example:
  go run ./cmd/movies recommend "Le Parrain"
  go run ./cmd/movies recommend --id tt0068646
  go run ./cmd/movies recommend "Casino" --first
  go run ./cmd/movies recommend "Le Parrain" --k 200`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

var (
	recommendID          string
	recommendFirst       bool
	recommendStandardize bool
	recommendFresh       bool
	recommendK           int
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringVar(&recommendID, "id", "", "seed title id (tt...)")
	recommendCmd.Flags().BoolVar(&recommendFirst, "first", false, "use the first match when the name is ambiguous")
	recommendCmd.Flags().BoolVar(&recommendStandardize, "standardize", false, "z-score the features before measuring distance")
	recommendCmd.Flags().IntVar(&recommendK, "k", 0, "neighbours searched (default from the pipeline config)")
	recommendCmd.Flags().BoolVar(&recommendFresh, "fresh", false, "run the pipeline instead of reading the snapshot")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (recommendID == "") {
		return fmt.Errorf("give either a title or --id")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ds, err := a.dataset(cmd.Context(), recommendFresh)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	cfg := a.pipeline.Recommender
	if recommendFirst {
		cfg.Ambiguity = recommend.AmbiguityFirst
	}
	if recommendStandardize {
		cfg.Standardize = true
	}
	if cmd.Flags().Changed("k") {
		cfg.K = recommendK
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid recommender settings: %w", err)
	}
	rec := recommend.New(cfg, a.log)

	var (
		results []contracts.Neighbor
		seed    string
	)
	if recommendID != "" {
		seed = recommendID
		results, err = rec.RecommendByID(ds.Titles, recommendID)
	} else {
		seed = args[0]
		results, err = rec.Recommend(ds.Titles, seed)
	}

	var amb *contracts.AmbiguousMatchError
	if errors.As(err, &amb) {
		PrintError(fmt.Sprintf("%q matches %d titles", amb.Name, len(amb.TitleIDs)))
		fmt.Println("Pick one with --id:")
		for _, id := range amb.TitleIDs {
			if t := findTitle(ds.Titles, id); t != nil {
				PrintList([]string{fmt.Sprintf("%s  %s (%d)", id, t.Title.Title, t.Year)})
			}
		}
		return err
	}
	if err != nil {
		return err
	}

	PrintHeader("Recommendations", map[string]string{
		"Run ID": ds.RunID,
		"Seed":   seed,
		"K":      fmt.Sprintf("%d", cfg.K),
	}, []string{"Run ID", "Seed", "K"})

	if len(results) == 0 {
		PrintInfo("No similar titles found")
		return nil
	}

	widths := []int{11, 32, 6, 8, 6, 12, 4, 9}
	PrintTableHeader([]string{"ID", "Title", "Year", "Runtime", "Rating", "Votes", "Rec", "Distance"}, widths)
	for _, n := range results {
		flag := ""
		if n.Recommended {
			flag = "★"
		}
		PrintTableRow([]string{
			n.ID,
			n.Title.Title,
			fmt.Sprintf("%d", n.Year),
			formatRuntime(n.RuntimeMinutes),
			fmt.Sprintf("%.1f", n.AverageRating),
			formatNumber(n.NumVotes),
			flag,
			fmt.Sprintf("%.2f", n.Distance),
		}, widths)
	}

	return nil
}

func findTitle(titles []contracts.ClassifiedTitle, id string) *contracts.ClassifiedTitle {
	for i := range titles {
		if titles[i].ID == id {
			return &titles[i]
		}
	}
	return nil
}
