package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the batch pipeline",
	Long: `Runs the batch pipeline S0 → S7.

Stages:
- S0: source tables (reachable, required columns present)
- S1: French-region movie catalog
- S2: genre extraction and denylist
- S3: ratings join
- S4: acting and directing credits
- S5: vote-weighted aggregates
- S6: people ranking
- S7: recommendation rules

Unchanged stages are served from the memo.

Example:
  go run ./cmd/movies run
  go run ./cmd/movies run --genres Drama,Comedy
  go run ./cmd/movies run --persist`,
	RunE: runPipeline,
}

var (
	runGenres  []string
	runPersist bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringSliceVar(&runGenres, "genres", nil, "genres analysed by the year×genre view (default: pipeline config)")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "save the dataset snapshot (requires DATABASE_URL)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if runPersist && a.db == nil {
		return fmt.Errorf("--persist requires DATABASE_URL")
	}

	runConfig := brain.RunConfig{
		RunID:     brain.GenerateRunID(),
		Selection: contracts.NewGenreSelection(runGenres...),
		Persist:   runPersist,
	}

	PrintHeader("Pipeline Run", map[string]string{
		"Run ID":  runConfig.RunID,
		"Config":  a.orchestrator.ConfigHash()[:12],
		"Data":    a.cfg.Data.Dir,
		"Persist": fmt.Sprintf("%v", runPersist),
	}, []string{"Run ID", "Config", "Data", "Persist"})

	result, err := a.orchestrator.Run(ctx, runConfig)
	if result != nil {
		printRunResult(result)
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	return nil
}

func printRunResult(result *brain.RunResult) {
	fmt.Println()
	if result.Success {
		PrintSuccess("Pipeline Run Completed")
	} else {
		PrintError("Pipeline Run Failed")
	}
	fmt.Println()

	// Summary
	PrintKeyValue("Run ID", result.RunID, 10)
	PrintKeyValue("Duration", fmt.Sprintf("%.2fs", result.Duration.Seconds()), 10)
	PrintKeyValue("Memoized", fmt.Sprintf("%d/%d stages", result.Memoized(), len(result.Stages)), 10)
	fmt.Println()

	// Stages
	widths := []int{4, 22, 10, 10, 8, 8}
	PrintTableHeader([]string{"", "Stage", "Input", "Output", "Time", "Memo"}, widths)
	for _, s := range result.Stages {
		mark := "✅"
		if !s.Success {
			mark = "❌"
		}
		memo := ""
		if s.Memoized {
			memo = "hit"
		}
		PrintTableRow([]string{
			mark,
			fmt.Sprintf("%s %s", s.Stage.ShortName(), s.Stage.Description()),
			formatNumber(int64(s.InputCount)),
			formatNumber(int64(s.OutputCount)),
			fmt.Sprintf("%dms", s.Duration),
			memo,
		}, widths)
	}
	fmt.Println()

	if result.SourceReport != nil && !result.SourceReport.Passed() {
		for _, s := range result.SourceReport.Sources {
			if !s.OK() {
				PrintError(fmt.Sprintf("%s: %s", s.Name, sourceProblem(s)))
			}
		}
	}

	if ds := result.Dataset; ds != nil {
		fmt.Printf("Titles: %s (%s recommended)\n",
			formatNumber(int64(len(ds.Titles))), formatNumber(int64(ds.RecommendedCount())))
		fmt.Printf("Aggregates: %d year×genre, %d actors, %d directors\n",
			len(ds.Aggregates.YearGenre), len(ds.Aggregates.Actors), len(ds.Aggregates.Directors))
		if ds.Aggregates.Degenerate > 0 {
			PrintWarning(fmt.Sprintf("%d zero-vote buckets excluded", ds.Aggregates.Degenerate))
		}
	}

	if result.Error != nil {
		PrintError(result.Error.Error())
	}
}

func sourceProblem(s contracts.SourceStatus) string {
	if !s.Reachable {
		return "unreachable (" + s.Error + ")"
	}
	return "missing columns " + strings.Join(s.MissingColumns, ", ")
}
