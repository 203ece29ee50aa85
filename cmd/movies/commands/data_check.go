package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
)

// dataCheckCmd represents the data check command
var dataCheckCmd = &cobra.Command{
	Use:   "data-check",
	Short: "Check source tables and stored snapshots",
	Long: `Checks that every IMDb export is reachable and carries the columns the
pipeline reads, then lists the stored snapshots when a database is set.

Sources:
- aliases     (title.akas)       titleId, title, region
- attributes  (title.basics)     tconst, titleType, startYear, runtimeMinutes, genres
- ratings     (title.ratings)    tconst, averageRating, numVotes
- principals  (title.principals) tconst, nconst, category
- persons     (name.basics)      nconst, primaryName

Example:
  go run ./cmd/movies data-check
  go run ./cmd/movies data-check --data-dir ./data`,
	RunE: runDataCheck,
}

func init() {
	rootCmd.AddCommand(dataCheckCmd)
}

func runDataCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Movies Data Check ===")

	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// 1. Source tables
	fmt.Println("\n📋 Source tables")
	PrintDoubleSeparator()

	gate := s0_data.NewSourceGate(a.loader, a.sources, a.log)
	report, err := gate.Check(ctx)
	if err != nil {
		return fmt.Errorf("source check: %w", err)
	}

	for _, s := range report.Sources {
		if s.OK() {
			PrintSuccess(fmt.Sprintf("%-11s %s", s.Name, s.Location))
		} else {
			PrintError(fmt.Sprintf("%-11s %s: %s", s.Name, s.Location, sourceProblem(s)))
		}
	}
	fmt.Printf("\nCoverage: %.0f%%\n", report.Coverage()*100)

	// 2. Snapshots
	if a.db == nil {
		PrintInfo("DATABASE_URL not set, snapshots disabled")
	} else {
		fmt.Println("\n💾 Snapshots")
		PrintDoubleSeparator()
		if err := checkSnapshots(ctx, a.db.Pool); err != nil {
			return fmt.Errorf("snapshot check: %w", err)
		}
	}

	if !report.Passed() {
		return fmt.Errorf("%d of %d sources unusable", countUnusable(report.Sources), len(report.Sources))
	}
	return nil
}

func checkSnapshots(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `
		SELECT run_id::text, status, title_count, started_at, coalesce(error, '')
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT 10
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	widths := []int{36, 10, 10, 16, 30}
	PrintTableHeader([]string{"Run ID", "Status", "Titles", "Started", "Error"}, widths)

	n := 0
	for rows.Next() {
		var (
			runID, status, errText string
			titles                 int
			started                time.Time
		)
		if err := rows.Scan(&runID, &status, &titles, &started, &errText); err != nil {
			return err
		}
		PrintTableRow([]string{
			runID,
			status,
			formatNumber(int64(titles)),
			started.Format("2006-01-02 15:04"),
			strings.ReplaceAll(errText, "\n", " "),
		}, widths)
		n++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if n == 0 {
		PrintWarning("No snapshot yet: run `movies run --persist`")
	}
	return nil
}

func countUnusable(sources []contracts.SourceStatus) int {
	n := 0
	for i := range sources {
		if !sources[i].OK() {
			n++
		}
	}
	return n
}
