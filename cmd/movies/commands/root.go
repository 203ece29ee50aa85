package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	pipelineFile string
	dataDir      string
	env          string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "movies",
	Short: "IMDb movie analysis and recommendation",
	Long: `Movie analysis and recommendation over the IMDb exports.

The batch pipeline reads the five IMDb tables, keeps the French-region
movie catalog and builds vote-weighted aggregates, people rankings and a
rule-based "recommended" flag. Similar titles are then answered on demand.

Usage:
  go run ./cmd/movies [command]

Examples:
  go run ./cmd/movies data-check
  go run ./cmd/movies run --persist
  go run ./cmd/movies recommend "Le Parrain"
  go run ./cmd/movies api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&pipelineFile, "pipeline", "", "pipeline YAML (default: $PIPELINE_CONFIG or built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the IMDb exports (default: $DATA_DIR)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
