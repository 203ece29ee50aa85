package main

import (
	"os"

	"github.com/Miche5967/movie-analyse-recommendation/cmd/movies/commands"
)

// main is the entry point for the movies CLI
// ⭐ Unified CLI entry point: go run ./cmd/movies [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
