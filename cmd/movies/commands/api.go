package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Miche5967/movie-analyse-recommendation/internal/api"
	"github.com/Miche5967/movie-analyse-recommendation/internal/api/handlers"
	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/scheduler"
	"github.com/Miche5967/movie-analyse-recommendation/internal/scheduler/jobs"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

The served dataset is loaded at startup (snapshot first, else a pipeline
run) and refreshed by the scheduler on REFRESH_SCHEDULE.

Endpoints:
  GET  /health                          - Health check
  GET  /metrics                         - Prometheus metrics
  GET  /api/genres                      - Genre frequency table
  GET  /api/aggregates/year-genre       - Year × genre aggregates
  GET  /api/rankings/{actors|directors} - People rankings
  GET  /api/recommendations?title=...   - Similar titles

Example:
  go run ./cmd/movies api
  go run ./cmd/movies api --port 8080 --no-refresh
  go run ./cmd/movies api --follow-snapshots`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	apiNoRefresh  bool
	apiFollowOnly bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: $PORT)")
	apiCmd.Flags().BoolVar(&apiNoRefresh, "no-refresh", false, "serve the startup dataset without scheduled refreshes")
	apiCmd.Flags().BoolVar(&apiFollowOnly, "follow-snapshots", false, "reload persisted snapshots every 10 minutes instead of running the pipeline")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Movies API Server ===")

	ctx := cmd.Context()

	// 1. Wire dependencies
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	if apiFollowOnly && a.db == nil {
		return fmt.Errorf("--follow-snapshots requires DATABASE_URL")
	}

	// 2. Load the initial dataset
	current := &brain.Current{}
	ds, err := a.dataset(ctx, false)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	current.Set(ds)

	// 3. Schedule refreshes
	if !apiNoRefresh {
		sched := scheduler.New(log)

		var refresh []scheduler.Job
		if apiFollowOnly {
			refresh = append(refresh, jobs.NewSnapshotReloadJob(a.orchestrator, current, "@every 10m", log))
		} else {
			refresh = append(refresh,
				jobs.NewDatasetRefreshJob(a.orchestrator, current, a.cfg.RefreshSchedule, a.db != nil, log),
				jobs.NewMemoCleanupJob(a.memo, log),
			)
		}
		for _, job := range refresh {
			if err := sched.AddJob(job); err != nil {
				return fmt.Errorf("schedule %s: %w", job.Name(), err)
			}
		}

		sched.Start()
		defer sched.Stop()
	}

	// 4. Create handlers
	var (
		cache   *redis.Cache
		limiter *redis.RateLimiter
	)
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, "movies")
		limiter = redis.NewRateLimiter(a.redis, "movies")
	}
	h := api.Handlers{
		Catalog:   handlers.NewCatalogHandler(current, a.pipeline.Genres.Denylist, log),
		Recommend: handlers.NewRecommendHandler(current, a.recommender, cache, log),
	}

	// 5. Create router and server
	router := api.NewRouter(h, api.RouterOptions{
		Limiter:        limiter,
		MetricsEnabled: a.cfg.MetricsEnabled,
	}, log)
	server := api.New(a.cfg, log, router)

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Printf("   Dataset %s: %s titles\n", ds.RunID, formatNumber(int64(len(ds.Titles))))
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
