package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/Miche5967/movie-analyse-recommendation/internal/brain"
	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/memo"
	"github.com/Miche5967/movie-analyse-recommendation/internal/pipelineconfig"
	"github.com/Miche5967/movie-analyse-recommendation/internal/recommend"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/config"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/database"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/httputil"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/redis"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg      *config.Config
	pipeline *pipelineconfig.Config
	log      *logger.Logger

	db    *database.DB  // nil without DATABASE_URL
	redis *redis.Client // disabled unless REDIS_ENABLED
	memo  *memo.Memo

	sources      map[string]s0_data.Source
	loader       *s0_data.Loader
	orchestrator *brain.Orchestrator
	recommender  *recommend.Recommender
}

// newApp loads the configuration and wires the pipeline.
// The database is connected and migrated only when configured.
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlagOverrides(cfg)

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load pipeline config
	path := cfg.PipelineConfigPath
	if pipelineFile != "" {
		path = pipelineFile
	}
	pipeline, err := pipelineconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load pipeline config: %w", err)
	}

	a := &app{cfg: cfg, pipeline: pipeline, log: log}

	// 4. Connect to Redis (disabled client when not configured)
	a.redis, err = redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Connect to database
	var store contracts.DatasetStore
	if cfg.Database.Enabled() {
		a.db, err = database.New(cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if _, err := a.db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		store = brain.NewSnapshotStore(a.db.Pool, selection.NewRanker(pipeline.Classifier, log), log)
		log.Info("Connected to database")
	}

	// 6. Stage memo (L1 in process, L2 in Redis)
	var l2 *redis.Cache
	if a.redis.Enabled() {
		l2 = redis.NewCache(a.redis, "movies")
	}
	a.memo, err = memo.New(pipeline.Cache.LRUSize, l2, pipeline.Cache.TTL, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create memo: %w", err)
	}

	// 7. Sources and loader
	a.sources = s0_data.Resolve(cfg.Data.Dir, cfg.Data.BaseURL, pipeline.Sources.Files())
	a.loader = s0_data.NewLoader(pipeline.Loader, httputil.New(cfg, log), log)

	// 8. Orchestrator and recommender
	a.orchestrator, err = brain.NewOrchestrator(pipeline, a.loader, a.sources, a.memo, store, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}
	a.recommender = recommend.New(pipeline.Recommender, log)

	return a, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if dataDir != "" {
		cfg.Data.Dir = dataDir
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
}

// Close releases the database and Redis connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// dataset returns the latest snapshot when one exists, else runs the pipeline
func (a *app) dataset(ctx context.Context, fresh bool) (*contracts.Dataset, error) {
	if !fresh && a.db != nil {
		result, err := a.orchestrator.Run(ctx, brain.RunConfig{FromSnapshot: true})
		if err == nil {
			return result.Dataset, nil
		}
		if !errors.Is(err, contracts.ErrNotFound) {
			return nil, err
		}
		a.log.Info("No snapshot yet, running the pipeline")
	}

	result, err := a.orchestrator.Run(ctx, brain.RunConfig{Persist: a.db != nil})
	if err != nil {
		return nil, err
	}
	return result.Dataset, nil
}
