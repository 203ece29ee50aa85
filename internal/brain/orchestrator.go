package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Miche5967/movie-analyse-recommendation/internal/contracts"
	"github.com/Miche5967/movie-analyse-recommendation/internal/memo"
	"github.com/Miche5967/movie-analyse-recommendation/internal/pipelineconfig"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s0_data"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s1_catalog"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s2_credits"
	"github.com/Miche5967/movie-analyse-recommendation/internal/s3_aggregate"
	"github.com/Miche5967/movie-analyse-recommendation/internal/selection"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/logger"
	"github.com/Miche5967/movie-analyse-recommendation/pkg/metrics"
)

// Orchestrator coordinates the batch pipeline S0 → S7
// ⭐ SSOT: pipeline coordination lives here only
type Orchestrator struct {
	// Stage components
	sourceGate     *s0_data.SourceGate
	catalogBuilder *s1_catalog.Builder
	creditsReader  *s2_credits.Reader
	ranker         *selection.Ranker
	classifier     *selection.Classifier

	config     *pipelineconfig.Config
	configHash string
	sources    map[string]s0_data.Source

	memo  *memo.Memo
	store contracts.DatasetStore // nil disables persistence

	logger *logger.Logger
}

// RunConfig holds options for one pipeline run
type RunConfig struct {
	RunID        string                   // generated when empty
	Selection    contracts.GenreSelection // empty uses the configured selection
	Persist      bool                     // save the dataset through the store
	FromSnapshot bool                     // load the latest persisted dataset instead of computing
}

// RunResult holds the results of a pipeline run
type RunResult struct {
	RunID           string
	ConfigHash      string
	Success         bool
	Error           error
	CompletedStages []string
	Stages          []contracts.PipelineResult
	SourceReport    *contracts.SourceReport
	Catalog         *contracts.Catalog
	GenreTable      *contracts.GenreTable
	Credits         *contracts.Credits
	Dataset         *contracts.Dataset
	Duration        time.Duration
}

// Memoized returns the number of stages served from the memo
func (r *RunResult) Memoized() int {
	n := 0
	for _, s := range r.Stages {
		if s.Memoized {
			n++
		}
	}
	return n
}

// NewOrchestrator wires the stage components for cfg.
// m and store may be nil.
func NewOrchestrator(
	cfg *pipelineconfig.Config,
	loader *s0_data.Loader,
	sources map[string]s0_data.Source,
	m *memo.Memo,
	store contracts.DatasetStore,
	log *logger.Logger,
) (*Orchestrator, error) {
	hash, err := pipelineconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash pipeline config: %w", err)
	}

	for _, name := range []string{
		s0_data.SourceAliases, s0_data.SourceAttributes, s0_data.SourceRatings,
		s0_data.SourcePrincipals, s0_data.SourcePersons,
	} {
		if _, ok := sources[name]; !ok {
			return nil, fmt.Errorf("source %s is not configured", name)
		}
	}

	return &Orchestrator{
		sourceGate: s0_data.NewSourceGate(loader, sources, log),
		catalogBuilder: s1_catalog.NewBuilder(loader,
			sources[s0_data.SourceAliases], sources[s0_data.SourceAttributes], cfg.Catalog, log),
		creditsReader: s2_credits.NewReader(loader,
			sources[s0_data.SourceRatings], sources[s0_data.SourcePrincipals], sources[s0_data.SourcePersons], log),
		ranker:     selection.NewRanker(cfg.Classifier, log),
		classifier: selection.NewClassifier(cfg.Classifier, log),
		config:     cfg,
		configHash: hash,
		sources:    sources,
		memo:       m,
		store:      store,
		logger:     log.WithField("module", "orchestrator"),
	}, nil
}

// ConfigHash returns the hash of the pipeline configuration
func (o *Orchestrator) ConfigHash() string {
	return o.configHash
}

// Run executes the batch pipeline
// S0 → S1 → S2 → S3 → S4 → S5 → S6 → S7
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	if config.Selection.Len() == 0 {
		config.Selection = contracts.NewGenreSelection(o.config.Genres.Selected...)
	}

	result := &RunResult{
		RunID:           config.RunID,
		ConfigHash:      o.configHash,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}
	log := o.logger.WithRun(config.RunID)

	log.WithFields(map[string]interface{}{
		"config_hash":   o.configHash,
		"selection":     config.Selection.Names(),
		"persist":       config.Persist,
		"from_snapshot": config.FromSnapshot,
	}).Info("Starting pipeline run")

	if config.FromSnapshot {
		return o.runFromSnapshot(ctx, result, startTime)
	}

	fail := func(stage contracts.Stage, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage.ShortName(), err)
		result.Duration = time.Since(startTime)
		log.WithError(err).WithStage(stage.String()).Error("Pipeline run failed")
		return result, result.Error
	}

	// S0: Source Gate
	report, err := runStage(ctx, o, result, contracts.StageSources, "", 0,
		func() (*contracts.SourceReport, error) { return o.runS0(ctx) },
		func(r *contracts.SourceReport) int { return len(r.Sources) })
	if err != nil {
		return fail(contracts.StageSources, err)
	}
	result.SourceReport = report

	stamps, err := o.sourceStamps()
	if err != nil {
		return fail(contracts.StageSources, err)
	}

	// S1: Catalog
	fpCatalog, err := memo.Fingerprint(stamps[s0_data.SourceAliases], stamps[s0_data.SourceAttributes], o.config.Catalog)
	if err != nil {
		return fail(contracts.StageCatalog, err)
	}
	catalog, err := runStage(ctx, o, result, contracts.StageCatalog, fpCatalog, 0,
		func() (*contracts.Catalog, error) { return o.catalogBuilder.Build(ctx) },
		func(c *contracts.Catalog) int { return len(c.Rows) })
	if err != nil {
		return fail(contracts.StageCatalog, err)
	}
	result.Catalog = catalog

	// S2: Genres
	fpGenres, err := memo.Fingerprint(fpCatalog, o.config.Genres.Denylist)
	if err != nil {
		return fail(contracts.StageGenres, err)
	}
	genres, err := runStage(ctx, o, result, contracts.StageGenres, fpGenres, len(catalog.Rows),
		func() (*contracts.GenreTable, error) {
			return s1_catalog.ExtractGenres(catalog.Rows, o.config.Genres.Denylist), nil
		},
		func(g *contracts.GenreTable) int { return len(g.Titles) })
	if err != nil {
		return fail(contracts.StageGenres, err)
	}
	result.GenreTable = genres

	// S3: Ratings
	fpRatings, err := memo.Fingerprint(fpGenres, stamps[s0_data.SourceRatings])
	if err != nil {
		return fail(contracts.StageRatings, err)
	}
	rated, err := runStage(ctx, o, result, contracts.StageRatings, fpRatings, len(genres.Titles),
		func() (*ratedTitles, error) { return o.runS3(ctx, genres.Titles) },
		func(r *ratedTitles) int { return len(r.Titles) })
	if err != nil {
		return fail(contracts.StageRatings, err)
	}
	index := s2_credits.IndexRatings(rated.Ratings)

	// S4: Credits
	fpCredits, err := memo.Fingerprint(fpRatings, stamps[s0_data.SourcePrincipals], stamps[s0_data.SourcePersons])
	if err != nil {
		return fail(contracts.StageCredits, err)
	}
	credits, err := runStage(ctx, o, result, contracts.StageCredits, fpCredits, len(rated.Titles),
		func() (*contracts.Credits, error) { return o.runS4(ctx, genres.Titles, index) },
		func(c *contracts.Credits) int { return len(c.Acting) + len(c.Directing) })
	if err != nil {
		return fail(contracts.StageCredits, err)
	}
	result.Credits = credits

	// S5: Aggregates
	fpAggregates, err := memo.Fingerprint(fpCredits, config.Selection.Names())
	if err != nil {
		return fail(contracts.StageAggregates, err)
	}
	aggregates, err := runStage(ctx, o, result, contracts.StageAggregates, fpAggregates, len(credits.Acting)+len(credits.Directing),
		func() (*contracts.Aggregates, error) {
			return s3_aggregate.Build(genres.Titles, index, credits, config.Selection), nil
		},
		func(a *contracts.Aggregates) int { return len(a.YearGenre) + len(a.Actors) + len(a.Directors) })
	if err != nil {
		return fail(contracts.StageAggregates, err)
	}
	if aggregates.Degenerate > 0 {
		log.WithError(contracts.ErrDegenerateAggregate).
			WithField("buckets", aggregates.Degenerate).
			Warn("Zero-vote buckets excluded")
	}

	// S6: Ranking
	fpRanking, err := memo.Fingerprint(fpAggregates, o.config.Classifier.TopActors, o.config.Classifier.TopDirectors)
	if err != nil {
		return fail(contracts.StageRanking, err)
	}
	rankings, err := runStage(ctx, o, result, contracts.StageRanking, fpRanking, len(aggregates.Actors)+len(aggregates.Directors),
		func() (*contracts.Rankings, error) { return o.ranker.Rank(aggregates), nil },
		func(r *contracts.Rankings) int { return len(r.Actors) + len(r.Directors) })
	if err != nil {
		return fail(contracts.StageRanking, err)
	}

	// S7: Classification
	fpClassify, err := memo.Fingerprint(fpRanking, o.config.Classifier)
	if err != nil {
		return fail(contracts.StageClassify, err)
	}
	classified, err := runStage(ctx, o, result, contracts.StageClassify, fpClassify, len(rated.Titles),
		func() ([]contracts.ClassifiedTitle, error) {
			return o.classifier.Classify(rated.Titles, s2_credits.FactsByTitle(credits), rankings), nil
		},
		func(c []contracts.ClassifiedTitle) int { return len(c) })
	if err != nil {
		return fail(contracts.StageClassify, err)
	}

	result.Dataset = &contracts.Dataset{
		RunID:      config.RunID,
		ConfigHash: o.configHash,
		BuiltAt:    time.Now(),
		Titles:     classified,
		Genres:     s1_catalog.ApplySelection(genres.Frequencies, config.Selection),
		Aggregates: *aggregates,
		Rankings:   *rankings,
	}

	if config.Persist && o.store != nil {
		if err := o.store.Save(ctx, result.Dataset); err != nil {
			result.Error = fmt.Errorf("persist dataset: %w", err)
			result.Duration = time.Since(startTime)
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, "persist")
	}

	// Mark success
	result.Success = true
	result.Duration = time.Since(startTime)
	metrics.DatasetTitles.Set(float64(len(classified)))

	log.WithFields(map[string]interface{}{
		"duration":    result.Duration.Seconds(),
		"stages":      len(result.CompletedStages),
		"memoized":    result.Memoized(),
		"titles":      len(classified),
		"recommended": result.Dataset.RecommendedCount(),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// runFromSnapshot loads the latest persisted dataset in place of S0 → S7
func (o *Orchestrator) runFromSnapshot(ctx context.Context, result *RunResult, startTime time.Time) (*RunResult, error) {
	if o.store == nil {
		result.Error = errors.New("snapshot requested but no dataset store is configured")
		return result, result.Error
	}

	ds, err := o.store.LoadLatest(ctx)
	if err != nil {
		result.Error = fmt.Errorf("load snapshot: %w", err)
		result.Duration = time.Since(startTime)
		return result, result.Error
	}

	result.RunID = ds.RunID
	result.ConfigHash = ds.ConfigHash
	result.Dataset = ds
	result.CompletedStages = append(result.CompletedStages, "snapshot")
	result.Success = true
	result.Duration = time.Since(startTime)
	metrics.DatasetTitles.Set(float64(len(ds.Titles)))

	fields := map[string]interface{}{
		"run_id":   ds.RunID,
		"built_at": ds.BuiltAt,
		"titles":   len(ds.Titles),
	}
	if ds.ConfigHash != o.configHash {
		fields["config_hash"] = ds.ConfigHash
		o.logger.WithFields(fields).Warn("Snapshot was built with another pipeline config")
	} else {
		o.logger.WithFields(fields).Info("Dataset loaded from snapshot")
	}

	return result, nil
}

// runStage executes one memoized stage and records its PipelineResult
func runStage[T any](
	ctx context.Context,
	o *Orchestrator,
	result *RunResult,
	stage contracts.Stage,
	fingerprint string,
	inputCount int,
	fn func() (T, error),
	count func(T) int,
) (T, error) {
	o.logger.WithStage(stage.String()).Infof("Running %s: %s", stage.ShortName(), stage.Description())
	start := time.Now()

	var (
		out      T
		memoized bool
		err      error
	)
	if fingerprint == "" {
		out, err = fn()
	} else {
		out, memoized, err = memo.Do(ctx, o.memo, stage, fingerprint, fn)
	}
	elapsed := time.Since(start)

	pr := contracts.PipelineResult{
		Stage:      stage,
		Success:    err == nil,
		Memoized:   memoized,
		InputCount: inputCount,
		Duration:   elapsed.Milliseconds(),
	}

	outcome := "success"
	switch {
	case err != nil:
		outcome = "failure"
		pr.Error = err.Error()
	case memoized:
		outcome = "memo"
	}
	metrics.ObserveStage(stage.String(), outcome, elapsed)

	if err != nil {
		result.Stages = append(result.Stages, pr)
		return out, err
	}

	pr.OutputCount = count(out)
	result.Stages = append(result.Stages, pr)
	result.CompletedStages = append(result.CompletedStages, fmt.Sprintf("%s:%s", stage.ShortName(), stage.Description()))

	o.logger.WithStage(stage.String()).WithFields(map[string]interface{}{
		"input_count":  pr.InputCount,
		"output_count": pr.OutputCount,
		"memoized":     memoized,
		"duration":     elapsed.String(),
	}).Infof("%s completed", stage.ShortName())

	return out, nil
}

// runS0 checks every source and fails on the first unusable one
func (o *Orchestrator) runS0(ctx context.Context) (*contracts.SourceReport, error) {
	report, err := o.sourceGate.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("source check: %w", err)
	}

	for _, s := range report.Sources {
		if !s.Reachable {
			return report, fmt.Errorf("%w: %s: %s", contracts.ErrSourceUnavailable, s.Name, s.Error)
		}
		if len(s.MissingColumns) > 0 {
			return report, fmt.Errorf("%w: %s: missing columns %v", contracts.ErrSchemaMismatch, s.Name, s.MissingColumns)
		}
	}

	return report, nil
}

// ratedTitles is the S3 output: the raw ratings table and the rated catalog
type ratedTitles struct {
	Ratings []contracts.Rating     `json:"ratings"`
	Titles  []contracts.RatedTitle `json:"titles"`
}

func (o *Orchestrator) runS3(ctx context.Context, titles []contracts.Title) (*ratedTitles, error) {
	ratings, err := o.creditsReader.LoadRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	return &ratedTitles{
		Ratings: ratings,
		Titles:  s2_credits.JoinRatings(titles, s2_credits.IndexRatings(ratings)),
	}, nil
}

func (o *Orchestrator) runS4(ctx context.Context, titles []contracts.Title, index map[string]contracts.Rating) (*contracts.Credits, error) {
	scope := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		scope[t.ID] = struct{}{}
	}

	credits, err := o.creditsReader.LoadCredits(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("load credits: %w", err)
	}

	persons, err := o.creditsReader.LoadPersons(ctx, s2_credits.PersonIDs(credits))
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}

	return s2_credits.Resolve(credits, persons, index), nil
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return uuid.NewString()
}
