package cookiegen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cookiegen/internal/corpus"
	"cookiegen/internal/creativity"
	"cookiegen/internal/evo"
	"cookiegen/internal/metrics"
	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
	"cookiegen/internal/stats"
)

const (
	defaultRunsDir    = "runs"
	defaultExportsDir = "exports"
	defaultTop        = 5
	defaultRunsLimit  = 20
)

var (
	ErrRunIDRequired = errors.New("run id is required")
	ErrNoRuns        = errors.New("no runs available")
)

type Options struct {
	RunsDir    string
	ExportsDir string
	Logger     *zap.Logger
	// CacheSize bounds the creativity report cache. Zero uses the default.
	CacheSize int
}

type Client struct {
	runsDir    string
	exportsDir string
	logger     *zap.Logger
	cacheSize  int
	now        func() time.Time
}

type RunRequest struct {
	Corpus corpus.Source
	// RunID defaults to a random UUID.
	RunID          string
	Population     int
	Generations    int
	TournamentSize int
	MutationRate   float64
	EliteFraction  float64
	Seed           int64
	// Top is the number of final recipes kept and scored for creativity.
	Top      int
	LogEvery int
	Plots    bool
	Metrics  bool
}

// DefaultRunRequest returns the stock run parameters. Rates in a RunRequest
// are used as given, so callers should start from this value.
func DefaultRunRequest(src corpus.Source) RunRequest {
	return RunRequest{
		Corpus:         src,
		Population:     evo.DefaultPopulationSize,
		Generations:    evo.DefaultGenerations,
		TournamentSize: evo.DefaultTournamentSize,
		MutationRate:   evo.DefaultMutationRate,
		EliteFraction:  evo.DefaultEliteFraction,
		Top:            defaultTop,
		LogEvery:       evo.DefaultLogEvery,
		Plots:          true,
	}
}

type RunSummary struct {
	RunID            string
	ArtifactsDir     string
	BestByGeneration []float64
	MeanByGeneration []float64
	FinalBestFitness float64
	Evaluations      int
	Best             model.Recipe
	// BestTable is Best rendered with the run's taxonomy.
	BestTable  string
	Fitness    stats.FitnessSummary
	Creativity []stats.CreativityEntry
}

type EvaluateRequest struct {
	Corpus corpus.Source
	// Candidates is loaded with the corpus taxonomy and appended to Recipes.
	Candidates corpus.Source
	Recipes    []model.Recipe
}

type EvaluationItem struct {
	Name    string
	Fitness float64
	Valid   bool
	Report  creativity.Report
}

type RunsRequest struct {
	Limit int
}

type RunItem struct {
	RunID            string
	CreatedAtUTC     string
	CorpusPath       string
	Seed             int64
	Population       int
	Generations      int
	FinalBestFitness float64
	BestCreativity   float64
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

type TopRecipesRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	if opts.CacheSize < 0 {
		return nil, errors.New("cache size must be >= 0")
	}
	runsDir := opts.RunsDir
	if runsDir == "" {
		runsDir = defaultRunsDir
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		runsDir:    runsDir,
		exportsDir: exportsDir,
		logger:     logger,
		cacheSize:  opts.CacheSize,
		now:        time.Now,
	}, nil
}

// Run loads the corpus, evolves a population, scores the best recipes for
// creativity and writes the run artifacts under the runs directory.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Population <= 0 {
		req.Population = evo.DefaultPopulationSize
	}
	if req.Top <= 0 {
		req.Top = defaultTop
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	logger := c.logger.With(zap.String("run_id", runID))

	src, err := corpus.Load(ctx, req.Corpus)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load corpus: %w", err)
	}
	idx := src.Index()
	env, err := evo.NewEnvironment(idx, src.Recipes)
	if err != nil {
		return RunSummary{}, err
	}

	recorder := metrics.NewRecorder()
	monitor, err := evo.NewPopulationMonitor(evo.MonitorConfig{
		Env:            env,
		PopulationSize: req.Population,
		Generations:    req.Generations,
		TournamentSize: req.TournamentSize,
		MutationRate:   req.MutationRate,
		EliteFraction:  req.EliteFraction,
		Seed:           req.Seed,
		Rand:           rand.New(rand.NewSource(req.Seed)),
		Logger:         logger,
		Observer:       recorder,
		LogEvery:       req.LogEvery,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := monitor.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	evaluator, err := creativity.NewEvaluator(idx, src.Recipes, creativity.Options{CacheSize: c.cacheSize})
	if err != nil {
		return RunSummary{}, err
	}
	final := result.FinalPopulation
	if len(final) > req.Top {
		final = final[:req.Top]
	}
	top := make([]stats.TopRecipe, 0, len(final))
	scored := make([]stats.CreativityEntry, 0, len(final))
	points := make([]stats.CreativityPoint, 0, len(final))
	bestCreativity := 0.0
	for i, r := range final {
		top = append(top, stats.TopRecipe{
			Rank:      i + 1,
			Fitness:   r.FitnessValue(),
			Signature: recipe.Signature(r),
			Recipe:    r,
		})
		report := evaluator.Evaluate(r)
		recorder.ObserveCreativity(report.Creativity)
		scored = append(scored, stats.CreativityEntry{Rank: i + 1, Name: r.Name, Fitness: r.FitnessValue(), Report: report})
		points = append(points, stats.CreativityPoint{Creativity: report.Creativity, Fitness: r.FitnessValue()})
		if i == 0 || report.Creativity > bestCreativity {
			bestCreativity = report.Creativity
		}
	}
	recorder.SetCreativityCache(evaluator.CacheStats())

	finalBest := 0.0
	var best model.Recipe
	if len(result.FinalPopulation) > 0 {
		best = result.FinalPopulation[0].Clone()
		finalBest = best.FitnessValue()
	}

	runDir, err := stats.WriteRunArtifacts(c.runsDir, stats.RunArtifacts{
		Config: stats.RunConfig{
			RunID:          runID,
			CorpusPath:     req.Corpus.Path,
			CorpusKind:     string(req.Corpus.Kind),
			TaxonomyPath:   req.Corpus.TaxonomyPath,
			CorpusRecipes:  len(src.Recipes),
			PopulationSize: req.Population,
			Generations:    req.Generations,
			TournamentSize: req.TournamentSize,
			MutationRate:   req.MutationRate,
			EliteFraction:  req.EliteFraction,
			EliteCount:     monitor.EliteCount(),
			Seed:           req.Seed,
			CreativityTop:  req.Top,
		},
		BestByGeneration: result.BestByGeneration,
		MeanByGeneration: result.MeanByGeneration,
		Diagnostics:      result.Diagnostics,
		MutationCounts:   result.MutationCounts,
		Evaluations:      result.Evaluations,
		FinalBestFitness: finalBest,
		TopRecipes:       top,
		Creativity:       scored,
	})
	if err != nil {
		return RunSummary{}, err
	}

	if req.Plots {
		if len(result.BestByGeneration) > 0 {
			if err := stats.PlotFitness(result.BestByGeneration, result.MeanByGeneration, filepath.Join(runDir, "fitness.png")); err != nil {
				return RunSummary{}, fmt.Errorf("plot fitness: %w", err)
			}
		}
		if len(points) > 0 {
			if err := stats.PlotCreativity(points, filepath.Join(runDir, "creativity.png")); err != nil {
				return RunSummary{}, fmt.Errorf("plot creativity: %w", err)
			}
		}
	}
	if req.Metrics {
		if err := recorder.WriteTextfile(filepath.Join(runDir, "metrics.prom")); err != nil {
			return RunSummary{}, fmt.Errorf("write metrics: %w", err)
		}
	}

	if err := stats.AppendRunIndex(c.runsDir, stats.RunIndexEntry{
		RunID:            runID,
		CorpusPath:       req.Corpus.Path,
		PopulationSize:   req.Population,
		Generations:      req.Generations,
		Seed:             req.Seed,
		EliteCount:       monitor.EliteCount(),
		FinalBestFitness: finalBest,
		BestCreativity:   bestCreativity,
		CreatedAtUTC:     c.now().UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return RunSummary{}, err
	}

	logger.Info("run artifacts written", zap.String("dir", runDir), zap.Float64("final_best", finalBest))
	return RunSummary{
		RunID:            runID,
		ArtifactsDir:     filepath.Clean(runDir),
		BestByGeneration: append([]float64(nil), result.BestByGeneration...),
		MeanByGeneration: append([]float64(nil), result.MeanByGeneration...),
		FinalBestFitness: finalBest,
		Evaluations:      result.Evaluations,
		Best:             best,
		BestTable:        stats.FormatRecipe(idx, best),
		Fitness:          stats.SummarizeFitness(result.BestByGeneration),
		Creativity:       scored,
	}, nil
}

// Evaluate scores recipes against a reference corpus without running the
// genetic algorithm.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) ([]EvaluationItem, error) {
	src, err := corpus.Load(ctx, req.Corpus)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	candidates := append([]model.Recipe(nil), req.Recipes...)
	if req.Candidates.Path != "" {
		extra, err := loadCandidates(ctx, req.Candidates, src.Taxonomy)
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
		candidates = append(candidates, extra...)
	}
	if len(candidates) == 0 {
		return nil, errors.New("no recipes to evaluate")
	}

	idx := src.Index()
	evaluator, err := creativity.NewEvaluator(idx, src.Recipes, creativity.Options{CacheSize: c.cacheSize})
	if err != nil {
		return nil, err
	}
	out := make([]EvaluationItem, 0, len(candidates))
	for _, r := range candidates {
		out = append(out, EvaluationItem{
			Name:    r.Name,
			Fitness: evo.Fitness(idx, r),
			Valid:   recipe.IsValid(idx, r),
			Report:  evaluator.Evaluate(r),
		})
	}
	return out, nil
}

// Candidate files are read with the corpus taxonomy so CSV candidates and
// the corpus agree on categories.
func loadCandidates(ctx context.Context, src corpus.Source, taxonomy map[string][]string) ([]model.Recipe, error) {
	if src.TaxonomyPath == "" && (src.Kind == corpus.KindCSV || filepath.Ext(src.Path) == ".csv") {
		c, err := corpus.LoadCSV(src.Path, taxonomy)
		if err != nil {
			return nil, err
		}
		return c.Recipes, nil
	}
	c, err := corpus.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return c.Recipes, nil
}

// CorpusSummary loads a corpus and describes it.
func (c *Client) CorpusSummary(ctx context.Context, src corpus.Source) (corpus.Summary, error) {
	loaded, err := corpus.Load(ctx, src)
	if err != nil {
		return corpus.Summary{}, fmt.Errorf("load corpus: %w", err)
	}
	return loaded.Summary(loaded.Index()), nil
}

func (c *Client) Runs(_ context.Context, req RunsRequest) ([]RunItem, error) {
	if req.Limit <= 0 {
		req.Limit = defaultRunsLimit
	}

	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return nil, err
	}
	if len(entries) > req.Limit {
		entries = entries[:req.Limit]
	}

	out := make([]RunItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunItem{
			RunID:            e.RunID,
			CreatedAtUTC:     e.CreatedAtUTC,
			CorpusPath:       e.CorpusPath,
			Seed:             e.Seed,
			Population:       e.PopulationSize,
			Generations:      e.Generations,
			FinalBestFitness: e.FinalBestFitness,
			BestCreativity:   e.BestCreativity,
		})
	}
	return out, nil
}

func (c *Client) Export(_ context.Context, req ExportRequest) (ExportSummary, error) {
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return ExportSummary{}, err
	}
	exportedDir, err := stats.ExportRunArtifacts(c.runsDir, runID, req.OutDir)
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{RunID: runID, Directory: filepath.Clean(exportedDir)}, nil
}

func (c *Client) TopRecipes(_ context.Context, req TopRecipesRequest) ([]stats.TopRecipe, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	top, ok, err := stats.ReadTopRecipes(c.runsDir, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("top recipes not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(top) > req.Limit {
		top = top[:req.Limit]
	}
	return top, nil
}

func (c *Client) resolveRunID(runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if runID != "" {
		return runID, nil
	}
	if !latest {
		return "", ErrRunIDRequired
	}
	entries, err := stats.ListRunIndex(c.runsDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrNoRuns
	}
	return entries[0].RunID, nil
}
