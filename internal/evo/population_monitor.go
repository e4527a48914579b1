package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

const (
	DefaultPopulationSize = 100
	DefaultGenerations    = 200
	DefaultMutationRate   = 0.5
	DefaultEliteFraction  = 0.1
	DefaultLogEvery       = 20
)

type GenerationDiagnostics struct {
	Generation       int     `json:"generation"`
	BestFitness      float64 `json:"best_fitness"`
	MeanFitness      float64 `json:"mean_fitness"`
	MinFitness       float64 `json:"min_fitness"`
	ValidCount       int     `json:"valid_count"`
	DistinctGenomes  int     `json:"distinct_genomes"`
	MutationsApplied int     `json:"mutations_applied"`
}

type RunResult struct {
	FinalPopulation  model.Population
	BestByGeneration []float64
	MeanByGeneration []float64
	Diagnostics      []GenerationDiagnostics
	MutationCounts   map[string]int
	Evaluations      int
}

// Observer receives run events. Implementations must not mutate the values
// passed to them.
type Observer interface {
	ObserveEvaluation(fitness float64)
	ObserveMutation(kind MutationKind, applied bool)
	ObserveGeneration(diag GenerationDiagnostics)
}

type NoopObserver struct{}

func (NoopObserver) ObserveEvaluation(float64) {}

func (NoopObserver) ObserveMutation(MutationKind, bool) {}

func (NoopObserver) ObserveGeneration(GenerationDiagnostics) {}

type MonitorConfig struct {
	Env            *Environment
	Selector       Selector
	Fitness        FitnessFunc
	PopulationSize int
	Generations    int
	TournamentSize int
	MutationRate   float64
	EliteFraction  float64
	Seed           int64
	Rand           Rand
	Logger         *zap.Logger
	Observer       Observer
	LogEvery       int
}

// DefaultMonitorConfig returns the stock run parameters for env.
func DefaultMonitorConfig(env *Environment) MonitorConfig {
	return MonitorConfig{
		Env:            env,
		PopulationSize: DefaultPopulationSize,
		Generations:    DefaultGenerations,
		TournamentSize: DefaultTournamentSize,
		MutationRate:   DefaultMutationRate,
		EliteFraction:  DefaultEliteFraction,
		LogEvery:       DefaultLogEvery,
	}
}

// PopulationMonitor owns the population for the duration of a run.
type PopulationMonitor struct {
	cfg       MonitorConfig
	rng       Rand
	crossover Crossover
	mutator   Mutator
	logger    *zap.Logger

	evaluations    int
	mutationCounts map[string]int
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Env == nil {
		return nil, fmt.Errorf("environment is required")
	}
	if len(cfg.Env.Corpus()) == 0 {
		return nil, ErrEmptyCorpus
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Generations < 0 {
		return nil, fmt.Errorf("generations must be >= 0")
	}
	if cfg.MutationRate < 0 || cfg.MutationRate > 1 {
		return nil, fmt.Errorf("mutation rate must be in [0, 1]")
	}
	if cfg.EliteFraction < 0 || cfg.EliteFraction > 1 {
		return nil, fmt.Errorf("elite fraction must be in [0, 1]")
	}
	if cfg.TournamentSize <= 0 {
		cfg.TournamentSize = DefaultTournamentSize
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector{Size: cfg.TournamentSize}
	}
	if cfg.Fitness == nil {
		cfg.Fitness = Fitness
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = DefaultLogEvery
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	return &PopulationMonitor{
		cfg:            cfg,
		rng:            rng,
		crossover:      Crossover{Env: cfg.Env, Namer: NewNamer()},
		mutator:        Mutator{Env: cfg.Env},
		logger:         cfg.Logger,
		mutationCounts: make(map[string]int, len(MutationKinds)),
	}, nil
}

// EliteCount is the number of members carried unchanged into each generation.
func (m *PopulationMonitor) EliteCount() int {
	count := int(math.Floor(float64(m.cfg.PopulationSize)*m.cfg.EliteFraction + 1e-9))
	if count > m.cfg.PopulationSize {
		count = m.cfg.PopulationSize
	}
	return count
}

// Run evolves a fresh population for the configured number of generations.
// Cancellation is only observed between generations; the partial result is
// returned alongside the context error.
func (m *PopulationMonitor) Run(ctx context.Context) (RunResult, error) {
	population := m.InitialPopulation()

	best := make([]float64, 0, m.cfg.Generations)
	mean := make([]float64, 0, m.cfg.Generations)
	diagnostics := make([]GenerationDiagnostics, 0, m.cfg.Generations)

	m.logger.Info("evolution started",
		zap.Int("population", m.cfg.PopulationSize),
		zap.Int("generations", m.cfg.Generations),
		zap.Int("elite", m.EliteCount()),
		zap.Float64("initial_best", population[0].FitnessValue()),
	)

	result := func() RunResult {
		return RunResult{
			FinalPopulation:  population,
			BestByGeneration: best,
			MeanByGeneration: mean,
			Diagnostics:      diagnostics,
			MutationCounts:   m.copyMutationCounts(),
			Evaluations:      m.evaluations,
		}
	}

	for gen := 0; gen < m.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			m.logger.Warn("evolution aborted", zap.Int("generation", gen), zap.Error(err))
			return result(), err
		}

		next, diag, err := m.NextGeneration(population)
		if err != nil {
			return result(), err
		}
		population = next
		diag.Generation = gen + 1
		best = append(best, diag.BestFitness)
		mean = append(mean, diag.MeanFitness)
		diagnostics = append(diagnostics, diag)
		m.cfg.Observer.ObserveGeneration(diag)

		if gen%m.cfg.LogEvery == 0 {
			m.logger.Info("generation",
				zap.Int("generation", gen),
				zap.Float64("best_fitness", diag.BestFitness),
				zap.Float64("mean_fitness", diag.MeanFitness),
			)
		} else {
			m.logger.Debug("generation",
				zap.Int("generation", gen),
				zap.Float64("best_fitness", diag.BestFitness),
				zap.Float64("mean_fitness", diag.MeanFitness),
			)
		}
	}

	m.logger.Info("evolution finished",
		zap.Float64("final_best", population[0].FitnessValue()),
		zap.Int("evaluations", m.evaluations),
	)
	return result(), nil
}

// InitialPopulation samples the corpus with replacement, scores each copy
// and sorts by descending fitness.
func (m *PopulationMonitor) InitialPopulation() model.Population {
	corpus := m.cfg.Env.Corpus()
	population := make(model.Population, m.cfg.PopulationSize)
	for i := range population {
		population[i] = corpus[m.rng.Intn(len(corpus))].Clone()
		m.evaluate(&population[i])
	}
	sortByFitness(population)
	return population
}

// NextGeneration breeds PopulationSize offspring from population and applies
// elitist replacement. The input population is not modified.
func (m *PopulationMonitor) NextGeneration(population model.Population) (model.Population, GenerationDiagnostics, error) {
	offspring := make(model.Population, 0, m.cfg.PopulationSize)
	applied := 0
	for len(offspring) < m.cfg.PopulationSize {
		a, err := m.cfg.Selector.PickParent(m.rng, population)
		if err != nil {
			return nil, GenerationDiagnostics{}, err
		}
		b, err := m.cfg.Selector.PickParent(m.rng, population)
		if err != nil {
			return nil, GenerationDiagnostics{}, err
		}

		child := m.crossover.Apply(m.rng, a, b)
		if m.rng.Float64() < m.cfg.MutationRate {
			kind, ok := m.mutator.Mutate(m.rng, &child)
			m.cfg.Observer.ObserveMutation(kind, ok)
			if ok {
				applied++
				m.mutationCounts[kind.String()]++
			}
		}
		recipe.Normalize(&child)
		m.evaluate(&child)
		offspring = append(offspring, child)
	}

	current := make(model.Population, len(population))
	copy(current, population)
	sortByFitness(current)

	elite := m.EliteCount()
	if elite > len(current) {
		elite = len(current)
	}
	next := make(model.Population, 0, m.cfg.PopulationSize)
	next = append(next, current[:elite]...)
	next = append(next, offspring[:m.cfg.PopulationSize-elite]...)
	sortByFitness(next)

	diag := m.summarize(next)
	diag.MutationsApplied = applied
	return next, diag, nil
}

func (m *PopulationMonitor) evaluate(r *model.Recipe) {
	fitness := m.cfg.Fitness(m.cfg.Env.Index(), *r)
	r.SetFitness(fitness)
	m.evaluations++
	m.cfg.Observer.ObserveEvaluation(fitness)
}

func (m *PopulationMonitor) summarize(population model.Population) GenerationDiagnostics {
	if len(population) == 0 {
		return GenerationDiagnostics{}
	}
	idx := m.cfg.Env.Index()
	total := 0.0
	minFitness := population[0].FitnessValue()
	valid := 0
	signatures := make(map[string]struct{}, len(population))
	for _, r := range population {
		f := r.FitnessValue()
		total += f
		if f < minFitness {
			minFitness = f
		}
		if recipe.IsValid(idx, r) {
			valid++
		}
		signatures[recipe.Signature(r)] = struct{}{}
	}
	return GenerationDiagnostics{
		BestFitness:     population[0].FitnessValue(),
		MeanFitness:     total / float64(len(population)),
		MinFitness:      minFitness,
		ValidCount:      valid,
		DistinctGenomes: len(signatures),
	}
}

func (m *PopulationMonitor) copyMutationCounts() map[string]int {
	out := make(map[string]int, len(m.mutationCounts))
	for k, v := range m.mutationCounts {
		out[k] = v
	}
	return out
}

func sortByFitness(population model.Population) {
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].FitnessValue() > population[j].FitnessValue()
	})
}
