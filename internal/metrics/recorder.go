package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"cookiegen/internal/evo"
)

const namespace = "cookiegen"

// Recorder exports run progress on its own registry. It implements
// evo.Observer.
type Recorder struct {
	registry *prometheus.Registry

	EvaluationsTotal prometheus.Counter
	FitnessHistogram prometheus.Histogram
	MutationsTotal   *prometheus.CounterVec
	Generation       prometheus.Gauge
	BestFitness      prometheus.Gauge
	MeanFitness      prometheus.Gauge
	ValidRecipes     prometheus.Gauge
	DistinctGenomes  prometheus.Gauge
	CreativityCache  *prometheus.GaugeVec
	CreativityScore  prometheus.Histogram
}

var _ evo.Observer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		EvaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fitness_evaluations_total",
			Help:      "Total number of recipe fitness evaluations",
		}),
		FitnessHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fitness",
			Help:      "Distribution of evaluated recipe fitness",
			Buckets:   []float64{0, 5, 10, 15, 20, 30, 40, 50, 60},
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Mutation attempts by kind and whether they changed the recipe",
		}, []string{"kind", "applied"}),
		Generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "generation",
			Help:      "Last completed generation",
		}),
		BestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_fitness",
			Help:      "Best fitness in the current population",
		}),
		MeanFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mean_fitness",
			Help:      "Mean fitness of the current population",
		}),
		ValidRecipes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "valid_recipes",
			Help:      "Population members containing every required category",
		}),
		DistinctGenomes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distinct_recipes",
			Help:      "Distinct ingredient lists in the current population",
		}),
		CreativityCache: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "creativity_cache_lookups",
			Help:      "Creativity report cache lookups by result",
		}, []string{"result"}),
		CreativityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "creativity_score",
			Help:      "Distribution of creativity scores for reported recipes",
			Buckets:   prometheus.LinearBuckets(0, 0.25, 12),
		}),
	}
	r.registry.MustRegister(
		r.EvaluationsTotal,
		r.FitnessHistogram,
		r.MutationsTotal,
		r.Generation,
		r.BestFitness,
		r.MeanFitness,
		r.ValidRecipes,
		r.DistinctGenomes,
		r.CreativityCache,
		r.CreativityScore,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveEvaluation(fitness float64) {
	r.EvaluationsTotal.Inc()
	r.FitnessHistogram.Observe(fitness)
}

func (r *Recorder) ObserveMutation(kind evo.MutationKind, applied bool) {
	r.MutationsTotal.WithLabelValues(kind.String(), strconv.FormatBool(applied)).Inc()
}

func (r *Recorder) ObserveGeneration(diag evo.GenerationDiagnostics) {
	r.Generation.Set(float64(diag.Generation))
	r.BestFitness.Set(diag.BestFitness)
	r.MeanFitness.Set(diag.MeanFitness)
	r.ValidRecipes.Set(float64(diag.ValidCount))
	r.DistinctGenomes.Set(float64(diag.DistinctGenomes))
}

func (r *Recorder) ObserveCreativity(score float64) {
	r.CreativityScore.Observe(score)
}

func (r *Recorder) SetCreativityCache(hits, misses int) {
	r.CreativityCache.WithLabelValues("hit").Set(float64(hits))
	r.CreativityCache.WithLabelValues("miss").Set(float64(misses))
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
