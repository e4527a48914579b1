package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookiegen/internal/evo"
)

func TestRecorderTracksRunEvents(t *testing.T) {
	r := NewRecorder()
	r.ObserveEvaluation(12)
	r.ObserveEvaluation(0)
	r.ObserveMutation(evo.CategorySwap, true)
	r.ObserveMutation(evo.CategorySwap, false)
	r.ObserveMutation(evo.CategorySwap, true)
	r.ObserveGeneration(evo.GenerationDiagnostics{Generation: 4, BestFitness: 33, MeanFitness: 20, ValidCount: 9, DistinctGenomes: 7})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.EvaluationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.MutationsTotal.WithLabelValues("category_swap", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.MutationsTotal.WithLabelValues("category_swap", "false")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.Generation))
	assert.Equal(t, 33.0, testutil.ToFloat64(r.BestFitness))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.DistinctGenomes))
}

func TestRecorderRegistriesAreIndependent(t *testing.T) {
	a := NewRecorder()
	b := NewRecorder()
	a.ObserveEvaluation(1)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EvaluationsTotal))

	count, err := testutil.GatherAndCount(a.Registry(), "cookiegen_fitness_evaluations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveCreativity(0.8)
	r.SetCreativityCache(3, 5)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `cookiegen_creativity_cache_lookups{result="miss"} 5`), text)
	assert.True(t, strings.Contains(text, "cookiegen_creativity_score_count 1"), text)
}
