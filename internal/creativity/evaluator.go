package creativity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"cookiegen/internal/category"
	"cookiegen/internal/evo"
	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

const (
	DefaultCacheSize = 256

	// Recipes at or below this typicality have their score halved.
	typicalityThreshold = 0.3
	atypicalPenalty     = 0.5
)

var ErrIndexRequired = errors.New("creativity: category index is required")

type Options struct {
	// CacheSize bounds the report memo. Zero uses DefaultCacheSize.
	CacheSize int
}

type Components struct {
	IngredientNovelty  float64 `json:"ingredient_novelty"`
	CombinationNovelty float64 `json:"combination_novelty"`
	Rating             float64 `json:"rating"`
	Balance            float64 `json:"balance"`
	Diversity          float64 `json:"diversity"`
	// Validity is diagnostic only and does not contribute to Value.
	Validity float64 `json:"validity"`
}

type Report struct {
	Creativity float64    `json:"creativity"`
	Novelty    float64    `json:"novelty"`
	Value      float64    `json:"value"`
	Typicality float64    `json:"typicality"`
	Components Components `json:"components"`
}

type pair struct {
	a, b string
}

func makePair(x, y string) pair {
	if y < x {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// Evaluator scores recipes against a fixed reference corpus. Everything
// derived from the corpus is computed once at construction. Not safe for
// concurrent use.
type Evaluator struct {
	index         *category.Index
	corpusSets    []map[string]struct{}
	corpusPairs   map[pair]struct{}
	categoryMeans map[model.Category]float64
	reports       *lru.Cache[string, Report]
	hits, misses  int
}

func NewEvaluator(idx *category.Index, corpus []model.Recipe, opts Options) (*Evaluator, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, Report](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}

	e := &Evaluator{
		index:       idx,
		corpusSets:  make([]map[string]struct{}, 0, len(corpus)),
		corpusPairs: make(map[pair]struct{}),
		reports:     cache,
	}
	sums := make(map[model.Category]float64)
	counts := make(map[model.Category]int)
	for _, r := range corpus {
		e.corpusSets = append(e.corpusSets, recipe.IngredientSet(r))
		for p := range pairsOf(r) {
			e.corpusPairs[p] = struct{}{}
		}
		for cat, amount := range recipe.CategoryAmounts(idx, r) {
			sums[cat] += amount
			counts[cat]++
		}
	}
	e.categoryMeans = make(map[model.Category]float64, len(sums))
	for cat, total := range sums {
		e.categoryMeans[cat] = total / float64(counts[cat])
	}
	return e, nil
}

// IngredientNovelty is one minus the best Jaccard similarity between the
// recipe's ingredient set and any corpus recipe.
func (e *Evaluator) IngredientNovelty(r model.Recipe) float64 {
	set := recipe.IngredientSet(r)
	best := 0.0
	for _, other := range e.corpusSets {
		if s := jaccard(set, other); s > best {
			best = s
		}
	}
	return 1 - best
}

// CombinationNovelty is the share of the recipe's ingredient pairs that never
// occur together in the corpus.
func (e *Evaluator) CombinationNovelty(r model.Recipe) float64 {
	pairs := pairsOf(r)
	if len(pairs) == 0 {
		return 0
	}
	novel := 0
	for p := range pairs {
		if _, seen := e.corpusPairs[p]; !seen {
			novel++
		}
	}
	return float64(novel) / float64(len(pairs))
}

// Typicality compares per-category amounts with the corpus averages. Only
// categories with a corpus average count; with none the result is 0.
func (e *Evaluator) Typicality(r model.Recipe) float64 {
	total := 0.0
	overlap := 0
	amounts := recipe.CategoryAmounts(e.index, r)
	for _, cat := range e.index.Categories() {
		actual, present := amounts[cat]
		expected, ok := e.categoryMeans[cat]
		if !present || !ok {
			continue
		}
		overlap++
		lo, hi := actual, expected
		if lo > hi {
			lo, hi = hi, lo
		}
		if hi > 0 {
			total += lo / hi
		}
	}
	if overlap == 0 {
		return 0
	}
	return total / float64(overlap)
}

// Value averages rating, balance and diversity.
func (e *Evaluator) Value(r model.Recipe) float64 {
	c := e.valueComponents(r)
	return (c.Rating + c.Balance + c.Diversity) / 3
}

func (e *Evaluator) valueComponents(r model.Recipe) Components {
	validity := 0.0
	if recipe.IsValid(e.index, r) {
		validity = 1
	}
	return Components{
		Rating:    evo.AverageRating(r),
		Balance:   evo.BalanceScore(e.index, r),
		Diversity: evo.DiversityBonus(len(r.Ingredients)),
		Validity:  validity,
	}
}

func (e *Evaluator) Evaluate(r model.Recipe) Report {
	key := reportKey(r)
	if report, ok := e.reports.Get(key); ok {
		e.hits++
		return report
	}
	e.misses++

	components := e.valueComponents(r)
	components.IngredientNovelty = e.IngredientNovelty(r)
	components.CombinationNovelty = e.CombinationNovelty(r)

	novelty := (components.IngredientNovelty + components.CombinationNovelty) / 2
	value := (components.Rating + components.Balance + components.Diversity) / 3
	typicality := e.Typicality(r)
	penalty := 1.0
	if typicality <= typicalityThreshold {
		penalty = atypicalPenalty
	}

	report := Report{
		Creativity: (novelty + value) * penalty / 2,
		Novelty:    novelty,
		Value:      value,
		Typicality: typicality,
		Components: components,
	}
	e.reports.Add(key, report)
	return report
}

func (e *Evaluator) EvaluateAll(recipes []model.Recipe) []Report {
	out := make([]Report, len(recipes))
	for i, r := range recipes {
		out[i] = e.Evaluate(r)
	}
	return out
}

// reportKey identifies the ingredient list exactly. Recipe names do not
// affect a report; entry order and full float precision do.
func reportKey(r model.Recipe) string {
	var b strings.Builder
	for _, ing := range r.Ingredients {
		b.WriteString(ing.Name)
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(ing.Amount, 'g', -1, 64))
		b.WriteByte('|')
		b.WriteString(string(ing.Unit))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(ing.Rating, 'g', -1, 64))
		b.WriteByte(';')
	}
	return b.String()
}

// CacheStats reports memo hits and misses since construction.
func (e *Evaluator) CacheStats() (hits, misses int) {
	return e.hits, e.misses
}

func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for name := range a {
		if _, ok := b[name]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// pairsOf collects unordered name pairs over entry positions, so a repeated
// ingredient pairs with itself.
func pairsOf(r model.Recipe) map[pair]struct{} {
	out := make(map[pair]struct{})
	for i := 0; i < len(r.Ingredients); i++ {
		for j := i + 1; j < len(r.Ingredients); j++ {
			out[makePair(r.Ingredients[i].Name, r.Ingredients[j].Name)] = struct{}{}
		}
	}
	return out
}
