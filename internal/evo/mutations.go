package evo

import (
	"fmt"
	"math"

	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

type MutationKind int

const (
	AmountJitter MutationKind = iota
	CategorySwap
	FillMissingCategory
	TrimNonEssential
	DuplicateAddin
)

// MutationKinds lists every kind in draw order.
var MutationKinds = []MutationKind{
	AmountJitter,
	CategorySwap,
	FillMissingCategory,
	TrimNonEssential,
	DuplicateAddin,
}

func (k MutationKind) String() string {
	switch k {
	case AmountJitter:
		return "amount_jitter"
	case CategorySwap:
		return "category_swap"
	case FillMissingCategory:
		return "fill_missing_category"
	case TrimNonEssential:
		return "trim_non_essential"
	case DuplicateAddin:
		return "duplicate_addin"
	default:
		return fmt.Sprintf("mutation_kind(%d)", int(k))
	}
}

const (
	jitterMin       = 0.8
	jitterMax       = 1.2
	jitterFloor     = 0.1
	trimMinimumSize = 5
)

// Mutator applies one of the five mutation kinds in place. Every kind is a
// silent no-op when it has nothing to act on.
type Mutator struct {
	Env *Environment
}

func (Mutator) Name() string {
	return "recipe_mutator"
}

// Mutate draws a kind uniformly and applies it. The bool reports whether the
// recipe changed.
func (m Mutator) Mutate(rng Rand, r *model.Recipe) (MutationKind, bool) {
	kind := MutationKinds[rng.Intn(len(MutationKinds))]
	return kind, m.Apply(kind, rng, r)
}

func (m Mutator) Apply(kind MutationKind, rng Rand, r *model.Recipe) bool {
	switch kind {
	case AmountJitter:
		return m.JitterAmount(rng, r)
	case CategorySwap:
		return m.SwapWithinCategory(rng, r)
	case FillMissingCategory:
		return m.FillMissingCategory(rng, r)
	case TrimNonEssential:
		return m.TrimNonEssential(rng, r)
	case DuplicateAddin:
		return m.DuplicateAddin(rng, r)
	default:
		return false
	}
}

// JitterAmount scales one entry by a factor in [0.8, 1.2], floored at 0.1.
func (Mutator) JitterAmount(rng Rand, r *model.Recipe) bool {
	if len(r.Ingredients) == 0 {
		return false
	}
	i := rng.Intn(len(r.Ingredients))
	factor := jitterMin + rng.Float64()*(jitterMax-jitterMin)
	r.Ingredients[i].Amount = math.Max(jitterFloor, r.Ingredients[i].Amount*factor)
	return true
}

// SwapWithinCategory replaces one entry with a corpus ingredient of the same
// category, keeping the original amount.
func (m Mutator) SwapWithinCategory(rng Rand, r *model.Recipe) bool {
	if len(r.Ingredients) == 0 {
		return false
	}
	i := rng.Intn(len(r.Ingredients))
	old := r.Ingredients[i]
	pool := m.Env.Pool(m.Env.Index().CategoryOf(old.Name))
	if len(pool) == 0 {
		return false
	}
	replacement := pool[rng.Intn(len(pool))]
	replacement.Amount = old.Amount
	r.Ingredients[i] = replacement
	return true
}

// FillMissingCategory appends a corpus ingredient from a category the recipe
// lacks.
func (m Mutator) FillMissingCategory(rng Rand, r *model.Recipe) bool {
	idx := m.Env.Index()
	present := recipe.PresentCategories(idx, r.Ingredients)
	missing := make([]model.Category, 0)
	for _, cat := range idx.Categories() {
		if _, ok := present[cat]; !ok {
			missing = append(missing, cat)
		}
	}
	if len(missing) == 0 {
		return false
	}
	pool := m.Env.Pool(missing[rng.Intn(len(missing))])
	if len(pool) == 0 {
		return false
	}
	r.Ingredients = append(r.Ingredients, pool[rng.Intn(len(pool))])
	return true
}

// TrimNonEssential removes one add-in, flavoring, liquid or other entry from
// recipes with more than five entries.
func (m Mutator) TrimNonEssential(rng Rand, r *model.Recipe) bool {
	if len(r.Ingredients) <= trimMinimumSize {
		return false
	}
	idx := m.Env.Index()
	candidates := make([]int, 0)
	for i, ing := range r.Ingredients {
		if model.IsNonEssential(idx.CategoryOf(ing.Name)) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	drop := candidates[rng.Intn(len(candidates))]
	r.Ingredients = append(r.Ingredients[:drop:drop], r.Ingredients[drop+1:]...)
	return true
}

// DuplicateAddin appends a copy of one of the recipe's add-ins.
func (m Mutator) DuplicateAddin(rng Rand, r *model.Recipe) bool {
	idx := m.Env.Index()
	addins := make([]model.Ingredient, 0)
	for _, ing := range r.Ingredients {
		if idx.CategoryOf(ing.Name) == model.CategoryAddins {
			addins = append(addins, ing)
		}
	}
	if len(addins) == 0 {
		return false
	}
	r.Ingredients = append(r.Ingredients, addins[rng.Intn(len(addins))])
	return true
}
