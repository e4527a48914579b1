package evo

import (
	"errors"
	"fmt"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
)

var (
	ErrIndexRequired  = errors.New("category index is required")
	ErrEmptyCorpus    = errors.New("reference corpus is empty")
	ErrEmptySelection = errors.New("cannot select from an empty population")
)

// Rand is the random source consumed by every operator. *rand.Rand
// satisfies it; tests inject fixed sources.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Environment bundles the read-only state shared by every operator: the
// category index and the reference corpus, plus per-category candidate
// pools derived from them.
type Environment struct {
	index  *category.Index
	corpus []model.Recipe
	pools  map[model.Category][]model.Ingredient
}

// NewEnvironment deep-copies the corpus so later changes by the caller cannot
// leak into a run.
func NewEnvironment(idx *category.Index, corpus []model.Recipe) (*Environment, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	env := &Environment{
		index:  idx,
		corpus: make([]model.Recipe, len(corpus)),
		pools:  make(map[model.Category][]model.Ingredient),
	}
	for i, r := range corpus {
		env.corpus[i] = r.Clone()
		env.corpus[i].Fitness = nil
		for _, ing := range r.Ingredients {
			if !idx.Claims(ing.Name) {
				continue
			}
			cat := idx.CategoryOf(ing.Name)
			env.pools[cat] = append(env.pools[cat], ing)
		}
	}
	return env, nil
}

func (e *Environment) Index() *category.Index {
	return e.index
}

// Corpus returns the reference recipes. Callers must treat the slice as
// read-only.
func (e *Environment) Corpus() []model.Recipe {
	return e.corpus
}

// Pool returns every corpus occurrence of an ingredient the taxonomy lists
// under the category. Frequent ingredients appear several times, unlisted
// ones never do. Read-only.
func (e *Environment) Pool(cat model.Category) []model.Ingredient {
	return e.pools[cat]
}

// Namer hands out sequential recipe names.
type Namer struct {
	next int
}

func NewNamer() *Namer {
	return &Namer{next: 1}
}

func (n *Namer) Next() string {
	name := fmt.Sprintf("recipe %d", n.next)
	n.next++
	return name
}
