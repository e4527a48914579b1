package evo

import (
	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

// Crossover recombines two parents category by category: a category present
// in both parents is inherited as a whole group from one of them, and a
// category present in one parent is always inherited. Child ingredient order
// is not part of the contract.
type Crossover struct {
	Env   *Environment
	Namer *Namer
}

func (Crossover) Name() string {
	return "category_crossover"
}

func (c Crossover) Apply(rng Rand, a, b model.Recipe) model.Recipe {
	idx := c.Env.Index()
	groupsA, _ := recipe.GroupByCategory(idx, a.Ingredients)
	groupsB, _ := recipe.GroupByCategory(idx, b.Ingredients)

	child := make([]model.Ingredient, 0, len(a.Ingredients)+len(b.Ingredients))
	for _, cat := range idx.Categories() {
		fromA, inA := groupsA[cat]
		fromB, inB := groupsB[cat]
		switch {
		case inA && inB:
			if rng.Float64() < 0.5 {
				child = append(child, fromA...)
			} else {
				child = append(child, fromB...)
			}
		case inA:
			child = append(child, fromA...)
		case inB:
			child = append(child, fromB...)
		}
	}

	if len(child) == 0 {
		switch {
		case len(a.Ingredients) > 0:
			child = append(child, a.Ingredients[rng.Intn(len(a.Ingredients))])
		case len(b.Ingredients) > 0:
			child = append(child, b.Ingredients[rng.Intn(len(b.Ingredients))])
		}
	}

	name := ""
	if c.Namer != nil {
		name = c.Namer.Next()
	}
	return model.Recipe{Name: name, Ingredients: child}
}
