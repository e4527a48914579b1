package evo

import (
	"math/rand"
	"testing"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

func TestDiversityBonusThresholds(t *testing.T) {
	want := map[int]float64{0: 0.7, 4: 0.7, 5: 1.0, 8: 1.2, 12: 1.2, 13: 1.0, 15: 1.0, 16: 0.8}
	for count, bonus := range want {
		if got := DiversityBonus(count); got != bonus {
			t.Fatalf("count=%d: expected %f, got %f", count, bonus, got)
		}
	}
}

func idealRecipe() model.Recipe {
	return model.Recipe{Ingredients: []model.Ingredient{
		ingredient("all purpose flour", 2.5, model.UnitCup, 4),
		ingredient("butter", 1, model.UnitCup, 4),
		ingredient("sugar", 1, model.UnitCup, 4),
		ingredient("egg", 2, model.UnitEgg, 4),
		ingredient("baking soda", 1, model.UnitTeaspoon, 4),
	}}
}

func TestBalanceScoreMaximizedAtIdealAmounts(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	r := idealRecipe()
	if got := BalanceScore(idx, r); !almostEqual(got, 1, 1e-12) {
		t.Fatalf("expected ideal balance 1, got %f", got)
	}

	r.Ingredients[0].Amount = 5 // ratio 0.5 -> factor 0.75
	if got := BalanceScore(idx, r); !almostEqual(got, 0.75, 1e-12) {
		t.Fatalf("expected 0.75 above ideal, got %f", got)
	}

	r.Ingredients[0].Amount = 1.25
	if got := BalanceScore(idx, r); !almostEqual(got, 0.75, 1e-12) {
		t.Fatalf("expected 0.75 below ideal, got %f", got)
	}
}

func TestBalanceScoreSplitsAmountAcrossCategoryMembers(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	r := idealRecipe()
	r.Ingredients[1].Amount = 0.5
	r.Ingredients = append(r.Ingredients, ingredient("margarine", 0.5, model.UnitCup, 4))
	if got := BalanceScore(idx, r); !almostEqual(got, 1, 1e-12) {
		t.Fatalf("expected split fat to stay ideal, got %f", got)
	}
}

func TestBalanceScorePenalizesMissingCategories(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	r := idealRecipe()
	r.Ingredients = r.Ingredients[:4] // drop leavening
	if got := BalanceScore(idx, r); !almostEqual(got, 0.5, 1e-12) {
		t.Fatalf("expected one missing category to halve the score, got %f", got)
	}
	if got := BalanceScore(idx, model.Recipe{}); !almostEqual(got, 0.03125, 1e-12) {
		t.Fatalf("expected 0.5^5 for empty recipe, got %f", got)
	}
}

func TestComplexityCountsDistinctCategoriesPerEntry(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	r := idealRecipe()
	if got := Complexity(idx, r); got != 1 {
		t.Fatalf("expected complexity 1, got %f", got)
	}

	r.Ingredients = append(r.Ingredients,
		ingredient("margarine", 1, model.UnitCup, 4),
		ingredient("shortening", 1, model.UnitCup, 4),
		ingredient("vegetable oil", 1, model.UnitCup, 4),
		ingredient("walnut", 1, model.UnitCup, 4),
		ingredient("pecan", 1, model.UnitCup, 4),
	)
	if got := Complexity(idx, r); !almostEqual(got, 0.6, 1e-12) {
		t.Fatalf("expected 6 categories over 10 entries, got %f", got)
	}
	if got := Complexity(idx, model.Recipe{}); got != 0 {
		t.Fatalf("expected 0 for empty recipe, got %f", got)
	}
}

func TestFitnessOfIdealRecipe(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	// rating 4 * balance 1 * diversity 1.0 * complexity 1 * 10
	if got := Fitness(idx, idealRecipe()); !almostEqual(got, 40, 1e-9) {
		t.Fatalf("expected fitness 40, got %f", got)
	}
}

func TestFitnessIsZeroWithoutEggs(t *testing.T) {
	idx := category.NewIndex(category.DefaultTaxonomy())
	r := idealRecipe()
	r.Ingredients = append(r.Ingredients[:3], r.Ingredients[4])
	r.Ingredients = append(r.Ingredients, ingredient("chocolate chip", 1, model.UnitCup, 5))

	if recipe.IsValid(idx, r) {
		t.Fatal("expected recipe without eggs to be invalid")
	}
	if got := Fitness(idx, r); got != 0 {
		t.Fatalf("expected zero fitness, got %f", got)
	}
}

func TestFitnessZeroExactlyWhenInvalid(t *testing.T) {
	env := testEnv(t)
	idx := env.Index()
	rng := rand.New(rand.NewSource(7))
	categories := idx.Categories()

	for trial := 0; trial < 300; trial++ {
		var r model.Recipe
		for _, cat := range categories {
			pool := env.Pool(cat)
			if len(pool) == 0 || rng.Float64() < 0.3 {
				continue
			}
			r.Ingredients = append(r.Ingredients, pool[rng.Intn(len(pool))])
		}
		if len(r.Ingredients) == 0 {
			continue
		}
		f := Fitness(idx, r)
		if recipe.IsValid(idx, r) == (f == 0) {
			t.Fatalf("trial=%d fitness=%f valid=%t ingredients=%v", trial, f, recipe.IsValid(idx, r), names(r.Ingredients))
		}
	}
}

func TestAverageRatingGuardsEmptyRecipe(t *testing.T) {
	if got := AverageRating(model.Recipe{}); got != 0 {
		t.Fatalf("expected 0 for empty recipe, got %f", got)
	}
	if got := AverageRating(idealRecipe()); !almostEqual(got, 4, 1e-12) {
		t.Fatalf("expected 4, got %f", got)
	}
}
