package evo

import (
	"math"
	"testing"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
)

// scriptedRand replays fixed draws and falls back to the last value (or 0)
// when a script runs out.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (s *scriptedRand) Intn(n int) int {
	v := 0
	if len(s.ints) > 0 {
		v = s.ints[0]
		if len(s.ints) > 1 {
			s.ints = s.ints[1:]
		}
	}
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *scriptedRand) Float64() float64 {
	v := 0.0
	if len(s.floats) > 0 {
		v = s.floats[0]
		if len(s.floats) > 1 {
			s.floats = s.floats[1:]
		}
	}
	return v
}

func ingredient(name string, amount float64, unit model.Unit, rating float64) model.Ingredient {
	return model.Ingredient{Name: name, Amount: amount, Unit: unit, Rating: rating}
}

func baseCookie(name string) model.Recipe {
	return model.Recipe{
		Name: name,
		Ingredients: []model.Ingredient{
			ingredient("all purpose flour", 2, model.UnitTeaspoon, 4),
			ingredient("butter", 1, model.UnitTeaspoon, 4),
			ingredient("sugar", 1, model.UnitTeaspoon, 4),
			ingredient("egg", 1, model.UnitEgg, 4),
			ingredient("baking soda", 1, model.UnitTeaspoon, 4),
		},
	}
}

func testCorpus() []model.Recipe {
	vanilla := baseCookie("vanilla cookie")
	vanilla.Ingredients[0].Amount = 3
	vanilla.Ingredients = append(vanilla.Ingredients, ingredient("vanilla", 1, model.UnitTeaspoon, 4.5))

	chip := model.Recipe{
		Name: "chip cookie",
		Ingredients: []model.Ingredient{
			ingredient("cake flour", 2, model.UnitCup, 3.5),
			ingredient("margarine", 1, model.UnitCup, 3),
			ingredient("brown sugar", 1, model.UnitCup, 4),
			ingredient("egg", 2, model.UnitEgg, 4),
			ingredient("baking powder", 1, model.UnitTeaspoon, 4),
			ingredient("chocolate chip", 1, model.UnitCup, 5),
			ingredient("walnut", 0.5, model.UnitCup, 4),
			ingredient("milk", 2, model.UnitTablespoon, 3),
		},
	}
	return []model.Recipe{baseCookie("plain cookie"), vanilla, chip}
}

func testEnv(t *testing.T) *Environment {
	t.Helper()
	env, err := NewEnvironment(category.NewIndex(category.DefaultTaxonomy()), testCorpus())
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	return env
}

func names(ingredients []model.Ingredient) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		out = append(out, ing.Name)
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
