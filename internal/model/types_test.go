package model

import "testing"

func TestParseUnit(t *testing.T) {
	cases := map[string]Unit{
		"cup":     UnitCup,
		" Cups ":  UnitCup,
		"tbsp":    UnitTablespoon,
		"tsp":     UnitTeaspoon,
		"OZ":      UnitOunce,
		"eggs":    UnitEgg,
		"pinch":   UnitUnknown,
		"":        UnitUnknown,
		"unknown": UnitUnknown,
	}
	for raw, want := range cases {
		if got := ParseUnit(raw); got != want {
			t.Fatalf("raw=%q: expected %q, got %q", raw, want, got)
		}
	}
}

func TestRecipeCloneDoesNotAlias(t *testing.T) {
	original := Recipe{
		Name:        "r",
		Ingredients: []Ingredient{{Name: "butter", Amount: 1, Unit: UnitCup, Rating: 4}},
	}
	original.SetFitness(2.5)

	clone := original.Clone()
	clone.Ingredients[0].Amount = 9
	*clone.Fitness = 7

	if original.Ingredients[0].Amount != 1 {
		t.Fatalf("clone aliases ingredients: %f", original.Ingredients[0].Amount)
	}
	if original.FitnessValue() != 2.5 {
		t.Fatalf("clone aliases fitness: %f", original.FitnessValue())
	}
}

func TestCategoryPredicates(t *testing.T) {
	if !IsRequired(CategoryEggs) || IsRequired(CategoryAddins) {
		t.Fatal("unexpected required categories")
	}
	if !IsNonEssential(CategoryOther) || IsNonEssential(CategoryFlour) {
		t.Fatal("unexpected non-essential categories")
	}
}
