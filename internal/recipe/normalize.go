package recipe

import (
	"math"

	"cookiegen/internal/model"
)

// TargetTeaspoons is the batch size every normalized recipe is scaled to.
const TargetTeaspoons = 240.0

var teaspoonFactors = map[model.Unit]float64{
	model.UnitCup:        48,
	model.UnitTablespoon: 3,
	model.UnitTeaspoon:   1,
	model.UnitOunce:      6,
	model.UnitEgg:        12,
}

var minimumAmounts = map[model.Unit]float64{
	model.UnitCup:        0.25,
	model.UnitTeaspoon:   0.25,
	model.UnitTablespoon: 0.5,
	model.UnitEgg:        1,
}

// ToTeaspoons converts an amount to the common volumetric unit. Unknown units
// convert at factor 1.
func ToTeaspoons(amount float64, unit model.Unit) float64 {
	factor, ok := teaspoonFactors[unit]
	if !ok {
		factor = 1
	}
	return amount * factor
}

func TotalTeaspoons(r model.Recipe) float64 {
	total := 0.0
	for _, ing := range r.Ingredients {
		total += ToTeaspoons(ing.Amount, ing.Unit)
	}
	return total
}

// Normalize merges duplicate ingredients and rescales the recipe in place so
// its volume totals TargetTeaspoons, then applies per-unit minimums.
func Normalize(r *model.Recipe) {
	r.Ingredients = MergeDuplicates(r.Ingredients)

	total := TotalTeaspoons(*r)
	scale := 1.0
	if total > 0 {
		scale = TargetTeaspoons / total
	}

	for i := range r.Ingredients {
		ing := &r.Ingredients[i]
		ing.Amount = round2(ing.Amount * scale)
		if ing.Unit == model.UnitEgg {
			ing.Amount = math.RoundToEven(ing.Amount)
		}
		if floor, ok := minimumAmounts[ing.Unit]; ok && ing.Amount < floor {
			ing.Amount = floor
		}
	}
}

// MergeDuplicates collapses entries sharing an identifier into the first
// occurrence, summing amounts. The input slice is not modified.
func MergeDuplicates(ingredients []model.Ingredient) []model.Ingredient {
	merged := make([]model.Ingredient, 0, len(ingredients))
	position := make(map[string]int, len(ingredients))
	for _, ing := range ingredients {
		if i, ok := position[ing.Name]; ok {
			merged[i].Amount += ing.Amount
			continue
		}
		position[ing.Name] = len(merged)
		merged = append(merged, ing)
	}
	return merged
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
