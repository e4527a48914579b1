package evo

import (
	"math"

	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

// IdealRatios are the per-category amounts a balanced cookie aims for.
var IdealRatios = map[model.Category]float64{
	model.CategoryFlour:     2.5,
	model.CategoryFat:       1.0,
	model.CategorySugar:     1.0,
	model.CategoryEggs:      2.0,
	model.CategoryLeavening: 1.0,
}

const missingCategoryPenalty = 0.5

// FitnessFunc scores a recipe. It must be a pure function of the ingredient
// list.
type FitnessFunc func(c recipe.Categorizer, r model.Recipe) float64

// BalanceScore multiplies one term per ideal category: 0.5+0.5*ratio when
// present, 0.5 when absent.
func BalanceScore(c recipe.Categorizer, r model.Recipe) float64 {
	amounts := recipe.CategoryAmounts(c, r)
	score := 1.0
	for _, cat := range model.RequiredCategories {
		ideal := IdealRatios[cat]
		actual, ok := amounts[cat]
		if !ok {
			score *= missingCategoryPenalty
			continue
		}
		score *= 0.5 + 0.5*ratio(actual, ideal)
	}
	return score
}

// DiversityBonus rewards 8-12 ingredients and penalizes too few or too many.
func DiversityBonus(count int) float64 {
	switch {
	case count >= 8 && count <= 12:
		return 1.2
	case count < 5:
		return 0.7
	case count > 15:
		return 0.8
	default:
		return 1.0
	}
}

// Complexity is distinct categories per ingredient entry.
func Complexity(c recipe.Categorizer, r model.Recipe) float64 {
	if len(r.Ingredients) == 0 {
		return 0
	}
	return float64(len(recipe.PresentCategories(c, r.Ingredients))) / float64(len(r.Ingredients))
}

func AverageRating(r model.Recipe) float64 {
	if len(r.Ingredients) == 0 {
		return 0
	}
	total := 0.0
	for _, ing := range r.Ingredients {
		total += ing.Rating
	}
	return total / float64(len(r.Ingredients))
}

// Fitness is zero for invalid recipes, otherwise the product of rating,
// balance, diversity and complexity scaled by 10.
func Fitness(c recipe.Categorizer, r model.Recipe) float64 {
	if !recipe.IsValid(c, r) {
		return 0
	}
	return AverageRating(r) *
		BalanceScore(c, r) *
		DiversityBonus(len(r.Ingredients)) *
		Complexity(c, r) *
		10
}

// ratio is min/max, 0 when both are zero.
func ratio(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi <= 0 {
		return 0
	}
	return math.Min(a, b) / hi
}
