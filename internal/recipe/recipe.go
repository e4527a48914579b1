package recipe

import (
	"cookiegen/internal/model"
)

// Categorizer resolves an ingredient identifier to its category.
// *category.Index satisfies it.
type Categorizer interface {
	CategoryOf(ingredient string) model.Category
}

// IsValid reports whether every required category is present.
func IsValid(c Categorizer, r model.Recipe) bool {
	present := PresentCategories(c, r.Ingredients)
	for _, required := range model.RequiredCategories {
		if _, ok := present[required]; !ok {
			return false
		}
	}
	return true
}

func PresentCategories(c Categorizer, ingredients []model.Ingredient) map[model.Category]struct{} {
	present := make(map[model.Category]struct{}, len(ingredients))
	for _, ing := range ingredients {
		present[c.CategoryOf(ing.Name)] = struct{}{}
	}
	return present
}

// GroupByCategory groups copies of the ingredients by category. The second
// return value lists the categories in first-seen order.
func GroupByCategory(c Categorizer, ingredients []model.Ingredient) (map[model.Category][]model.Ingredient, []model.Category) {
	groups := make(map[model.Category][]model.Ingredient)
	order := make([]model.Category, 0)
	for _, ing := range ingredients {
		cat := c.CategoryOf(ing.Name)
		if _, ok := groups[cat]; !ok {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], ing)
	}
	return groups, order
}

// CategoryAmounts sums raw (unconverted) amounts per category.
func CategoryAmounts(c Categorizer, r model.Recipe) map[model.Category]float64 {
	amounts := make(map[model.Category]float64)
	for _, ing := range r.Ingredients {
		amounts[c.CategoryOf(ing.Name)] += ing.Amount
	}
	return amounts
}

// IngredientSet returns the distinct ingredient identifiers of a recipe.
func IngredientSet(r model.Recipe) map[string]struct{} {
	set := make(map[string]struct{}, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		set[ing.Name] = struct{}{}
	}
	return set
}
