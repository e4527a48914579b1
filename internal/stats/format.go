package stats

import (
	"fmt"
	"sort"
	"strings"

	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

// FormatRecipe renders a recipe as a text table with ingredients sorted by
// category name.
func FormatRecipe(c recipe.Categorizer, r model.Recipe) string {
	type row struct {
		category model.Category
		ing      model.Ingredient
	}
	rows := make([]row, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		rows = append(rows, row{category: c.CategoryOf(ing.Name), ing: ing})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].category < rows[j].category
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Fitness: %.3f\n", r.FitnessValue())
	b.WriteString("\nIngredients:\n")
	for _, rw := range rows {
		fmt.Fprintf(&b, "  %-12s %7.2f %-10s %s\n", "["+string(rw.category)+"]", rw.ing.Amount, rw.ing.Unit, rw.ing.Name)
	}
	return b.String()
}
