//go:build sqlite

package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cookiegen/internal/model"

	_ "modernc.org/sqlite"
)

// LoadSQLite reads recipe_ingredients(recipe, ingredient, amount, unit,
// rating) in rowid order and, when present, categories(category, ingredient).
func LoadSQLite(ctx context.Context, path string) (Corpus, error) {
	if path == "" {
		return Corpus{}, errors.New("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Corpus{}, err
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return Corpus{}, fmt.Errorf("open corpus %s: %w", path, err)
	}

	recipes, err := readRecipeRows(ctx, db)
	if err != nil {
		return Corpus{}, fmt.Errorf("read corpus %s: %w", path, err)
	}
	taxonomy, err := readCategoryRows(ctx, db)
	if err != nil {
		return Corpus{}, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Corpus{Recipes: recipes, Taxonomy: taxonomy}, nil
}

func readRecipeRows(ctx context.Context, db *sql.DB) ([]model.Recipe, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT recipe, ingredient, COALESCE(amount, 0), COALESCE(unit, ''), rating
		FROM recipe_ingredients
		ORDER BY rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	g := newGrouper()
	for rows.Next() {
		var (
			recipeName string
			name       string
			amount     float64
			unit       string
			rating     sql.NullFloat64
		)
		if err := rows.Scan(&recipeName, &name, &amount, &unit, &rating); err != nil {
			return nil, err
		}
		ing := model.Ingredient{
			Name:   cleanName(name),
			Amount: amount,
			Unit:   model.ParseUnit(unit),
			Rating: defaultCSVRating,
		}
		if rating.Valid {
			ing.Rating = rating.Float64
		}
		g.add(recipeName, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return g.result(), nil
}

func readCategoryRows(ctx context.Context, db *sql.DB) (map[string][]string, error) {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'categories'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT category, ingredient FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taxonomy := make(map[string][]string)
	for rows.Next() {
		var cat, ingredient string
		if err := rows.Scan(&cat, &ingredient); err != nil {
			return nil, err
		}
		taxonomy[cat] = append(taxonomy[cat], ingredient)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(taxonomy) == 0 {
		return nil, nil
	}
	return taxonomy, nil
}
