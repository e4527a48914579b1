package corpus

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"cookiegen/internal/model"
)

func LoadJSON(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Corpus{}, fmt.Errorf("read corpus %s: %w", path, err)
	}
	c, err := ParseJSON(data)
	if err != nil {
		return Corpus{}, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return c, nil
}

// ParseJSON reads {"recipes": [...], "categories": [...]}. The categories
// value may be an object mapping category to ingredient names or an array of
// such objects, which are merged in order.
func ParseJSON(data []byte) (Corpus, error) {
	if !gjson.ValidBytes(data) {
		return Corpus{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(data)
	recipesField := root.Get("recipes")
	if !recipesField.IsArray() {
		return Corpus{}, fmt.Errorf("%w: missing recipes array", ErrMalformed)
	}

	var recipes []model.Recipe
	recipesField.ForEach(func(_, v gjson.Result) bool {
		r := model.Recipe{Name: v.Get("name").String()}
		v.Get("ingredients").ForEach(func(_, ing gjson.Result) bool {
			name := cleanName(ing.Get("ingredient").String())
			if name == "" {
				return true
			}
			rating := 0.5
			if rv := ing.Get("rating"); rv.Type == gjson.Number {
				rating = rv.Float()
			}
			r.Ingredients = append(r.Ingredients, model.Ingredient{
				Name:   name,
				Amount: ing.Get("amount").Float(),
				Unit:   model.ParseUnit(ing.Get("unit").String()),
				Rating: rating,
			})
			return true
		})
		recipes = append(recipes, r)
		return true
	})

	return Corpus{Recipes: recipes, Taxonomy: readTaxonomy(root.Get("categories"))}, nil
}

func readTaxonomy(v gjson.Result) map[string][]string {
	if !v.Exists() {
		return nil
	}
	taxonomy := make(map[string][]string)
	merge := func(obj gjson.Result) {
		obj.ForEach(func(cat, members gjson.Result) bool {
			members.ForEach(func(_, m gjson.Result) bool {
				taxonomy[cat.String()] = append(taxonomy[cat.String()], m.String())
				return true
			})
			if _, ok := taxonomy[cat.String()]; !ok {
				taxonomy[cat.String()] = []string{}
			}
			return true
		})
	}
	switch {
	case v.IsArray():
		v.ForEach(func(_, obj gjson.Result) bool {
			if obj.IsObject() {
				merge(obj)
			}
			return true
		})
	case v.IsObject():
		merge(v)
	}
	if len(taxonomy) == 0 {
		return nil
	}
	return taxonomy
}
