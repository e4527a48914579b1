package corpus

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
)

const sampleJSON = `{
  "recipes": [
    {
      "name": "classic",
      "ingredients": [
        { "ingredient": "All Purpose Flour ", "amount": 2.5, "unit": "cup", "rating": 4.2 },
        { "ingredient": "butter", "amount": 1, "unit": "cups", "rating": 4 },
        { "ingredient": "sugar", "amount": 1, "unit": "cup", "rating": 3.9 },
        { "ingredient": "egg", "amount": 2, "unit": "egg", "rating": 4.1 },
        { "ingredient": "baking soda", "amount": 1, "unit": "tsp", "rating": "NA" }
      ]
    },
    {
      "name": "oat",
      "ingredients": [
        { "ingredient": "oat", "amount": 3, "unit": "handful", "rating": 3 }
      ]
    }
  ],
  "categories": [
    { "flour": ["all purpose flour"], "fat": ["butter"], "sugar": ["sugar"] },
    { "eggs": ["egg"], "leavening": ["baking soda"], "grains": ["oat"] }
  ]
}`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestParseJSONReadsRecipesAndTaxonomy(t *testing.T) {
	c, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, c.Recipes, 2)

	classic := c.Recipes[0]
	assert.Equal(t, "classic", classic.Name)
	require.Len(t, classic.Ingredients, 5)
	assert.Equal(t, model.Ingredient{Name: "all purpose flour", Amount: 2.5, Unit: model.UnitCup, Rating: 4.2}, classic.Ingredients[0])
	assert.Equal(t, model.UnitCup, classic.Ingredients[1].Unit)
	assert.Equal(t, model.UnitTeaspoon, classic.Ingredients[4].Unit)
	assert.Equal(t, 0.5, classic.Ingredients[4].Rating)
	assert.Equal(t, model.UnitUnknown, c.Recipes[1].Ingredients[0].Unit)

	assert.Equal(t, []string{"oat"}, c.Taxonomy["grains"])
	assert.Len(t, c.Taxonomy, 6)

	idx := c.Index()
	assert.Equal(t, model.Category("grains"), idx.CategoryOf("oat"))
}

func TestParseJSONWithoutCategoriesUsesDefaultIndex(t *testing.T) {
	c, err := ParseJSON([]byte(`{"recipes": [{"name": "x", "ingredients": []}]}`))
	require.NoError(t, err)
	assert.Nil(t, c.Taxonomy)
	assert.Equal(t, model.CategoryAddins, c.Index().CategoryOf("walnut"))
}

func TestParseJSONRejectsMalformedInput(t *testing.T) {
	_, err := ParseJSON([]byte(`{"recipes": [`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseJSON([]byte(`{"dishes": []}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := charmap.ISO8859_1.NewEncoder().Writer(&buf)
	_, err := w.Write([]byte(s))
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseCSVGroupsRowsAndDecodesLatin1(t *testing.T) {
	table := strings.Join([]string{
		"Recipe_Index,Ingredient,Quantity,Unit,Rating",
		"r2, Crème Fraîche ,0.5,cup,4.5",
		"r1,butter,1,cup,NA",
		"r2,sugar,abc,cup,",
		"r1,egg,2,egg,bad",
		"r2,vanilla,1,tsp,3",
	}, "\n")

	c, err := ParseCSV(bytes.NewReader(latin1(t, table)), nil)
	require.NoError(t, err)
	require.Len(t, c.Recipes, 2)

	first := c.Recipes[0]
	assert.Equal(t, "r2", first.Name)
	require.Len(t, first.Ingredients, 3)
	assert.Equal(t, "crème fraîche", first.Ingredients[0].Name)
	assert.Equal(t, 0.0, first.Ingredients[1].Amount)
	assert.Equal(t, 0.5, first.Ingredients[1].Rating)
	assert.Equal(t, model.UnitTeaspoon, first.Ingredients[2].Unit)

	second := c.Recipes[1]
	assert.Equal(t, "r1", second.Name)
	assert.Equal(t, []float64{0.5, 0.5}, []float64{second.Ingredients[0].Rating, second.Ingredients[1].Rating})
}

func TestBlankIngredientNamesAreDroppedByEveryLoader(t *testing.T) {
	table := "Recipe_Index,Ingredient,Quantity,Unit,Rating\n" +
		"r1,  ,1,cup,4\n" +
		"r1,butter,1,cup,4\n" +
		"r2,,2,cup,4\n"
	fromCSV, err := ParseCSV(strings.NewReader(table), nil)
	require.NoError(t, err)

	doc := `{"recipes": [
		{"name": "r1", "ingredients": [
			{"ingredient": "  ", "amount": 1, "unit": "cup", "rating": 4},
			{"ingredient": "butter", "amount": 1, "unit": "cup", "rating": 4}
		]},
		{"name": "r2", "ingredients": [
			{"ingredient": "", "amount": 2, "unit": "cup", "rating": 4}
		]}
	]}`
	fromJSON, err := ParseJSON([]byte(doc))
	require.NoError(t, err)

	for _, c := range []Corpus{fromCSV, fromJSON} {
		require.Len(t, c.Recipes, 2)
		require.Len(t, c.Recipes[0].Ingredients, 1)
		assert.Equal(t, "butter", c.Recipes[0].Ingredients[0].Name)
		assert.Empty(t, c.Recipes[1].Ingredients)
	}
}

func TestParseCSVRequiresColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Recipe_Index,Ingredient\nr1,butter\n"), nil)
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseCSV(strings.NewReader(""), nil)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoadTaxonomyYAML(t *testing.T) {
	path := writeFile(t, "taxonomy.yaml", []byte("flour:\n  - spelt flour\nfat: [ghee]\n"))
	taxonomy, err := LoadTaxonomyYAML(path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"flour": {"spelt flour"}, "fat": {"ghee"}}, taxonomy)

	empty := writeFile(t, "empty.yaml", []byte("\n"))
	_, err = LoadTaxonomyYAML(empty)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	ctx := context.Background()
	jsonPath := writeFile(t, "recipes.json", []byte(sampleJSON))
	c, err := Load(ctx, Source{Path: jsonPath})
	require.NoError(t, err)
	assert.Len(t, c.Recipes, 2)

	csvPath := writeFile(t, "recipes.csv", []byte("Recipe_Index,Ingredient,Quantity,Unit,Rating\nr1,butter,1,cup,4\n"))
	c, err = Load(ctx, Source{Path: csvPath})
	require.NoError(t, err)
	assert.Len(t, c.Recipes, 1)
	assert.Equal(t, category.DefaultTaxonomy(), c.Taxonomy)

	taxonomyPath := writeFile(t, "taxonomy.yaml", []byte("fat: [butter]\n"))
	c, err = Load(ctx, Source{Kind: KindJSON, Path: jsonPath, TaxonomyPath: taxonomyPath})
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"fat": {"butter"}}, c.Taxonomy)

	_, err = Load(ctx, Source{Path: writeFile(t, "recipes.txt", nil)})
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Load(ctx, Source{Kind: "xml", Path: jsonPath})
	assert.ErrorIs(t, err, ErrUnsupportedSource)

	_, err = Load(ctx, Source{})
	assert.Error(t, err)
}

func TestSummaryCountsDistinctIngredients(t *testing.T) {
	c, err := ParseJSON([]byte(sampleJSON))
	require.NoError(t, err)
	c.Recipes = append(c.Recipes, model.Recipe{Name: "dup", Ingredients: []model.Ingredient{
		{Name: "butter", Amount: 1, Unit: model.UnitCup, Rating: 4},
		{Name: "saffron", Amount: 1, Unit: model.UnitTeaspoon, Rating: 4},
	}})

	s := c.Summary(c.Index())
	assert.Equal(t, 3, s.Recipes)
	assert.Equal(t, 8, s.Entries)
	assert.Equal(t, 7, s.Ingredients)
	assert.Equal(t, 1, s.Valid)
	assert.Equal(t, 1, s.ByCategory[model.CategoryFat])
	assert.Equal(t, 1, s.ByCategory["grains"])
	assert.Equal(t, []string{"saffron"}, s.Unknown)
}
