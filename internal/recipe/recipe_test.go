package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
)

func testIndex() *category.Index {
	return category.NewIndex(category.DefaultTaxonomy())
}

func ing(name string, amount float64, unit model.Unit) model.Ingredient {
	return model.Ingredient{Name: name, Amount: amount, Unit: unit, Rating: 4}
}

func TestIsValidRequiresAllEssentialCategories(t *testing.T) {
	idx := testIndex()
	full := model.Recipe{Ingredients: []model.Ingredient{
		ing("all purpose flour", 2, model.UnitCup),
		ing("butter", 1, model.UnitCup),
		ing("sugar", 1, model.UnitCup),
		ing("egg", 2, model.UnitEgg),
		ing("baking soda", 1, model.UnitTeaspoon),
	}}
	assert.True(t, IsValid(idx, full))

	noEggs := full.Clone()
	noEggs.Ingredients = append(noEggs.Ingredients[:3], noEggs.Ingredients[4])
	assert.False(t, IsValid(idx, noEggs))

	assert.False(t, IsValid(idx, model.Recipe{}))
}

func TestGroupByCategoryCopiesAndOrders(t *testing.T) {
	idx := testIndex()
	ingredients := []model.Ingredient{
		ing("butter", 1, model.UnitCup),
		ing("walnut", 1, model.UnitCup),
		ing("margarine", 1, model.UnitCup),
	}
	groups, order := GroupByCategory(idx, ingredients)
	require.Equal(t, []model.Category{model.CategoryFat, model.CategoryAddins}, order)
	require.Len(t, groups[model.CategoryFat], 2)

	groups[model.CategoryFat][0].Amount = 99
	assert.Equal(t, 1.0, ingredients[0].Amount)
}

func TestCategoryAmountsSumsRawAmounts(t *testing.T) {
	idx := testIndex()
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("butter", 1, model.UnitCup),
		ing("margarine", 0.5, model.UnitCup),
		ing("mystery dust", 2, model.UnitTeaspoon),
	}}
	amounts := CategoryAmounts(idx, r)
	assert.InDelta(t, 1.5, amounts[model.CategoryFat], 1e-9)
	assert.InDelta(t, 2.0, amounts[model.CategoryOther], 1e-9)
}

func TestNormalizeScalesToTargetVolume(t *testing.T) {
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("butter", 1, model.UnitCup),
		ing("sugar", 2, model.UnitTablespoon),
		ing("vanilla", 3, model.UnitTeaspoon),
	}}
	Normalize(&r)

	assert.InDelta(t, TargetTeaspoons, TotalTeaspoons(r), 0.5)
	assert.Equal(t, 4.21, r.Ingredients[0].Amount)
	assert.Equal(t, 8.42, r.Ingredients[1].Amount)
	assert.Equal(t, 12.63, r.Ingredients[2].Amount)
}

func TestNormalizeMergesDuplicates(t *testing.T) {
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("butter", 1, model.UnitCup),
		ing("sugar", 1, model.UnitCup),
		ing("butter", 1, model.UnitCup),
	}}
	Normalize(&r)

	require.Len(t, r.Ingredients, 2)
	assert.Equal(t, "butter", r.Ingredients[0].Name)
	assert.Equal(t, "sugar", r.Ingredients[1].Name)
	// 2 cups butter : 1 cup sugar scaled to 5 cups total
	assert.InDelta(t, 3.33, r.Ingredients[0].Amount, 1e-9)
	assert.InDelta(t, 1.67, r.Ingredients[1].Amount, 1e-9)
}

func TestNormalizeAppliesUnitMinimums(t *testing.T) {
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("all purpose flour", 100, model.UnitCup),
		ing("vanilla", 0.01, model.UnitTeaspoon),
		ing("sugar", 0.01, model.UnitTablespoon),
		ing("egg", 0.1, model.UnitEgg),
		ing("salt", 0.001, model.UnitUnknown),
	}}
	Normalize(&r)

	assert.Equal(t, 0.25, r.Ingredients[1].Amount)
	assert.Equal(t, 0.5, r.Ingredients[2].Amount)
	assert.Equal(t, 1.0, r.Ingredients[3].Amount)
	// unknown units have no minimum
	assert.Equal(t, 0.0, r.Ingredients[4].Amount)
}

func TestNormalizeRoundsEggsToWholeNumbers(t *testing.T) {
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("egg", 3, model.UnitEgg),
		ing("all purpose flour", 2, model.UnitCup),
	}}
	// total = 36 + 96 = 132, scale = 240/132
	Normalize(&r)
	assert.Equal(t, 5.0, r.Ingredients[0].Amount)
}

func TestNormalizeZeroTotalKeepsScale(t *testing.T) {
	r := model.Recipe{Ingredients: []model.Ingredient{
		ing("butter", 0, model.UnitCup),
		ing("salt", 0, model.UnitUnknown),
	}}
	Normalize(&r)
	assert.Equal(t, 0.25, r.Ingredients[0].Amount)
	assert.Equal(t, 0.0, r.Ingredients[1].Amount)
}

func TestMergeDuplicatesLeavesInputUntouched(t *testing.T) {
	in := []model.Ingredient{ing("oat", 1, model.UnitCup), ing("oat", 2, model.UnitCup)}
	out := MergeDuplicates(in)
	require.Len(t, out, 1)
	assert.Equal(t, 3.0, out[0].Amount)
	assert.Equal(t, 1.0, in[0].Amount)
}

func TestToTeaspoonsFactors(t *testing.T) {
	assert.Equal(t, 48.0, ToTeaspoons(1, model.UnitCup))
	assert.Equal(t, 3.0, ToTeaspoons(1, model.UnitTablespoon))
	assert.Equal(t, 1.0, ToTeaspoons(1, model.UnitTeaspoon))
	assert.Equal(t, 6.0, ToTeaspoons(1, model.UnitOunce))
	assert.Equal(t, 12.0, ToTeaspoons(1, model.UnitEgg))
	assert.Equal(t, 2.0, ToTeaspoons(2, model.UnitUnknown))
}

func TestSignatureIgnoresOrderAndName(t *testing.T) {
	a := model.Recipe{Name: "a", Ingredients: []model.Ingredient{ing("butter", 1, model.UnitCup), ing("oat", 2, model.UnitCup)}}
	b := model.Recipe{Name: "b", Ingredients: []model.Ingredient{ing("oat", 2, model.UnitCup), ing("butter", 1, model.UnitCup)}}
	c := model.Recipe{Name: "a", Ingredients: []model.Ingredient{ing("butter", 1.5, model.UnitCup), ing("oat", 2, model.UnitCup)}}

	assert.Equal(t, Signature(a), Signature(b))
	assert.NotEqual(t, Signature(a), Signature(c))
	assert.Len(t, Signature(a), 16)
}
