package model

import "strings"

// VersionedRecord captures schema and codec evolution for written artifacts.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type Unit string

const (
	UnitCup        Unit = "cup"
	UnitTablespoon Unit = "tablespoon"
	UnitTeaspoon   Unit = "teaspoon"
	UnitOunce      Unit = "ounce"
	UnitEgg        Unit = "egg"
	UnitUnknown    Unit = "unknown"
)

var unitAliases = map[string]Unit{
	"cup":         UnitCup,
	"cups":        UnitCup,
	"c":           UnitCup,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"tbsp":        UnitTablespoon,
	"tbs":         UnitTablespoon,
	"teaspoon":    UnitTeaspoon,
	"teaspoons":   UnitTeaspoon,
	"tsp":         UnitTeaspoon,
	"ounce":       UnitOunce,
	"ounces":      UnitOunce,
	"oz":          UnitOunce,
	"egg":         UnitEgg,
	"eggs":        UnitEgg,
}

// ParseUnit maps a raw unit label onto the known units. Unrecognized labels
// become UnitUnknown.
func ParseUnit(raw string) Unit {
	if u, ok := unitAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return u
	}
	return UnitUnknown
}

type Category string

const (
	CategoryFlour     Category = "flour"
	CategoryFat       Category = "fat"
	CategorySugar     Category = "sugar"
	CategoryEggs      Category = "eggs"
	CategoryLeavening Category = "leavening"
	CategoryLiquid    Category = "liquid"
	CategoryFlavoring Category = "flavoring"
	CategoryAddins    Category = "addins"
	CategoryOther     Category = "other"
)

// CanonicalCategories lists the known categories in their fixed iteration order.
var CanonicalCategories = []Category{
	CategoryFlour,
	CategoryFat,
	CategorySugar,
	CategoryEggs,
	CategoryLeavening,
	CategoryLiquid,
	CategoryFlavoring,
	CategoryAddins,
	CategoryOther,
}

// RequiredCategories must all be present for a recipe to be a viable cookie.
var RequiredCategories = []Category{
	CategoryFlour,
	CategoryFat,
	CategorySugar,
	CategoryEggs,
	CategoryLeavening,
}

// NonEssentialCategories may be trimmed from a recipe.
var NonEssentialCategories = []Category{
	CategoryAddins,
	CategoryFlavoring,
	CategoryLiquid,
	CategoryOther,
}

func IsRequired(c Category) bool {
	for _, r := range RequiredCategories {
		if r == c {
			return true
		}
	}
	return false
}

func IsNonEssential(c Category) bool {
	for _, n := range NonEssentialCategories {
		if n == c {
			return true
		}
	}
	return false
}

// Ingredient is a value type; assigning it copies the entry, so recipes never
// share ingredient state.
type Ingredient struct {
	Name   string  `json:"ingredient"`
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
	Rating float64 `json:"rating"`
}

type Recipe struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
	Fitness     *float64     `json:"fitness,omitempty"`
}

// Clone returns a deep copy of the recipe.
func (r Recipe) Clone() Recipe {
	out := Recipe{
		Name:        r.Name,
		Ingredients: make([]Ingredient, len(r.Ingredients)),
	}
	copy(out.Ingredients, r.Ingredients)
	if r.Fitness != nil {
		f := *r.Fitness
		out.Fitness = &f
	}
	return out
}

// FitnessValue returns the cached fitness or 0 when it has not been computed.
func (r Recipe) FitnessValue() float64 {
	if r.Fitness == nil {
		return 0
	}
	return *r.Fitness
}

func (r *Recipe) SetFitness(f float64) {
	r.Fitness = &f
}

// Population is ordered by descending fitness after each generational update.
type Population []Recipe
