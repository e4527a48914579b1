package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cookiegen/internal/category"
	"cookiegen/internal/model"
	"cookiegen/internal/recipe"
)

var (
	ErrUnsupportedSource = errors.New("unsupported corpus source")
	ErrMalformed         = errors.New("malformed corpus")
)

type Kind string

const (
	KindJSON   Kind = "json"
	KindCSV    Kind = "csv"
	KindSQLite Kind = "sqlite"
)

// Corpus is the reference recipe collection plus the category taxonomy it
// ships with.
type Corpus struct {
	Recipes  []model.Recipe
	Taxonomy map[string][]string
}

// Index builds the category index for the corpus taxonomy, falling back to
// the default cookie taxonomy.
func (c Corpus) Index() *category.Index {
	if len(c.Taxonomy) == 0 {
		return category.NewIndex(category.DefaultTaxonomy())
	}
	return category.NewIndex(c.Taxonomy)
}

type Source struct {
	// Kind may be empty, in which case it is inferred from the path extension.
	Kind Kind
	Path string
	// TaxonomyPath optionally points at a YAML taxonomy that replaces the one
	// carried by the source.
	TaxonomyPath string
}

func (s Source) resolveKind() (Kind, error) {
	if s.Kind != "" {
		return s.Kind, nil
	}
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		return KindJSON, nil
	case ".csv":
		return KindCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite, nil
	default:
		return "", fmt.Errorf("%w: cannot infer kind from %q", ErrUnsupportedSource, s.Path)
	}
}

func Load(ctx context.Context, src Source) (Corpus, error) {
	if src.Path == "" {
		return Corpus{}, errors.New("corpus path is required")
	}
	kind, err := src.resolveKind()
	if err != nil {
		return Corpus{}, err
	}

	var c Corpus
	switch kind {
	case KindJSON:
		c, err = LoadJSON(src.Path)
	case KindCSV:
		c, err = LoadCSV(src.Path, nil)
	case KindSQLite:
		c, err = LoadSQLite(ctx, src.Path)
	default:
		return Corpus{}, fmt.Errorf("%w: %s", ErrUnsupportedSource, kind)
	}
	if err != nil {
		return Corpus{}, err
	}

	if src.TaxonomyPath != "" {
		taxonomy, err := LoadTaxonomyYAML(src.TaxonomyPath)
		if err != nil {
			return Corpus{}, err
		}
		c.Taxonomy = taxonomy
	}
	if len(c.Taxonomy) == 0 {
		c.Taxonomy = category.DefaultTaxonomy()
	}
	return c, nil
}

// Summary describes a loaded corpus.
type Summary struct {
	Recipes     int                    `json:"recipes"`
	Entries     int                    `json:"entries"`
	Ingredients int                    `json:"ingredients"`
	Valid       int                    `json:"valid"`
	ByCategory  map[model.Category]int `json:"by_category"`
	Unknown     []string               `json:"unknown,omitempty"`
}

// Summary counts recipes, entries and distinct ingredients. ByCategory counts
// distinct ingredients per category; Unknown lists ingredients that fall into
// the catch-all category.
func (c Corpus) Summary(idx *category.Index) Summary {
	out := Summary{
		Recipes:    len(c.Recipes),
		ByCategory: make(map[model.Category]int),
	}
	seen := make(map[string]struct{})
	for _, r := range c.Recipes {
		out.Entries += len(r.Ingredients)
		if recipe.IsValid(idx, r) {
			out.Valid++
		}
		for _, ing := range r.Ingredients {
			if _, ok := seen[ing.Name]; ok {
				continue
			}
			seen[ing.Name] = struct{}{}
			cat := idx.CategoryOf(ing.Name)
			out.ByCategory[cat]++
			if cat == model.CategoryOther {
				out.Unknown = append(out.Unknown, ing.Name)
			}
		}
	}
	out.Ingredients = len(seen)
	sort.Strings(out.Unknown)
	return out
}

func cleanName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// grouper assembles recipes from flat rows, keeping first-seen recipe order.
// Rows with a blank ingredient name still register their recipe but add no
// entry, matching the JSON loader.
type grouper struct {
	order   []string
	recipes map[string]*model.Recipe
}

func newGrouper() *grouper {
	return &grouper{recipes: make(map[string]*model.Recipe)}
}

func (g *grouper) add(recipeName string, ing model.Ingredient) {
	r, ok := g.recipes[recipeName]
	if !ok {
		r = &model.Recipe{Name: recipeName}
		g.recipes[recipeName] = r
		g.order = append(g.order, recipeName)
	}
	if ing.Name == "" {
		return
	}
	r.Ingredients = append(r.Ingredients, ing)
}

func (g *grouper) result() []model.Recipe {
	out := make([]model.Recipe, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, *g.recipes[name])
	}
	return out
}
