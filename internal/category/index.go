package category

import (
	"sort"
	"strings"

	"cookiegen/internal/model"
)

// Index maps ingredient identifiers to their semantic category. It is built
// once and never mutated afterwards.
type Index struct {
	order   []model.Category
	members map[model.Category][]string
	byName  map[string]model.Category
}

// NewIndex builds an index from a category -> members taxonomy. The "other"
// category always exists. When two categories claim the same ingredient the
// one earlier in the canonical order wins.
func NewIndex(taxonomy map[string][]string) *Index {
	idx := &Index{
		members: make(map[model.Category][]string, len(taxonomy)+1),
		byName:  make(map[string]model.Category),
	}

	for name, items := range taxonomy {
		cat := model.Category(normalize(name))
		if cat == "" {
			continue
		}
		seen := make(map[string]struct{}, len(items))
		for _, item := range items {
			id := normalize(item)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			idx.members[cat] = append(idx.members[cat], id)
		}
		if _, ok := idx.members[cat]; !ok {
			idx.members[cat] = nil
		}
	}
	if _, ok := idx.members[model.CategoryOther]; !ok {
		idx.members[model.CategoryOther] = nil
	}

	idx.order = canonicalOrder(idx.members)
	for _, cat := range idx.order {
		sort.Strings(idx.members[cat])
		for _, id := range idx.members[cat] {
			if _, claimed := idx.byName[id]; !claimed {
				idx.byName[id] = cat
			}
		}
	}
	return idx
}

// CategoryOf returns the category of an ingredient, or "other" when no
// category claims it.
func (i *Index) CategoryOf(ingredient string) model.Category {
	if cat, ok := i.byName[normalize(ingredient)]; ok {
		return cat
	}
	return model.CategoryOther
}

// Claims reports whether some category lists the ingredient. Unclaimed
// ingredients still resolve to "other" through CategoryOf.
func (i *Index) Claims(ingredient string) bool {
	_, ok := i.byName[normalize(ingredient)]
	return ok
}

// Categories returns every category name in canonical order.
func (i *Index) Categories() []model.Category {
	out := make([]model.Category, len(i.order))
	copy(out, i.order)
	return out
}

func (i *Index) Has(cat model.Category) bool {
	_, ok := i.members[cat]
	return ok
}

// Members returns the configured identifiers of a category, sorted.
func (i *Index) Members(cat model.Category) []string {
	out := make([]string, len(i.members[cat]))
	copy(out, i.members[cat])
	return out
}

func canonicalOrder(members map[model.Category][]string) []model.Category {
	known := make(map[model.Category]struct{}, len(model.CanonicalCategories))
	order := make([]model.Category, 0, len(members))
	for _, cat := range model.CanonicalCategories {
		known[cat] = struct{}{}
		if cat == model.CategoryOther {
			continue
		}
		if _, ok := members[cat]; ok {
			order = append(order, cat)
		}
	}

	extra := make([]string, 0)
	for cat := range members {
		if _, ok := known[cat]; !ok {
			extra = append(extra, string(cat))
		}
	}
	sort.Strings(extra)
	for _, cat := range extra {
		order = append(order, model.Category(cat))
	}
	return append(order, model.CategoryOther)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
