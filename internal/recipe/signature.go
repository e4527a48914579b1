package recipe

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"cookiegen/internal/model"
)

// Signature fingerprints the ingredient list independent of entry order and
// recipe name.
func Signature(r model.Recipe) string {
	parts := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		parts = append(parts, fmt.Sprintf("%s|%.4f|%s|%.4f", ing.Name, ing.Amount, ing.Unit, ing.Rating))
	}
	sort.Strings(parts)
	digest := sha1.Sum([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(digest[:8])
}
