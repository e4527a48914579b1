//go:build !sqlite

package corpus

import (
	"context"
	"fmt"
)

func LoadSQLite(_ context.Context, _ string) (Corpus, error) {
	return Corpus{}, fmt.Errorf("%w: sqlite corpus unavailable in this build; rebuild with -tags sqlite", ErrUnsupportedSource)
}
