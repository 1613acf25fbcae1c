// Package casefold implements the compatibility case folding used to
// compare alias names.
package casefold

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Fold maps s to its canonical comparison form: canonical decomposition,
// default case fold, compatibility decomposition, fold again, and a final
// compatibility decomposition. The second fold pass is needed because some
// characters fold to sequences that themselves decompose or fold further;
// a single pass leaves those unequal.
func Fold(s string) string {
	fold := cases.Fold()
	out := fold.String(norm.NFD.String(s))
	out = fold.String(norm.NFKD.String(out))
	return norm.NFKD.String(out)
}
