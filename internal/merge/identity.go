// Package merge groups canonical books that describe the same work and folds
// each group into one record.
package merge

import (
	"strings"
	"unicode"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

// Key returns the identity key of b. A strong identifier wins; otherwise the
// key is built from the normalized title and the concatenated author names.
func Key(b book.CanonicalBook) string {
	if b.IdentityHint != nil && *b.IdentityHint != "" {
		return "id:" + *b.IdentityHint
	}
	return normalizeKey(b.Title) + "-" + normalizeKey(strings.Join(b.Authors, ""))
}

// normalizeKey lower-cases s and drops everything but letters and digits.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
