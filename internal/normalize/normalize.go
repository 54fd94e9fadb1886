// Package normalize maps provider records onto the canonical book model.
// Everything here is pure: the same RawRecord always yields the same book.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

var yearPattern = regexp.MustCompile(`(?:^|\D)(\d{4})(?:\D|$)`)

// Record converts one raw record. ok is false when the record has no usable
// title and must be dropped.
func Record(raw book.RawRecord) (book.CanonicalBook, bool) {
	title := collapse(raw.Title)
	if title == "" {
		return book.CanonicalBook{}, false
	}

	b := book.CanonicalBook{
		Title:         title,
		Authors:       Authors(raw.Authors),
		Description:   book.StringPtr(strings.TrimSpace(raw.Description)),
		CoverImageURL: book.StringPtr(strings.TrimSpace(raw.CoverURL)),
		Subjects:      Subjects(raw.Subjects, raw.Genres, raw.Categories),
		Condition:     Condition(raw.Condition),
		SourceID:      raw.Source,
	}

	for _, isbn := range raw.ISBNs {
		if id, ok := ISBN13(isbn); ok {
			b.IdentityHint = &id
			break
		}
	}

	if year, ok := Year(raw.PublishYear, raw.PublishDate); ok {
		b.FirstPublishYear = &year
	}

	if label := Category(raw.Subjects, raw.Genres, raw.Categories); label != "" {
		b.Category = &label
	}

	if raw.Price > 0 {
		price := raw.Price
		b.Price = &price
		b.Currency = book.StringPtr(strings.ToUpper(strings.TrimSpace(raw.Currency)))
	}

	return b, true
}

// Records normalizes a batch, dropping records without a title.
func Records(raws []book.RawRecord) []book.CanonicalBook {
	out := make([]book.CanonicalBook, 0, len(raws))
	for _, raw := range raws {
		if b, ok := Record(raw); ok {
			out = append(out, b)
		}
	}
	return out
}

// Authors trims names and drops blanks and repeats. The result is never nil.
func Authors(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = collapse(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Subjects unions the given lists into a sorted set.
func Subjects(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, list := range lists {
		for _, s := range list {
			s = collapse(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// Year prefers an explicit year and otherwise takes the first four-digit
// number in the date string.
func Year(explicit int, date string) (int, bool) {
	if explicit > 0 {
		return explicit, true
	}
	m := yearPattern.FindStringSubmatch(date)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year == 0 {
		return 0, false
	}
	return year, true
}

var usedConditions = map[string]bool{
	"used":       true,
	"like new":   true,
	"very good":  true,
	"good":       true,
	"acceptable": true,
	"pre-owned":  true,
}

// Condition maps a provider's condition string onto new, used or unknown.
func Condition(raw string) book.Condition {
	c := strings.ToLower(collapse(raw))
	switch {
	case c == "new" || c == "brand new":
		return book.ConditionNew
	case usedConditions[c]:
		return book.ConditionUsed
	default:
		return book.ConditionUnknown
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
