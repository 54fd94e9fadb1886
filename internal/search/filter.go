package search

import (
	"sort"
	"strings"

	"github.com/lepinkainen/shelfsearch/internal/book"
	"github.com/lepinkainen/shelfsearch/internal/normalize"
)

// DefaultPageSize is the number of items per page.
const DefaultPageSize = 20

// Filter keeps the items matching the query's condition and category.
// Unknown conditions never match a new/used filter.
func Filter(items []book.CanonicalBook, q book.SearchQuery) []book.CanonicalBook {
	condition := strings.ToLower(q.Condition)
	category := categoryLabel(q.Category)

	out := make([]book.CanonicalBook, 0, len(items))
	for _, b := range items {
		switch condition {
		case string(book.ConditionNew), string(book.ConditionUsed):
			if string(b.Condition) != condition {
				continue
			}
		}
		if category != "" && (b.Category == nil || !strings.EqualFold(*b.Category, category)) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// categoryLabel maps a requested category onto the label vocabulary used by
// the normalizer, so "Science Fiction & Fantasy" filters on "science fiction".
func categoryLabel(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return ""
	}
	if label := normalize.Category([]string{requested}); label != "" {
		return label
	}
	return strings.ToLower(requested)
}

// Sort orders items by the given key without disturbing ties. Relevance
// keeps the merge order.
func Sort(items []book.CanonicalBook, key string) []book.CanonicalBook {
	out := make([]book.CanonicalBook, len(items))
	copy(out, items)

	switch key {
	case book.SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].FirstPublishYear, out[j].FirstPublishYear
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return *a > *b
		})
	case book.SortAuthorAZ:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := strings.ToLower(out[i].FirstAuthor()), strings.ToLower(out[j].FirstAuthor())
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			return a < b
		})
	}
	return out
}

// Paginate slices one page out of items. Pages past the end are empty.
func Paginate(items []book.CanonicalBook, page, size int) ([]book.CanonicalBook, book.Pagination) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + size - 1) / size

	p := book.Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalResults: total,
		HasNext:      page < totalPages,
		HasPrevious:  page > 1,
	}

	// page can be large enough that (page-1)*size overflows
	if page > totalPages {
		return []book.CanonicalBook{}, p
	}
	start := (page - 1) * size
	end := min(start+size, total)

	pageItems := make([]book.CanonicalBook, end-start)
	copy(pageItems, items[start:end])
	return pageItems, p
}
