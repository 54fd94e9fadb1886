package merge

import (
	"sort"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

// DefaultPriority is the source order used when none is configured.
var DefaultPriority = []string{"googlebooks", "isbndb", "openlibrary"}

// fieldRanks records, per field, the priority rank of the source that
// supplied the current value. Lower is better.
type fieldRanks struct {
	primary     int // title and sourceId
	identity    int
	authors     int
	description int
	cover       int
	year        int
	category    int
	condition   int
	price       int // price and currency travel together
}

// Fragment is a CanonicalBook annotated with field provenance. Fragments
// are folded with Merge.
type Fragment struct {
	Book  book.CanonicalBook
	ranks fieldRanks
}

// Merger folds books according to a source priority list.
type Merger struct {
	priority map[string]int
	unknown  int
}

// NewMerger creates a Merger. Sources missing from priority rank after every
// listed source. An empty list falls back to DefaultPriority.
func NewMerger(priority []string) *Merger {
	if len(priority) == 0 {
		priority = DefaultPriority
	}
	m := &Merger{priority: make(map[string]int, len(priority)), unknown: len(priority)}
	for i, source := range priority {
		if _, dup := m.priority[source]; !dup {
			m.priority[source] = i
		}
	}
	return m
}

// Rank returns the priority rank of a source.
func (m *Merger) Rank(source string) int {
	if r, ok := m.priority[source]; ok {
		return r
	}
	return m.unknown
}

// NewFragment wraps b with every field attributed to b's source.
func (m *Merger) NewFragment(b book.CanonicalBook) Fragment {
	r := m.Rank(b.SourceID)
	return Fragment{
		Book: b,
		ranks: fieldRanks{
			primary:     r,
			identity:    r,
			authors:     r,
			description: r,
			cover:       r,
			year:        r,
			category:    r,
			condition:   r,
			price:       r,
		},
	}
}

// useRight reports whether the right-hand value replaces the left one: it
// must be present and strictly better ranked, or the left one must be absent.
func useRight(leftHas, rightHas bool, leftRank, rightRank int) bool {
	return rightHas && (!leftHas || rightRank < leftRank)
}

// Merge combines two fragments of the same work. Each field takes the
// present value with the best rank, preferring a on ties, and subjects are
// unioned. Merge is associative.
func Merge(a, b Fragment) Fragment {
	out := a
	out.Book.Subjects = mergeStringSlices(a.Book.Subjects, b.Book.Subjects)

	if useRight(true, true, a.ranks.primary, b.ranks.primary) {
		out.Book.Title = b.Book.Title
		out.Book.SourceID = b.Book.SourceID
		out.ranks.primary = b.ranks.primary
	}
	if useRight(a.Book.IdentityHint != nil, b.Book.IdentityHint != nil, a.ranks.identity, b.ranks.identity) {
		out.Book.IdentityHint = b.Book.IdentityHint
		out.ranks.identity = b.ranks.identity
	}
	if useRight(len(a.Book.Authors) > 0, len(b.Book.Authors) > 0, a.ranks.authors, b.ranks.authors) {
		out.Book.Authors = b.Book.Authors
		out.ranks.authors = b.ranks.authors
	}
	if useRight(a.Book.Description != nil, b.Book.Description != nil, a.ranks.description, b.ranks.description) {
		out.Book.Description = b.Book.Description
		out.ranks.description = b.ranks.description
	}
	if useRight(a.Book.CoverImageURL != nil, b.Book.CoverImageURL != nil, a.ranks.cover, b.ranks.cover) {
		out.Book.CoverImageURL = b.Book.CoverImageURL
		out.ranks.cover = b.ranks.cover
	}
	if useRight(a.Book.FirstPublishYear != nil, b.Book.FirstPublishYear != nil, a.ranks.year, b.ranks.year) {
		out.Book.FirstPublishYear = b.Book.FirstPublishYear
		out.ranks.year = b.ranks.year
	}
	if useRight(a.Book.Category != nil, b.Book.Category != nil, a.ranks.category, b.ranks.category) {
		out.Book.Category = b.Book.Category
		out.ranks.category = b.ranks.category
	}
	if useRight(knownCondition(a.Book.Condition), knownCondition(b.Book.Condition), a.ranks.condition, b.ranks.condition) {
		out.Book.Condition = b.Book.Condition
		out.ranks.condition = b.ranks.condition
	}
	if useRight(a.Book.Price != nil, b.Book.Price != nil, a.ranks.price, b.ranks.price) {
		out.Book.Price = b.Book.Price
		out.Book.Currency = b.Book.Currency
		out.ranks.price = b.ranks.price
	}

	return out
}

func knownCondition(c book.Condition) bool {
	return c == book.ConditionNew || c == book.ConditionUsed
}

// Dedupe groups books by Key and folds each group in discovery order.
// Groups are returned in order of first appearance.
func (m *Merger) Dedupe(books []book.CanonicalBook) []book.CanonicalBook {
	order := make([]string, 0, len(books))
	groups := make(map[string]Fragment, len(books))

	for _, b := range books {
		key := Key(b)
		frag := m.NewFragment(b)
		if existing, ok := groups[key]; ok {
			groups[key] = Merge(existing, frag)
			continue
		}
		order = append(order, key)
		groups[key] = frag
	}

	out := make([]book.CanonicalBook, 0, len(order))
	for _, key := range order {
		b := groups[key].Book
		if b.Authors == nil {
			b.Authors = []string{}
		}
		if b.Condition == "" {
			b.Condition = book.ConditionUnknown
		}
		out = append(out, b)
	}
	return out
}

// mergeStringSlices unions two slices into a sorted set.
func mergeStringSlices(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	sort.Strings(result)
	return result
}
