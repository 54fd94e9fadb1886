package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

func TestRecordFullMapping(t *testing.T) {
	raw := book.RawRecord{
		Source:      "googlebooks",
		ISBNs:       []string{"not-an-isbn", "0-441-01359-7"},
		Title:       "  Dune ",
		Authors:     []string{"Frank Herbert", " ", "frank herbert"},
		Description: " Desert planet. ",
		CoverURL:    "https://covers.example/dune.jpg",
		PublishDate: "1965-08-01",
		Subjects:    []string{"Ecology"},
		Categories:  []string{"Fiction / Science Fiction / General"},
		Condition:   "Brand New",
		Price:       9.99,
		Currency:    "usd",
	}

	b, ok := Record(raw)
	require.True(t, ok)

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, []string{"Frank Herbert"}, b.Authors)
	require.NotNil(t, b.IdentityHint)
	assert.Equal(t, "9780441013593", *b.IdentityHint)
	require.NotNil(t, b.Description)
	assert.Equal(t, "Desert planet.", *b.Description)
	require.NotNil(t, b.FirstPublishYear)
	assert.Equal(t, 1965, *b.FirstPublishYear)
	assert.Equal(t, []string{"Ecology", "Fiction / Science Fiction / General"}, b.Subjects)
	require.NotNil(t, b.Category)
	assert.Equal(t, "science fiction", *b.Category)
	assert.Equal(t, book.ConditionNew, b.Condition)
	require.NotNil(t, b.Price)
	assert.InDelta(t, 9.99, *b.Price, 0.0001)
	require.NotNil(t, b.Currency)
	assert.Equal(t, "USD", *b.Currency)
	assert.Equal(t, "googlebooks", b.SourceID)
	assert.Nil(t, b.AffiliateURL)
}

func TestRecordSparse(t *testing.T) {
	b, ok := Record(book.RawRecord{Source: "openlibrary", Title: "Dune"})
	require.True(t, ok)

	assert.NotNil(t, b.Authors)
	assert.Empty(t, b.Authors)
	assert.NotNil(t, b.Subjects)
	assert.Nil(t, b.IdentityHint)
	assert.Nil(t, b.Description)
	assert.Nil(t, b.CoverImageURL)
	assert.Nil(t, b.FirstPublishYear)
	assert.Nil(t, b.Category)
	assert.Nil(t, b.Price)
	assert.Nil(t, b.Currency)
	assert.Equal(t, book.ConditionUnknown, b.Condition)
}

func TestRecordDropsEmptyTitle(t *testing.T) {
	_, ok := Record(book.RawRecord{Title: " \t "})
	assert.False(t, ok)

	out := Records([]book.RawRecord{{Title: ""}, {Title: "Dune"}})
	require.Len(t, out, 1)
	assert.Equal(t, "Dune", out[0].Title)
}

func TestRecordIgnoresNonPositivePrice(t *testing.T) {
	b, ok := Record(book.RawRecord{Title: "Dune", Price: 0, Currency: "USD"})
	require.True(t, ok)
	assert.Nil(t, b.Price)
	assert.Nil(t, b.Currency)
}

func TestRecordIsDeterministic(t *testing.T) {
	raw := book.RawRecord{Title: "Dune", Subjects: []string{"b", "a", "b"}, Genres: []string{"c"}}
	first, _ := Record(raw)
	second, _ := Record(raw)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b", "c"}, first.Subjects)
}

func TestYear(t *testing.T) {
	tests := []struct {
		name     string
		explicit int
		date     string
		want     int
		ok       bool
	}{
		{name: "bare year", date: "1965", want: 1965, ok: true},
		{name: "iso date", date: "1965-08-01", want: 1965, ok: true},
		{name: "month year", date: "Aug 1965", want: 1965, ok: true},
		{name: "explicit wins", explicit: 1966, date: "2005", want: 1966, ok: true},
		{name: "no year", date: "unknown", ok: false},
		{name: "empty", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Year(tt.explicit, tt.date)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCondition(t *testing.T) {
	tests := map[string]book.Condition{
		"new":         book.ConditionNew,
		"Brand New":   book.ConditionNew,
		"used":        book.ConditionUsed,
		"Like New":    book.ConditionUsed,
		"very good":   book.ConditionUsed,
		"Acceptable":  book.ConditionUsed,
		"pre-owned":   book.ConditionUsed,
		"":            book.ConditionUnknown,
		"refurbished": book.ConditionUnknown,
	}

	for input, want := range tests {
		assert.Equal(t, want, Condition(input), "input %q", input)
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name   string
		fields [][]string
		want   string
	}{
		{name: "compound beats parts", fields: [][]string{{"Fiction", "Science Fiction"}}, want: "science fiction"},
		{name: "nonfiction beats fiction", fields: [][]string{{"Nonfiction"}}, want: "nonfiction"},
		{name: "hyphenated nonfiction", fields: [][]string{{"Non-Fiction"}}, want: "nonfiction"},
		{name: "table order not field order", fields: [][]string{{"Fiction"}, {"Fantasy"}}, want: "fantasy"},
		{name: "plain fiction", fields: [][]string{{"Fiction / General"}}, want: "fiction"},
		{name: "science alone", fields: [][]string{{"Physics"}, {"Science"}}, want: "science"},
		{name: "no match", fields: [][]string{{"Cooking"}}, want: ""},
		{name: "empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Category(tt.fields...))
		})
	}
}

func TestLabelsAreUnique(t *testing.T) {
	labels := Labels()
	seen := map[string]bool{}
	for _, l := range labels {
		assert.False(t, seen[l], "duplicate label %q", l)
		seen[l] = true
	}
	assert.Contains(t, labels, "science fiction")
}

func TestISBN13(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "0441013597", want: "9780441013593", ok: true},
		{input: "0-441-01359-7", want: "9780441013593", ok: true},
		{input: "080442957x", want: "9780804429573", ok: true},
		{input: "978-0-441-01359-3", want: "9780441013593", ok: true},
		{input: "9780441013594", ok: false},
		{input: "0441013598", ok: false},
		{input: "12345", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ISBN13(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
