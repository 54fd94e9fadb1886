package provider

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

const (
	isbndbName     = "isbndb"
	isbndbBaseURL  = "https://api2.isbndb.com"
	isbndbRate     = 1
	isbndbCurrency = "USD"
)

// ISBNdb searches the ISBNdb catalogue. It needs an API key and only serves
// title or author searches.
type ISBNdb struct {
	client
}

var _ Adapter = (*ISBNdb)(nil)

// NewISBNdb creates the ISBNdb adapter.
func NewISBNdb(opts ...Option) *ISBNdb {
	return &ISBNdb{client: newClient(isbndbName, isbndbBaseURL, isbndbRate, opts)}
}

// Name returns the adapter identifier.
func (i *ISBNdb) Name() string {
	return isbndbName
}

// Accepts declines when no API key is configured or the query has neither
// title nor author.
func (i *ISBNdb) Accepts(q book.SearchQuery) bool {
	return i.apiKey != "" && (q.Title != "" || q.Author != "")
}

// Ping tests the connection and the API key.
func (i *ISBNdb) Ping(ctx context.Context) error {
	return i.ping(ctx, i.baseURL+"/stats", i.header())
}

func (i *ISBNdb) header() http.Header {
	h := http.Header{}
	h.Set("Authorization", i.apiKey)
	return h
}

// flexPrice accepts ISBNdb's msrp as either a number or a numeric string.
type flexPrice float64

func (p *flexPrice) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = flexPrice(v)
	return nil
}

type isbndbSearchResponse struct {
	Total int `json:"total"`
	Books []struct {
		Title         string    `json:"title"`
		ISBN          string    `json:"isbn"`
		ISBN13        string    `json:"isbn13"`
		DatePublished string    `json:"date_published"`
		Synopsis      string    `json:"synopsis"`
		Overview      string    `json:"overview"`
		Image         string    `json:"image"`
		Authors       []string  `json:"authors"`
		Subjects      []string  `json:"subjects"`
		MSRP          flexPrice `json:"msrp"`
	} `json:"books"`
}

// Fetch searches by title when one is given, otherwise by author. When both
// are given, title results are narrowed to the requested author.
func (i *ISBNdb) Fetch(ctx context.Context, q book.SearchQuery) ([]book.RawRecord, error) {
	var resp isbndbSearchResponse
	if err := i.getJSON(ctx, i.searchURL(q), i.header(), &resp); err != nil {
		// ISBNdb answers 404 when nothing matches.
		if errors.Is(err, errNotFound) {
			return []book.RawRecord{}, nil
		}
		return nil, err
	}

	authorTokens := strings.Fields(strings.ToLower(q.Author))
	records := make([]book.RawRecord, 0, len(resp.Books))
	for _, b := range resp.Books {
		if q.Title != "" && len(authorTokens) > 0 && !authorMatches(b.Authors, authorTokens) {
			continue
		}
		records = append(records, book.RawRecord{
			Source:      isbndbName,
			ISBNs:       []string{b.ISBN13, b.ISBN},
			Title:       b.Title,
			Authors:     b.Authors,
			Description: firstNonEmpty(b.Synopsis, b.Overview),
			CoverURL:    b.Image,
			PublishDate: b.DatePublished,
			Subjects:    b.Subjects,
			Price:       float64(b.MSRP),
			Currency:    isbndbCurrency,
		})
	}
	return records, nil
}

func (i *ISBNdb) searchURL(q book.SearchQuery) string {
	text, column := q.Title, "title"
	if text == "" {
		text, column = q.Author, "author"
	}

	params := url.Values{}
	params.Set("page", "1")
	params.Set("pageSize", strconv.Itoa(i.resultLimit))
	params.Set("column", column)
	return i.baseURL + "/books/" + url.PathEscape(text) + "?" + params.Encode()
}

// authorMatches reports whether one author name contains every token, so
// "frank herbert" matches "Herbert, Frank".
func authorMatches(authors []string, tokens []string) bool {
	for _, name := range authors {
		name = strings.ToLower(name)
		matched := true
		for _, tok := range tokens {
			if !strings.Contains(name, tok) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
