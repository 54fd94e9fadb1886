package provider

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

const (
	googleBooksName    = "googlebooks"
	googleBooksBaseURL = "https://www.googleapis.com/books/v1"
	googleBooksRate    = 2
)

// GoogleBooks searches the Google Books volumes API. An API key is optional.
type GoogleBooks struct {
	client
}

var _ Adapter = (*GoogleBooks)(nil)

// NewGoogleBooks creates the Google Books adapter.
func NewGoogleBooks(opts ...Option) *GoogleBooks {
	return &GoogleBooks{client: newClient(googleBooksName, googleBooksBaseURL, googleBooksRate, opts)}
}

// Name returns the adapter identifier.
func (g *GoogleBooks) Name() string {
	return googleBooksName
}

// Accepts serves every query with at least one text field.
func (g *GoogleBooks) Accepts(q book.SearchQuery) bool {
	return q.HasText()
}

// Ping tests the connection to Google Books.
func (g *GoogleBooks) Ping(ctx context.Context) error {
	params := url.Values{"q": {"isbn:9780441013593"}, "maxResults": {"1"}}
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	return g.ping(ctx, g.baseURL+"/volumes?"+params.Encode(), nil)
}

type googleBooksPrice struct {
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currencyCode"`
}

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			Categories          []string `json:"categories"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
		SaleInfo struct {
			Saleability string            `json:"saleability"`
			ListPrice   *googleBooksPrice `json:"listPrice"`
			RetailPrice *googleBooksPrice `json:"retailPrice"`
		} `json:"saleInfo"`
	} `json:"items"`
}

// Fetch runs the search against /volumes.
func (g *GoogleBooks) Fetch(ctx context.Context, q book.SearchQuery) ([]book.RawRecord, error) {
	var resp googleBooksResponse
	if err := g.getJSON(ctx, g.searchURL(q), nil, &resp); err != nil {
		return nil, err
	}

	records := make([]book.RawRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		info := item.VolumeInfo
		rec := book.RawRecord{
			Source:      googleBooksName,
			Title:       info.Title,
			Authors:     info.Authors,
			Description: info.Description,
			PublishDate: info.PublishedDate,
			Categories:  info.Categories,
			CoverURL:    secureURL(firstNonEmpty(info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail)),
		}

		// ISBN-13 first so it becomes the identity hint when both are present.
		for _, want := range []string{"ISBN_13", "ISBN_10"} {
			for _, id := range info.IndustryIdentifiers {
				if id.Type == want {
					rec.ISBNs = append(rec.ISBNs, id.Identifier)
				}
			}
		}

		sale := item.SaleInfo
		if sale.Saleability == "FOR_SALE" {
			rec.Condition = "new"
		}
		price := sale.RetailPrice
		if price == nil {
			price = sale.ListPrice
		}
		if price != nil {
			rec.Price = price.Amount
			rec.Currency = price.CurrencyCode
		}

		records = append(records, rec)
	}
	return records, nil
}

func (g *GoogleBooks) searchURL(q book.SearchQuery) string {
	var terms []string
	if q.Title != "" {
		terms = append(terms, "intitle:"+phrase(q.Title))
	}
	if q.Author != "" {
		terms = append(terms, "inauthor:"+phrase(q.Author))
	}
	if q.Subject != "" {
		terms = append(terms, "subject:"+phrase(q.Subject))
	}
	if q.Category != "" {
		terms = append(terms, "subject:"+phrase(q.Category))
	}

	params := url.Values{}
	params.Set("q", strings.Join(terms, " "))
	params.Set("printType", "books")
	params.Set("maxResults", strconv.Itoa(min(g.resultLimit, 40)))
	if g.apiKey != "" {
		params.Set("key", g.apiKey)
	}
	return g.baseURL + "/volumes?" + params.Encode()
}

// phrase quotes multi-word values; Google applies a field prefix to a single
// word otherwise.
func phrase(v string) string {
	v = strings.ReplaceAll(strings.TrimSpace(v), `"`, "")
	if strings.ContainsAny(v, " \t") {
		return `"` + v + `"`
	}
	return v
}

func secureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
