package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lepinkainen/shelfsearch/internal/book"
)

const (
	openLibraryName     = "openlibrary"
	openLibraryBaseURL  = "https://openlibrary.org"
	openLibraryCoverURL = "https://covers.openlibrary.org/b/id/%d-L.jpg"
	openLibraryRate     = 1
	openLibraryFields   = "key,title,author_name,first_publish_year,subject,cover_i"

	// maxOpenLibrarySubjects bounds the subject list; popular works carry hundreds.
	maxOpenLibrarySubjects = 25
)

// OpenLibrary searches the openlibrary.org catalogue. Results are works, not
// editions, so no ISBN is reported as an identity hint.
type OpenLibrary struct {
	client
}

// Compile-time check that OpenLibrary implements Adapter.
var _ Adapter = (*OpenLibrary)(nil)

// NewOpenLibrary creates the OpenLibrary adapter.
func NewOpenLibrary(opts ...Option) *OpenLibrary {
	return &OpenLibrary{client: newClient(openLibraryName, openLibraryBaseURL, openLibraryRate, opts)}
}

// Name returns the adapter identifier.
func (o *OpenLibrary) Name() string {
	return openLibraryName
}

// Accepts serves every query with at least one text field. Category is sent
// as a subject.
func (o *OpenLibrary) Accepts(q book.SearchQuery) bool {
	return q.HasText()
}

// Ping tests the connection to OpenLibrary.
func (o *OpenLibrary) Ping(ctx context.Context) error {
	return o.ping(ctx, o.baseURL, nil)
}

type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Key              string   `json:"key"`
		Title            string   `json:"title"`
		AuthorName       []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Subject          []string `json:"subject"`
		CoverI           int      `json:"cover_i"`
	} `json:"docs"`
}

// Fetch runs the search against /search.json.
func (o *OpenLibrary) Fetch(ctx context.Context, q book.SearchQuery) ([]book.RawRecord, error) {
	var resp openLibrarySearchResponse
	if err := o.getJSON(ctx, o.searchURL(q), nil, &resp); err != nil {
		return nil, err
	}

	records := make([]book.RawRecord, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		rec := book.RawRecord{
			Source:      openLibraryName,
			Title:       doc.Title,
			Authors:     doc.AuthorName,
			PublishYear: doc.FirstPublishYear,
			Subjects:    doc.Subject,
		}
		if len(rec.Subjects) > maxOpenLibrarySubjects {
			rec.Subjects = rec.Subjects[:maxOpenLibrarySubjects]
		}
		if doc.CoverI > 0 {
			rec.CoverURL = fmt.Sprintf(openLibraryCoverURL, doc.CoverI)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (o *OpenLibrary) searchURL(q book.SearchQuery) string {
	params := url.Values{}
	if q.Title != "" {
		params.Set("title", q.Title)
	}
	if q.Author != "" {
		params.Set("author", q.Author)
	}

	subject := q.Subject
	if subject == "" {
		subject = q.Category
	} else if q.Category != "" {
		params.Set("q", q.Category)
	}
	if subject != "" {
		params.Set("subject", subject)
	}

	params.Set("fields", openLibraryFields)
	params.Set("limit", strconv.Itoa(o.resultLimit))
	return o.baseURL + "/search.json?" + params.Encode()
}
