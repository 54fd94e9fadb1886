// Package affiliate attaches storefront links to search results.
package affiliate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultSearchBaseURL is the storefront search page used by SearchLinker.
const DefaultSearchBaseURL = "https://www.amazon.com/s"

// ErrNotConfigured is returned when a linker lacks the settings it needs.
var ErrNotConfigured = errors.New("affiliate linker not configured")

// Linker builds an affiliate URL for one book.
type Linker interface {
	BuildLink(ctx context.Context, title string, authors []string) (string, error)
}

// SearchLinker builds a storefront search URL tagged with an affiliate id.
type SearchLinker struct {
	baseURL string
	tag     string
}

var _ Linker = (*SearchLinker)(nil)

// NewSearchLinker creates a SearchLinker. An empty baseURL uses
// DefaultSearchBaseURL.
func NewSearchLinker(baseURL, tag string) *SearchLinker {
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	return &SearchLinker{baseURL: baseURL, tag: strings.TrimSpace(tag)}
}

// BuildLink returns baseURL?k=<title first-author>&tag=<tag>.
func (l *SearchLinker) BuildLink(_ context.Context, title string, authors []string) (string, error) {
	if l.tag == "" {
		return "", ErrNotConfigured
	}

	u, err := url.Parse(l.baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing affiliate base URL: %w", err)
	}

	keywords := strings.TrimSpace(title)
	if len(authors) > 0 {
		keywords = strings.TrimSpace(keywords + " " + authors[0])
	}
	if keywords == "" {
		return "", errors.New("no title to link")
	}

	q := u.Query()
	q.Set("k", keywords)
	q.Set("tag", l.tag)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
