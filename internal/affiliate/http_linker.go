package affiliate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lepinkainen/shelfsearch/internal/ratelimit"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPLinker asks a remote link-building service for the affiliate URL.
type HTTPLinker struct {
	endpoint    string
	httpClient  HTTPDoer
	rateLimiter *ratelimit.Limiter
}

var _ Linker = (*HTTPLinker)(nil)

// HTTPLinkerOption configures an HTTPLinker.
type HTTPLinkerOption func(*HTTPLinker)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) HTTPLinkerOption {
	return func(l *HTTPLinker) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithRateLimiter sets a custom rate limiter.
func WithRateLimiter(limiter *ratelimit.Limiter) HTTPLinkerOption {
	return func(l *HTTPLinker) {
		if limiter != nil {
			l.rateLimiter = limiter
		}
	}
}

// NewHTTPLinker creates a linker posting to endpoint.
func NewHTTPLinker(endpoint string, opts ...HTTPLinkerOption) *HTTPLinker {
	l := &HTTPLinker{
		endpoint:    strings.TrimSpace(endpoint),
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		rateLimiter: ratelimit.New("affiliate", 10),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type linkRequest struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
}

type linkResponse struct {
	URL string `json:"url"`
}

// BuildLink posts {title, authors} and expects {url}.
func (l *HTTPLinker) BuildLink(ctx context.Context, title string, authors []string) (string, error) {
	if l.endpoint == "" {
		return "", ErrNotConfigured
	}
	if err := l.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	if authors == nil {
		authors = []string{}
	}
	body, err := json.Marshal(linkRequest{Title: title, Authors: authors})
	if err != nil {
		return "", fmt.Errorf("encoding link request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating link request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("link request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("link service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out linkResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding link response: %w", err)
	}
	if out.URL == "" {
		return "", errors.New("link service returned no url")
	}
	return out.URL, nil
}
