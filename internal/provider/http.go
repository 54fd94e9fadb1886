package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	apperrors "github.com/lepinkainen/shelfsearch/internal/errors"
	"github.com/lepinkainen/shelfsearch/internal/ratelimit"
)

const (
	defaultHTTPTimeout   = 10 * time.Second
	defaultResultLimit   = 20
	defaultRetryAttempts = 1
)

// errNotFound marks a 404 so adapters that use it for "no results" can tell
// it apart from other rejections.
var errNotFound = errors.New("not found")

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// client holds the HTTP plumbing shared by every adapter.
type client struct {
	name          string
	baseURL       string
	apiKey        string
	httpClient    HTTPDoer
	rateLimiter   *ratelimit.Limiter
	retryAttempts int
	resultLimit   int
}

// Option is a functional option for configuring an adapter.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(cl *client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithBaseURL overrides the upstream base URL.
func WithBaseURL(base string) Option {
	return func(cl *client) {
		if base != "" {
			cl.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithAPIKey sets the upstream API key.
func WithAPIKey(key string) Option {
	return func(cl *client) {
		cl.apiKey = strings.TrimSpace(key)
	}
}

// WithRateLimiter sets a custom rate limiter.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(cl *client) {
		if limiter != nil {
			cl.rateLimiter = limiter
		}
	}
}

// WithRetryAttempts sets how many times a transport failure is attempted.
func WithRetryAttempts(attempts int) Option {
	return func(cl *client) {
		if attempts > 0 {
			cl.retryAttempts = attempts
		}
	}
}

// WithResultLimit caps the number of records requested per call.
func WithResultLimit(n int) Option {
	return func(cl *client) {
		if n > 0 {
			cl.resultLimit = n
		}
	}
}

func newClient(name, baseURL string, ratePerSecond float64, opts []Option) client {
	c := client{
		name:          name,
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
		rateLimiter:   ratelimit.New(name, ratePerSecond),
		retryAttempts: defaultRetryAttempts,
		resultLimit:   defaultResultLimit,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// getJSON fetches endpoint and decodes the body into target. Every error is
// a *ProviderError carrying this adapter's name.
func (c *client) getJSON(ctx context.Context, endpoint string, header http.Header, target any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		// the limiter reports a deadline it cannot meet with its own error
		if errors.Is(err, context.Canceled) {
			return c.classify(err)
		}
		return apperrors.NewProviderError(c.name, apperrors.KindTimeout, err)
	}

	var lastErr *apperrors.ProviderError
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		err := c.doJSONRequest(ctx, endpoint, header, target)
		if err == nil {
			return nil
		}
		lastErr = c.classify(err)
		if lastErr.Kind != apperrors.KindTransport || attempt == c.retryAttempts || ctx.Err() != nil {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return c.classify(ctx.Err())
		case <-time.After(backoffDelay(attempt)):
		}
	}
	return lastErr
}

func (c *client) doJSONRequest(ctx context.Context, endpoint string, header http.Header, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.NewProviderError(c.name, apperrors.KindTransport, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// ping issues a GET and accepts any non-error status.
func (c *client) ping(ctx context.Context, endpoint string, header http.Header) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp); err != nil {
		return c.classify(err)
	}
	return nil
}

// statusError maps a non-2xx response onto a ProviderError: 429 and other
// 4xx are upstream rejections, everything else is a transport failure.
func statusError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	detail := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		rl := apperrors.NewRateLimitErrorWithRetry(
			fmt.Sprintf("unexpected status %d", resp.StatusCode),
			parseRetryAfter(resp.Header.Get("Retry-After")),
		)
		return apperrors.NewProviderError("", apperrors.KindRejected, rl)
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NewProviderError("", apperrors.KindRejected, fmt.Errorf("%w: %w", errNotFound, detail))
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return apperrors.NewProviderError("", apperrors.KindRejected, detail)
	default:
		return apperrors.NewProviderError("", apperrors.KindTransport, detail)
	}
}

func (c *client) classify(err error) *apperrors.ProviderError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return apperrors.NewProviderError(c.name, apperrors.KindTimeout, err)
	}
	return apperrors.AsProviderError(c.name, err)
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if when, err := http.ParseTime(v); err == nil {
		if d := time.Until(when); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}

func backoffDelay(attempt int) time.Duration {
	// exponential backoff capped at 2 seconds
	delay := time.Duration(1<<uint(attempt-1)) * 250 * time.Millisecond
	if delay > 2*time.Second {
		return 2 * time.Second
	}
	return delay
}
