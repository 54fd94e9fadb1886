package affiliate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lepinkainen/shelfsearch/internal/book"
	"github.com/lepinkainen/shelfsearch/internal/metrics"
)

const (
	defaultLinkTimeout     = 3 * time.Second
	defaultLinkConcurrency = 8
)

// Enricher fills AffiliateURL on a page of results.
type Enricher struct {
	linker      Linker
	timeout     time.Duration
	concurrency int
	logger      *slog.Logger
}

// EnricherOption configures an Enricher.
type EnricherOption func(*Enricher)

// WithTimeout bounds each BuildLink call.
func WithTimeout(d time.Duration) EnricherOption {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithConcurrency bounds the number of concurrent BuildLink calls.
func WithConcurrency(n int) EnricherOption {
	return func(e *Enricher) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) EnricherOption {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEnricher creates an Enricher. A nil linker disables enrichment.
func NewEnricher(linker Linker, opts ...EnricherOption) *Enricher {
	e := &Enricher{
		linker:      linker,
		timeout:     defaultLinkTimeout,
		concurrency: defaultLinkConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich returns a copy of items with AffiliateURL set where a link could be
// built. Any failure leaves that item's AffiliateURL nil; Enrich itself
// never fails.
func (e *Enricher) Enrich(ctx context.Context, items []book.CanonicalBook) []book.CanonicalBook {
	out := make([]book.CanonicalBook, len(items))
	copy(out, items)
	if e == nil || e.linker == nil || len(out) == 0 {
		return out
	}

	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for i := range out {
		g.Go(func() error {
			link, err := e.buildOne(ctx, out[i])
			if err != nil {
				metrics.AffiliateLinks.WithLabelValues("failed").Inc()
				if !errors.Is(err, ErrNotConfigured) {
					e.logger.Debug("Affiliate link failed", "title", out[i].Title, "error", err)
				}
				return nil
			}
			metrics.AffiliateLinks.WithLabelValues("ok").Inc()
			out[i].AffiliateURL = &link
			return nil
		})
	}
	_ = g.Wait()
	return out
}

type linkResult struct {
	link string
	err  error
}

// buildOne runs BuildLink under the per-item timeout. A linker that ignores
// its context is abandoned when the timeout fires.
func (e *Enricher) buildOne(ctx context.Context, b book.CanonicalBook) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan linkResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- linkResult{err: fmt.Errorf("linker panic: %v", r)}
			}
		}()
		link, err := e.linker.BuildLink(ctx, b.Title, b.Authors)
		if err == nil && link == "" {
			err = errors.New("empty link")
		}
		done <- linkResult{link: link, err: err}
	}()

	select {
	case r := <-done:
		return r.link, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
