package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/lepinkainen/shelfsearch/internal/affiliate"
	"github.com/lepinkainen/shelfsearch/internal/book"
	"github.com/lepinkainen/shelfsearch/internal/cache"
	"github.com/lepinkainen/shelfsearch/internal/merge"
	"github.com/lepinkainen/shelfsearch/internal/metrics"
	"github.com/lepinkainen/shelfsearch/internal/normalize"
)

const noProviderMessage = "no provider accepts this query"

// Service answers search queries.
type Service struct {
	coordinator *Coordinator
	merger      *merge.Merger
	enricher    *affiliate.Enricher
	cache       cache.ReadThrough
	pageSize    int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMerger replaces the default-priority merger.
func WithMerger(m *merge.Merger) Option {
	return func(s *Service) {
		if m != nil {
			s.merger = m
		}
	}
}

// WithEnricher attaches affiliate enrichment for page items.
func WithEnricher(e *affiliate.Enricher) Option {
	return func(s *Service) {
		s.enricher = e
	}
}

// WithCache sets the response cache. Without it every search is a miss.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache.Store = store
		s.cache.TTL = ttl
	}
}

// WithPageSize sets the number of items per page.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service over the given coordinator.
func NewService(coordinator *Coordinator, opts ...Option) *Service {
	s := &Service{
		coordinator: coordinator,
		merger:      merge.NewMerger(merge.DefaultPriority),
		pageSize:    DefaultPageSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache.Store == nil {
		s.cache.Store = cache.Degraded{}
	}
	s.cache.Logger = s.logger
	return s
}

// Search runs q and returns one page of merged results. The only error is
// a *errors.ValidationError, raised before any provider is called; provider
// and cache failures degrade the result instead.
func (s *Service) Search(ctx context.Context, q book.SearchQuery) (book.SearchResult, error) {
	start := time.Now()

	q = q.Normalized()
	if verr := q.Validate(); verr != nil {
		return book.EmptyResult(max(q.Page, 1)), verr
	}

	key := q.CacheKey()
	result, hit, err := cache.GetOrFetch(ctx, s.cache, key, func(ctx context.Context) (book.SearchResult, error) {
		return s.compute(ctx, q), nil
	}, cacheable)
	if err != nil {
		s.logger.Error("Search failed unexpectedly", "key", key, "error", err)
		result = book.EmptyResult(q.Page)
		result.Errors = append(result.Errors, err.Error())
	}

	label := "miss"
	if hit {
		label = "hit"
	}
	metrics.SearchDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	s.logger.Info("Search completed",
		"key", key,
		"cache", label,
		"results", result.Pagination.TotalResults,
		"errors", len(result.Errors))

	return result, nil
}

// cacheable stores only results where at least one provider answered.
func cacheable(r book.SearchResult) bool {
	return len(r.SourceStatus) > 0 && !r.AllFailed()
}

func (s *Service) compute(ctx context.Context, q book.SearchQuery) book.SearchResult {
	outcomes := s.coordinator.FanOut(ctx, q)

	result := book.EmptyResult(q.Page)
	if len(outcomes) == 0 {
		s.logger.Warn("No provider accepts query", "query", q.CacheKey())
		result.Errors = append(result.Errors, noProviderMessage)
		return result
	}

	var books []book.CanonicalBook
	for _, o := range outcomes {
		result.SourceStatus[o.Provider] = o.OK()
		if !o.OK() {
			result.Errors = append(result.Errors, o.Err.Error())
			continue
		}
		books = append(books, normalize.Records(o.Records)...)
	}

	merged := s.merger.Dedupe(books)
	ordered := Sort(Filter(merged, q), q.Sort)
	items, pagination := Paginate(ordered, q.Page, s.pageSize)

	result.Items = s.enricher.Enrich(ctx, items)
	result.Pagination = pagination

	s.logger.Debug("Search computed",
		"providers", len(outcomes),
		"records", len(books),
		"merged", len(merged),
		"filtered", len(ordered))

	return result
}
