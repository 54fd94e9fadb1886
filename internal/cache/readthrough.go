package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"github.com/lepinkainen/shelfsearch/internal/metrics"
)

// FetchFunc computes a value on a cache miss.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// ReadThrough bundles what GetOrFetch needs.
type ReadThrough struct {
	Store  Store
	TTL    time.Duration
	Logger *slog.Logger
}

// GetOrFetch returns the cached value for key or computes it with fetch.
// Store failures never fail the call: a failed read is a miss and a failed
// write is logged. shouldCache, when non-nil, can veto storing a value.
// The bool result reports a cache hit.
func GetOrFetch[T any](ctx context.Context, rt ReadThrough, key string, fetch FetchFunc[T], shouldCache func(T) bool) (T, bool, error) {
	var zero T

	logger := rt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := rt.Store
	if store == nil {
		store = Degraded{}
	}
	ttl := rt.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cached, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warn("Cache read failed, fetching directly", "key", key, "error", err)
	case ok:
		var result T
		if err := json.Unmarshal(cached, &result); err == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			logger.Debug("Cache hit", "key", key)
			return result, true, nil
		}
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.Warn("Failed to unmarshal cached data, will refetch", "key", key, "error", err)
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		logger.Debug("Cache miss, fetching data", "key", key)
	}

	data, err := fetch(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("failed to fetch data: %w", err)
	}

	if shouldCache != nil && !shouldCache(data) {
		metrics.CacheWrites.WithLabelValues("skipped").Inc()
		logger.Debug("Skipping cache store per policy", "key", key)
		return data, false, nil
	}

	payload, err := json.Marshal(data)
	if err != nil {
		metrics.CacheWrites.WithLabelValues("error").Inc()
		logger.Warn("Failed to marshal data for caching", "key", key, "error", err)
		return data, false, nil
	}
	if err := store.Set(ctx, key, payload, ttl); err != nil {
		metrics.CacheWrites.WithLabelValues("error").Inc()
		logger.Warn("Failed to cache data", "key", key, "error", err)
		return data, false, nil
	}

	metrics.CacheWrites.WithLabelValues("stored").Inc()
	logger.Debug("Data cached successfully", "key", key, "ttl", ttl)
	return data, false, nil
}
