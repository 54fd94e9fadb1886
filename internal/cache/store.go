// Package cache stores serialized search results for a bounded time.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long a cached search result stays fresh.
const DefaultTTL = time.Hour

// Store is a key/value store with per-entry expiry.
type Store interface {
	// Get returns the value for key. ok is false on a miss or an expired entry.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value for ttl, replacing any previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int64, error)
	Close() error
}

// Purger is implemented by stores that keep expired entries until purged.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Degraded is the store used when no backend is available: every Get
// misses and every Set is dropped.
type Degraded struct{}

var _ Store = Degraded{}

func (Degraded) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Degraded) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Degraded) Clear(context.Context) (int64, error) { return 0, nil }

func (Degraded) Close() error { return nil }
