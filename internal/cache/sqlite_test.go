package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsearch/internal/testutil"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	env := testutil.NewTestEnv(t)
	store, err := NewSQLiteStore(env.Path("cache", "test_cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSetGet(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":1}`), time.Hour))
	got, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, store.Set(ctx, "k", []byte(`{"a":2}`), time.Hour))
	got, _, _ = store.Get(ctx, "k")
	assert.Equal(t, `{"a":2}`, string(got))
}

func TestSQLiteStoreExpiry(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	require.NoError(t, store.Set(ctx, "fresh", []byte("1"), 2*time.Hour))
	require.NoError(t, store.Set(ctx, "stale", []byte("2"), 30*time.Minute))

	store.now = func() time.Time { return base.Add(time.Hour) }

	_, ok, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, ok, "expired entries are misses")

	_, ok, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteStoreClear(t *testing.T) {
	store := setupSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", []byte("1"), time.Hour))
	require.NoError(t, store.Set(ctx, "b", []byte("2"), time.Hour))

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, ok, _ := store.Get(ctx, "a")
	assert.False(t, ok)
}

func TestSQLiteStoreReopen(t *testing.T) {
	env := testutil.NewTestEnv(t)
	path := env.Path("persist.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, ok, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", string(got))
	assert.Equal(t, path, second.Path())
}
