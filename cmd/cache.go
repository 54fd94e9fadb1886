package cmd

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/shelfsearch/internal/cache"
	"github.com/lepinkainen/shelfsearch/internal/config"
)

// CacheCmd represents the cache command and its subcommands
type CacheCmd struct {
	Clear CacheClearCmd `cmd:"" help:"Remove every cached search result"`
	Purge CachePurgeCmd `cmd:"" help:"Remove expired cached search results"`
}

// CacheClearCmd represents the cache clear subcommand
type CacheClearCmd struct{}

// CachePurgeCmd represents the cache purge subcommand
type CachePurgeCmd struct{}

func (c *CacheClearCmd) Run(ctx context.Context) error {
	settings := config.Load()
	store := openStore(settings, slog.Default())
	defer func() { _ = store.Close() }()

	slog.Info("Clearing cache", "backend", settings.Cache.Backend)

	rowsDeleted, err := store.Clear(ctx)
	if err != nil {
		return err
	}

	slog.Info("Cache cleared", "backend", settings.Cache.Backend, "rows_deleted", rowsDeleted)
	return nil
}

func (c *CachePurgeCmd) Run(ctx context.Context) error {
	settings := config.Load()
	store := openStore(settings, slog.Default())
	defer func() { _ = store.Close() }()

	purger, ok := store.(cache.Purger)
	if !ok {
		slog.Info("Cache backend expires entries on its own, nothing to purge", "backend", settings.Cache.Backend)
		return nil
	}

	rowsDeleted, err := purger.PurgeExpired(ctx)
	if err != nil {
		return err
	}

	slog.Info("Expired cache entries purged", "backend", settings.Cache.Backend, "rows_deleted", rowsDeleted)
	return nil
}
