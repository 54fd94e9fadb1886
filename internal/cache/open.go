package cache

import (
	"fmt"
	"log/slog"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendNone   = "none"
)

// Config selects and locates the cache backend.
type Config struct {
	Backend    string
	SQLitePath string
	BadgerDir  string
}

// Open returns the configured store. A backend that cannot be opened is
// logged and replaced by Degraded so searches keep working uncached.
func Open(cfg Config, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := openBackend(cfg)
	if err != nil {
		logger.Warn("Failed to initialize cache, continuing without it", "backend", cfg.Backend, "error", err)
		return Degraded{}
	}
	return store
}

func openBackend(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "./cache.db"
		}
		return NewSQLiteStore(path)
	case BackendBadger:
		return NewBadgerStore(cfg.BadgerDir)
	case BackendNone:
		return Degraded{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
