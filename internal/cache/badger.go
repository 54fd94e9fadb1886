package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// badgerPrefix namespaces cache keys so Clear can drop them in one call.
var badgerPrefix = []byte("cache/")

// BadgerStore keeps cache entries in Badger and relies on its native TTL.
type BadgerStore struct {
	db *badger.DB
}

var _ Store = (*BadgerStore)(nil)

// NewBadgerStore opens a Badger database in dir. An empty dir opens an
// in-memory database.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(key string) []byte {
	return append(append([]byte{}, badgerPrefix...), key...)
}

// Get returns a live entry. Badger hides expired entries itself.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read badger cache: %w", err)
	}
	return value, true, nil
}

// Set stores value with a TTL.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(badgerKey(key), value).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("failed to write badger cache: %w", err)
	}
	return nil
}

// Clear drops every cache entry and returns how many live entries there were.
func (s *BadgerStore) Clear(_ context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = badgerPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count badger cache: %w", err)
	}

	if err := s.db.DropPrefix(badgerPrefix); err != nil {
		return 0, fmt.Errorf("failed to clear badger cache: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
