// Package kvcache is a small in-process cache with per-entry expiry,
// backed by an in-memory Badger instance.
package kvcache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache stores string values for a bounded time.
// A Cache created with a zero TTL is disabled: Get always misses and Set
// does nothing, so callers never need a nil check.
type Cache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *slog.Logger
}

// New opens an in-memory cache whose entries live for ttl.
// Badger tracks expiry with one-second resolution.
func New(ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if ttl < 0 {
		return nil, fmt.Errorf("kvcache: negative ttl %s", ttl)
	}
	c := &Cache{ttl: ttl, logger: logger}
	if ttl == 0 {
		return c, nil
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil).
		WithMemTableSize(4 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger: %w", err)
	}
	c.db = db

	if logger != nil {
		logger.Debug("kvcache opened", "ttl", ttl)
	}
	return c, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c.db != nil
}

// TTL returns the lifetime of an entry.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (string, bool, error) {
	if c.db == nil {
		return "", false, nil
	}

	var value string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kvcache get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key for the cache TTL.
func (c *Cache) Set(key, value string) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte(value)).WithTTL(c.ttl))
	})
	if err != nil {
		return fmt.Errorf("kvcache set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	if c.db == nil {
		return nil
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("kvcache delete %s: %w", key, err)
	}
	return nil
}

// Close releases the in-memory database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	if c.logger != nil {
		c.logger.Debug("closing kvcache")
	}
	return c.db.Close()
}
