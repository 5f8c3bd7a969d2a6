// ABOUTME: In-memory cache with TTL-based expiration
// ABOUTME: Thread-safe generic cache using sync.Map, expired entries dropped on read

package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry[V any] struct {
	data      V
	expiresAt time.Time
}

// Cache holds values for a fixed TTL
type Cache[K comparable, V any] struct {
	store  sync.Map
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// New creates a cache whose entries live for ttl
func New[K comparable, V any](ttl time.Duration, logger *slog.Logger) *Cache[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache[K, V]{ttl: ttl, now: time.Now, logger: logger}
}

// Get returns the value for key if present and not expired
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	val, ok := c.store.Load(key)
	if !ok {
		c.logger.Debug("Cache miss", "key", key)
		return zero, false
	}

	e := val.(entry[V])
	if c.now().After(e.expiresAt) {
		c.store.CompareAndDelete(key, val)
		c.logger.Debug("Cache expired", "key", key)
		return zero, false
	}

	c.logger.Debug("Cache hit", "key", key)
	return e.data, true
}

// Set stores value under key for the cache TTL
func (c *Cache[K, V]) Set(key K, value V) {
	c.store.Store(key, entry[V]{data: value, expiresAt: c.now().Add(c.ttl)})
}

// Delete removes key
func (c *Cache[K, V]) Delete(key K) {
	c.store.Delete(key)
}

// Clear removes every entry
func (c *Cache[K, V]) Clear() {
	c.store.Range(func(key, _ any) bool {
		c.store.Delete(key)
		return true
	})
}

// Len counts entries that have not expired
func (c *Cache[K, V]) Len() int {
	now := c.now()
	n := 0
	c.store.Range(func(_, val any) bool {
		if !now.After(val.(entry[V]).expiresAt) {
			n++
		}
		return true
	})
	return n
}
