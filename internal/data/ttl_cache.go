package data

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jonboulle/clockwork"
)

// CacheConfig holds configuration for the TTL cache
type CacheConfig struct {
	Shards int
}

// DefaultCacheConfig returns sensible default configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Shards: 16,
	}
}

// Entry is a cached value with its expiry
type Entry struct {
	Value     any
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the entry is no longer valid at now
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// Cache is an in-memory key/value store with per-entry TTL.
//
// Reads after ExpiresAt behave as misses, but the expired value is kept so
// callers can still serve it through Stale when the upstream is down. There is
// no size bound: keys come from a small enumerable set of request tuples.
type Cache struct {
	shards []*shard
	clock  clockwork.Clock
}

// NewCache creates a cache with default config and the wall clock
func NewCache() *Cache {
	return NewCacheWithConfig(DefaultCacheConfig(), clockwork.NewRealClock())
}

// NewCacheWithConfig creates a cache with custom config and clock
func NewCacheWithConfig(config CacheConfig, clock clockwork.Clock) *Cache {
	if config.Shards <= 0 {
		config.Shards = DefaultCacheConfig().Shards
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	shards := make([]*shard, config.Shards)
	for i := range shards {
		shards[i] = &shard{entries: make(map[string]Entry)}
	}

	return &Cache{
		shards: shards,
		clock:  clock,
	}
}

// Clock returns the clock the cache measures expiry with
func (c *Cache) Clock() clockwork.Clock {
	return c.clock
}

func (c *Cache) shardFor(key string) *shard {
	return c.shards[xxhash.Sum64String(key)%uint64(len(c.shards))]
}

// Get returns the value for key if it has not expired
func (c *Cache) Get(key string) (any, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists || entry.Expired(c.clock.Now()) {
		return nil, false
	}
	return entry.Value, true
}

// Stale returns the last value stored for key, expired or not
func (c *Cache) Stale(key string) (any, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.entries[key]
	if !exists {
		return nil, false
	}
	return entry.Value, true
}

// Set stores value under key for ttl and returns value unchanged
func (c *Cache) Set(key string, value any, ttl time.Duration) any {
	now := c.clock.Now()
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Value:     value,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	}
	return value
}

// Delete removes key
func (c *Cache) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len returns the number of stored entries, expired ones included
func (c *Cache) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// Purge drops entries that expired more than retention ago and returns how many were dropped
func (c *Cache) Purge(retention time.Duration) int {
	cutoff := c.clock.Now().Add(-retention)
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for key, entry := range s.entries {
			if entry.Expired(cutoff) {
				delete(s.entries, key)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// GetAs is Get with a typed result
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// StaleAs is Stale with a typed result
func StaleAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Stale(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Store is Set with a typed result, for store-and-return call chains
func Store[T any](c *Cache, key string, value T, ttl time.Duration) T {
	c.Set(key, value, ttl)
	return value
}
