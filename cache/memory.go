package cache

import (
	"context"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache is a size-bounded in-memory cache with per-entry expiry.
type MemoryCache struct {
	lru    *expirable.LRU[string, *Entry]
	config Config
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(config Config) *MemoryCache {
	config = applyDefaults(config)
	return &MemoryCache{
		lru:    expirable.NewLRU[string, *Entry](config.Size, nil, config.TTL),
		config: config,
	}
}

// Get retrieves an entry from the cache.
// Returns nil if the entry doesn't exist or has expired.
func (mc *MemoryCache) Get(ctx context.Context, key string) (*Entry, error) {
	entry, ok := mc.lru.Get(key)
	if !ok {
		return nil, nil
	}
	if entry.IsExpired() {
		mc.lru.Remove(key)
		return nil, nil
	}
	return copyEntry(entry), nil
}

// Set stores a copy of entry in the cache.
func (mc *MemoryCache) Set(ctx context.Context, entry *Entry) error {
	stored := copyEntry(entry)
	if stored.TTL == 0 {
		stored.TTL = mc.config.TTL
	}
	if stored.StoredAt.IsZero() {
		stored.StoredAt = time.Now()
	}
	mc.lru.Add(stored.Key, stored)
	return nil
}

// Delete removes an entry from the cache.
func (mc *MemoryCache) Delete(ctx context.Context, key string) error {
	mc.lru.Remove(key)
	return nil
}

// Clear removes all entries from the cache.
func (mc *MemoryCache) Clear(ctx context.Context) error {
	mc.lru.Purge()
	return nil
}

// Len returns the number of entries held, expired ones included until evicted.
func (mc *MemoryCache) Len() int {
	return mc.lru.Len()
}

// Close releases the cache's entries.
func (mc *MemoryCache) Close() error {
	mc.lru.Purge()
	return nil
}

func copyEntry(e *Entry) *Entry {
	c := *e
	c.Body = slices.Clone(e.Body)
	return &c
}
