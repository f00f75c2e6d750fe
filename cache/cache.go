// Package cache stores built outlines keyed by document content and rules.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Entry is one cached outline, serialized by the caller.
type Entry struct {
	Key      string        `json:"key"`
	Body     []byte        `json:"body"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
}

// IsExpired returns true if the entry has outlived its TTL.
func (e *Entry) IsExpired() bool {
	return e.TTL > 0 && time.Since(e.StoredAt) >= e.TTL
}

// Cache is implemented by MemoryCache and RedisCache.
// Get returns a nil entry and nil error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Config holds cache configuration.
type Config struct {
	TTL  time.Duration
	Size int
}

// DefaultConfig returns a cache config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		TTL:  10 * time.Minute,
		Size: 1024,
	}
}

// applyDefaults returns a new Config with default values applied for any zero-valued fields.
func applyDefaults(config Config) Config {
	defaults := DefaultConfig()
	if config.TTL == 0 {
		config.TTL = defaults.TTL
	}
	if config.Size == 0 {
		config.Size = defaults.Size
	}
	return config
}

// Key content-addresses one build: the document name, its content and the
// fingerprint of the rule sets it is built with.
func Key(name, content, rulesFingerprint string) string {
	h := sha256.New()
	h.Write([]byte(rulesFingerprint))
	h.Write([]byte{0})
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
