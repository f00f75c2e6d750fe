package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "regexpoutline:"

// RedisCache is a Redis-based cache implementation.
type RedisCache struct {
	client *redis.Client
	config Config
	prefix string
}

// NewRedisCacheFromURL creates a new Redis cache from a Redis URL.
// URL format: redis://[user[:password]@]host[:port][/db][?option=value]
func NewRedisCacheFromURL(redisURL string, prefix string, config Config) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return NewRedisCacheWithClient(redis.NewClient(opts), prefix, config), nil
}

// NewRedisCacheWithClient creates a Redis cache with an existing client.
func NewRedisCacheWithClient(client *redis.Client, prefix string, config Config) *RedisCache {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCache{
		client: client,
		config: applyDefaults(config),
		prefix: prefix,
	}
}

// Get retrieves an entry from Redis.
// Returns nil if the entry doesn't exist or has expired.
func (rc *RedisCache) Get(ctx context.Context, key string) (*Entry, error) {
	redisKey := rc.makeKey(key)

	data, err := rc.client.Get(ctx, redisKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
	}

	if entry.IsExpired() {
		rc.client.Del(ctx, redisKey)
		return nil, nil
	}

	return &entry, nil
}

// Set stores an entry in Redis, expiring with its TTL.
func (rc *RedisCache) Set(ctx context.Context, entry *Entry) error {
	stored := *entry
	if stored.TTL == 0 {
		stored.TTL = rc.config.TTL
	}
	if stored.StoredAt.IsZero() {
		stored.StoredAt = time.Now()
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	if err := rc.client.Set(ctx, rc.makeKey(stored.Key), data, stored.TTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete removes an entry from Redis.
func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, rc.makeKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Clear removes all entries with the configured prefix.
func (rc *RedisCache) Clear(ctx context.Context) error {
	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis clear failed: %w", err)
		}
	}

	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Ping checks if Redis connection is healthy.
func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// makeKey creates a Redis key with the configured prefix.
func (rc *RedisCache) makeKey(key string) string {
	return rc.prefix + key
}
