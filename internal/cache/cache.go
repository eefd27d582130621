// Package cache keeps rendered catalog responses in Redis. A nil *Cache is a
// valid, always-missing cache so the server runs unchanged without Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "catalog:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Logger   *log.Logger
}

// Cache stores response bodies by request key.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// New connects to Redis and verifies it with Ping.
func New(ctx context.Context, opts Options) (*Cache, error) {
	if opts.Addr == "" {
		return nil, errors.New("cache: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: connect redis: %w", err)
	}
	c := NewWithClient(client, opts.TTL, opts.Logger)
	c.logger.Printf("cache: connected to redis at %s (ttl=%s)", opts.Addr, c.ttl)
	return c, nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *redis.Client, ttl time.Duration, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// Key builds a stable key from a request path and its query. url.Values.Encode
// sorts by parameter name, so equivalent requests share a key.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return KeyPrefix + path
	}
	return KeyPrefix + path + "?" + query.Encode()
}

// Get returns the cached body for key. Misses and Redis errors both report false.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Printf("cache: get %s failed: %v", key, err)
		}
		return nil, false
	}
	return val, true
}

// Set stores body under key with the configured TTL. Failures are logged.
func (c *Cache) Set(ctx context.Context, key string, body []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		c.logger.Printf("cache: set %s failed: %v", key, err)
	}
}

// Invalidate deletes every key under KeyPrefix and reports how many went.
func (c *Cache) Invalidate(ctx context.Context) (int, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	deleted := 0
	iter := c.client.Scan(ctx, 0, KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("cache: delete %s: %w", iter.Val(), err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("cache: scan: %w", err)
	}
	c.logger.Printf("cache: invalidated %d key(s)", deleted)
	return deleted, nil
}

// TTL reports how long entries live.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// Enabled reports whether the cache is backed by Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
