// Package cache keeps optimizer results in Redis so repeated documents skip
// the guest entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wippyai/svgtidy-playground"
)

const keyPrefix = "svgtidy:opt:" // svgtidy:opt:{sha256 of input}

// Cache stores optimized output keyed by the input's digest.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key returns the Redis key for svg.
func Key(svg string) string {
	sum := sha256.Sum256([]byte(svg))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get returns the cached output for svg and whether it was present.
func (c *Cache) Get(ctx context.Context, svg string) (string, bool, error) {
	out, err := c.client.Get(ctx, Key(svg)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get cached result: %w", err)
	}
	return out, true, nil
}

func (c *Cache) Set(ctx context.Context, svg, out string) error {
	if err := c.client.Set(ctx, Key(svg), out, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Stats counts cache outcomes.
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// Optimizer wraps another optimizer with the cache. Only successful results
// are stored; Redis failures are logged and the call falls through.
type Optimizer struct {
	next  svgtidy.Optimizer
	cache *Cache
	log   *zap.Logger

	hits, misses, errors atomic.Int64
}

func Wrap(next svgtidy.Optimizer, c *Cache, log *zap.Logger) *Optimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Optimizer{next: next, cache: c, log: log}
}

func (o *Optimizer) Optimize(ctx context.Context, svg string) (string, error) {
	out, ok, err := o.cache.Get(ctx, svg)
	switch {
	case err != nil:
		o.errors.Add(1)
		o.log.Warn("cache lookup failed", zap.Error(err))
	case ok:
		o.hits.Add(1)
		return out, nil
	default:
		o.misses.Add(1)
	}

	out, err = o.next.Optimize(ctx, svg)
	if err != nil {
		return "", err
	}
	if err := o.cache.Set(ctx, svg, out); err != nil {
		o.errors.Add(1)
		o.log.Warn("cache store failed", zap.Error(err))
	}
	return out, nil
}

func (o *Optimizer) Stats() Stats {
	return Stats{
		Hits:   o.hits.Load(),
		Misses: o.misses.Load(),
		Errors: o.errors.Load(),
	}
}
