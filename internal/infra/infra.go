// Package infra provides shared infrastructure components used across
// the application: caching, rate limiting, and HTTP utilities.
package infra

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// --- TTL cache ---

// Store is the cache contract consumers depend on.
type Store[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Invalidate(key K)
	Flush()
	Len() int
}

// Cache is a thread-safe, size-bounded cache whose entries expire after a
// fixed TTL.
type Cache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewCache creates a cache holding at most size entries for ttl each.
// A size of 0 means unbounded; a ttl of 0 means entries never expire.
func NewCache[K comparable, V any](size int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		lru: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Get retrieves a value. Returns the zero value, false if absent or expired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Set stores a value with the cache TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Invalidate removes a key.
func (c *Cache[K, V]) Invalidate(key K) {
	c.lru.Remove(key)
}

// Flush removes all entries.
func (c *Cache[K, V]) Flush() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}

// --- Rate limiter ---

// RateLimiter is a token bucket shared by all outbound requests of a client.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows perSecond requests on average with bursts of up to
// burst. A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	return rl.limiter.Wait(ctx)
}
