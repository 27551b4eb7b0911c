// Package cache implements the TTL+LRU, single-flight cache layer (C7),
// grounded on the teacher's authn/jwt session cache (golang-lru/v2's
// expirable.LRU) combined with golang.org/x/sync/singleflight for the
// in-flight collapsing spec section 4.7/9 requires.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache[K, V] is a bounded, TTL-evicting cache that collapses concurrent
// misses for the same key into one call to the producer function, per
// spec section 4.7's "admit at most one in-flight computation per key"
// requirement. Failed computations are never cached.
type Cache[K comparable, V any] struct {
	lru   *lru.LRU[K, V]
	group singleflight.Group
	keyfn func(K) string
}

// New builds a Cache bounded to size entries, each expiring after ttl.
// keyfn renders K into the string singleflight needs as its dedup key.
func New[K comparable, V any](size int, ttl time.Duration, keyfn func(K) string) *Cache[K, V] {
	return &Cache[K, V]{
		lru:   lru.NewLRU[K, V](size, nil, ttl),
		keyfn: keyfn,
	}
}

// GetOrCompute returns the cached value for key, computing it via fn on
// a miss. Concurrent callers for the same key share one fn invocation.
func (c *Cache[K, V]) GetOrCompute(key K, fn func() (V, error)) (V, error) {
	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(c.keyfn(key), func() (any, error) {
		if v, ok := c.lru.Get(key); ok {
			return v, nil
		}
		v, err := fn()
		if err != nil {
			return v, err
		}
		c.lru.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Purge clears every entry. The no_cache flag does not call it; the
// orchestrator bypasses the caches instead.
func (c *Cache[K, V]) Purge() { c.lru.Purge() }

func (c *Cache[K, V]) Len() int { return c.lru.Len() }
