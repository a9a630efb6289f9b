package cache

import (
	"sync"
	"time"
)

// Cache is a keyed store whose entries expire.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	Clear()
	Size() int
}

// InMemoryCache is a map guarded by a RWMutex. Expired entries are dropped
// on read and swept at most once per sweep interval on write.
type InMemoryCache[K comparable, V any] struct {
	items      map[K]cacheItem[V]
	mu         sync.RWMutex
	defaultTTL time.Duration
	now        func() time.Time

	sweepEvery time.Duration
	lastSweep  time.Time
}

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

var _ Cache[string, int] = (*InMemoryCache[string, int])(nil)

func NewInMemoryCache[K comparable, V any](defaultTTL time.Duration) *InMemoryCache[K, V] {
	return &InMemoryCache[K, V]{
		items:      make(map[K]cacheItem[V]),
		defaultTTL: defaultTTL,
		now:        time.Now,
		sweepEvery: time.Minute,
	}
}

// WithClock replaces time.Now, for tests.
func (c *InMemoryCache[K, V]) WithClock(now func() time.Time) *InMemoryCache[K, V] {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *InMemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	item, ok := c.items[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok || now.After(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores value for ttl, or for the default TTL when ttl is zero.
func (c *InMemoryCache[K, V]) Set(key K, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl == 0 {
		ttl = c.defaultTTL
	}
	now := c.now()
	c.items[key] = cacheItem[V]{value: value, expiresAt: now.Add(ttl)}

	if now.Sub(c.lastSweep) >= c.sweepEvery {
		c.sweep(now)
	}
}

func (c *InMemoryCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *InMemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]cacheItem[V])
}

// Size counts stored entries, expired ones included until swept.
func (c *InMemoryCache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// caller holds c.mu
func (c *InMemoryCache[K, V]) sweep(now time.Time) {
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
	c.lastSweep = now
}
