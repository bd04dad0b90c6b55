// Package cache provides a small, bounded, thread-safe memoization cache.
//
// Construction uses one cache per concern (member classification, handler
// resolution, exact-lookup results), each bounded independently through
// construction options.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// DefaultCapacity is used when a cache is created with a non-positive
// capacity.
const DefaultCapacity = 1000

// Cache is a bounded LRU map from K to V. All methods are safe for
// concurrent use. Population follows a load-once-per-key discipline via
// GetOrCompute; racing loaders may compute a key twice, so loaders must
// be idempotent.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]*list.Element
	order    *list.List // front = most recently used

	hits   atomic.Uint64
	misses atomic.Uint64
}

type pair[K comparable, V any] struct {
	key   K
	value V
}

// New creates a cache holding at most capacity entries; the least
// recently used entry is evicted when the bound is reached.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached value for key, if present.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(pair[K, V]).value, true
}

// Put stores value under key, evicting the least recently used entry if
// the cache is full.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, value)
}

// GetOrCompute returns the value for key, calling load to produce it on a
// miss. load runs outside the cache lock.
func (c *Cache[K, V]) GetOrCompute(key K, load func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}

	v := load()

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		// Another goroutine loaded it first; keep the winner.
		c.order.MoveToFront(el)
		return el.Value.(pair[K, V]).value
	}
	c.put(key, v)
	return v
}

// put must be called with mu held.
func (c *Cache[K, V]) put(key K, value V) {
	if el, ok := c.items[key]; ok {
		el.Value = pair[K, V]{key, value}
		c.order.MoveToFront(el)
		return
	}
	if len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			delete(c.items, oldest.Value.(pair[K, V]).key)
			c.order.Remove(oldest)
		}
	}
	c.items[key] = c.order.PushFront(pair[K, V]{key, value})
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge discards every entry. Statistics are kept.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Stats holds hit/miss counters for a cache.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	size := len(c.items)
	c.mu.Unlock()
	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     c.hits.Load(),
		Misses:   c.misses.Load(),
	}
}
