// Package cache provides a generic, thread-safe LRU cache.
//
// The validator uses it in two places: the engine's per-form linkId
// index cache and the loader's questionnaire cache. Both share values
// across goroutines, so the cache hands out values as-is and never
// copies them.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Cache is a fixed-capacity LRU keyed by any comparable type. A single
// mutex guards the map and recency list; hit and eviction counters are
// atomic so Stats never blocks writers.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[K, V]
	order    *list.List
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	sets   atomic.Uint64
}

// entry pairs a cached value with its position in the recency list.
type entry[K comparable, V any] struct {
	value   V
	element *list.Element
}

// New creates a cache holding at most capacity entries. Non-positive
// capacities fall back to 50, matching the loader's default.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity <= 0 {
		capacity = 50
	}
	return &Cache[K, V]{
		items:    make(map[K]*entry[K, V], capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the value for key, marking it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	c.order.MoveToFront(e.element)
	return e.value, true
}

// Set stores key's value, evicting the least recently used entry when
// the cache is full.
func (c *Cache[K, V]) Set(key K, value V) {
	c.sets.Add(1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		e.value = value
		c.order.MoveToFront(e.element)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	c.items[key] = &entry[K, V]{
		value:   value,
		element: c.order.PushFront(key),
	}
}

// GetOrSet returns the value for key, computing and storing it with fn
// on a miss. fn runs under the cache lock, so it must not call back
// into the cache.
func (c *Cache[K, V]) GetOrSet(key K, fn func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.order.MoveToFront(e.element)
		return e.value
	}
	c.misses.Add(1)

	value := fn()

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}
	c.items[key] = &entry[K, V]{
		value:   value,
		element: c.order.PushFront(key),
	}
	c.sets.Add(1)

	return value
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (c *Cache[K, V]) evictOldest() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}

	delete(c.items, oldest.Value.(K))
	c.order.Remove(oldest)
	c.evicts.Add(1)
}

// Delete removes key from the cache.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		delete(c.items, key)
		c.order.Remove(e.element)
	}
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Clear removes every entry. Counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[K]*entry[K, V], c.capacity)
	c.order.Init()
}

// Keys returns the cached keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

// Stats holds a point-in-time view of the cache counters.
type Stats struct {
	Size     int
	Capacity int
	Hits     uint64
	Misses   uint64
	Evicts   uint64
	Sets     uint64
	HitRate  float64
}

// Stats returns the cache counters.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	size := len(c.items)
	c.mu.Unlock()

	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Size:     size,
		Capacity: c.capacity,
		Hits:     hits,
		Misses:   misses,
		Evicts:   c.evicts.Load(),
		Sets:     c.sets.Load(),
		HitRate:  hitRate,
	}
}
