package cache

import "container/list"

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// LRU is a bounded, recency-ordered map. Get and Set both mark the key
// most-recently-used; Set evicts least-recently-used entries while the size
// exceeds capacity. Not safe for concurrent use; callers that share one
// across goroutines guard it themselves.
type LRU[K comparable, V any] struct {
	capacity int
	order    *list.List
	entries  map[K]*list.Element
	onEvict  func(K, V)
}

// NewLRU creates a cache holding at most capacity entries. onEvict, if not
// nil, runs for every entry dropped by eviction or Clear.
func NewLRU[K comparable, V any](capacity int, onEvict func(K, V)) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[K]*list.Element, capacity),
		onEvict:  onEvict,
	}
}

// Get returns the value for key and promotes it to most-recently-used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if el, ok := c.entries[key]; ok {
		c.order.MoveToBack(el)
		return el.Value.(*lruEntry[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Contains reports whether key is cached, without promoting it.
func (c *LRU[K, V]) Contains(key K) bool {
	_, ok := c.entries[key]
	return ok
}

// Set inserts or overwrites key, marks it most-recently-used, and evicts
// the least-recently-used entries while the cache is over capacity.
func (c *LRU[K, V]) Set(key K, value V) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToBack(el)
	} else {
		c.entries[key] = c.order.PushBack(&lruEntry[K, V]{key: key, value: value})
	}

	for c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int { return c.order.Len() }

// Clear drops every entry, running the eviction hook for each.
func (c *LRU[K, V]) Clear() {
	for c.order.Len() > 0 {
		c.evictOldest()
	}
}

func (c *LRU[K, V]) evictOldest() {
	el := c.order.Front()
	if el == nil {
		return
	}
	entry := el.Value.(*lruEntry[K, V])
	c.order.Remove(el)
	delete(c.entries, entry.key)
	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value)
	}
}
