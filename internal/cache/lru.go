// Package cache provides a small bounded LRU used to memoize unpacked
// forms of stored vector codes.
//
// Eviction is bounded by an explicit maximum entry count; the cache never
// relies on garbage collection for its memory bound. Once an entry is
// populated its value is treated as read-only by all callers.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is an ordinal-keyed least-recently-used cache with a fixed capacity.
// Safe for concurrent use.
type LRU struct {
	mu        sync.Mutex
	capacity  int
	items     map[int]*list.Element
	evictList *list.List

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   int
	value []byte
}

// NewLRU creates a cache holding at most capacity entries.
// capacity <= 0 yields a disabled cache: Get always misses, Set is a no-op.
func NewLRU(capacity int) *LRU {
	return &LRU{
		capacity:  capacity,
		items:     make(map[int]*list.Element),
		evictList: list.New(),
	}
}

// Get returns the cached value for key. Callers must not mutate the
// returned slice.
func (c *LRU) Get(key int) ([]byte, bool) {
	if c.capacity <= 0 {
		c.misses.Add(1)
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores a value, evicting the least recently used entry when full.
func (c *LRU) Set(key int, value []byte) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		ent.Value.(*entry).value = value
		return
	}

	element := c.evictList.PushFront(&entry{key: key, value: value})
	c.items[key] = element

	for c.evictList.Len() > c.capacity {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.evictList.Remove(oldest)
		delete(c.items, oldest.Value.(*entry).key)
	}
}

// Len returns the current number of cached entries.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Stats returns hit and miss counts.
func (c *LRU) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
