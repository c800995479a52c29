// Package cache provides a size-bounded LRU cache for compiled artifacts.
package cache

import (
	"sync"
	"sync/atomic"
)

// DefaultMaxBytes is the default memory budget of an LRU (16 MB).
const DefaultMaxBytes = 16 * 1024 * 1024

// bytesPerKB is the number of bytes in a kilobyte.
const bytesPerKB = 1024.0

// Sized is a cache value that reports its approximate memory footprint.
type Sized interface {
	Size() int64
}

// LRU is a cache of values keyed by content hash. It tracks memory usage
// and evicts cheap-to-lose entries when the budget is exceeded.
type LRU[V Sized] struct {
	mu          sync.RWMutex
	entries     map[string]*lruEntry[V]
	head        *lruEntry[V] // Most recently used.
	tail        *lruEntry[V] // Least recently used.
	maxSize     int64
	currentSize int64

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

type lruEntry[V Sized] struct {
	key         string
	value       V
	size        int64
	accessCount int64
	prev        *lruEntry[V]
	next        *lruEntry[V]
}

// evictionCost is accesses per KB: large, rarely used entries go first.
func (e *lruEntry[V]) evictionCost() float64 {
	if e.size == 0 {
		return float64(e.accessCount)
	}

	sizeKB := float64(e.size) / bytesPerKB
	if sizeKB < 1 {
		sizeKB = 1
	}

	return float64(e.accessCount) / sizeKB
}

// NewLRU creates a cache bounded to maxSize bytes. A non-positive size
// selects DefaultMaxBytes.
func NewLRU[V Sized](maxSize int64) *LRU[V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxBytes
	}

	return &LRU[V]{
		entries: make(map[string]*lruEntry[V]),
		maxSize: maxSize,
	}
}

// Get returns the value stored under key.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		var zero V

		return zero, false
	}

	c.hits.Add(1)

	entry.accessCount++
	c.moveToFront(entry)

	return entry.value, true
}

// Put stores value under key. Values larger than the whole budget are not
// cached. An existing key keeps its value and is only refreshed.
func (c *LRU[V]) Put(key string, value V) {
	size := value.Size()

	if size > c.maxSize {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.accessCount++
		c.moveToFront(entry)

		return
	}

	for c.currentSize+size > c.maxSize && c.tail != nil {
		c.evictLowestCost()
	}

	entry := &lruEntry[V]{
		key:         key,
		value:       value,
		size:        size,
		accessCount: 1,
	}

	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
}

// Stats returns cache statistics.
func (c *LRU[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		Entries:     len(c.entries),
		CurrentSize: c.currentSize,
		MaxSize:     c.maxSize,
	}
}

// Stats holds cache performance metrics.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Entries     int
	CurrentSize int64
	MaxSize     int64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}

	return float64(s.Hits) / float64(total)
}

// Clear removes all entries from the cache.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*lruEntry[V])
	c.head = nil
	c.tail = nil
	c.currentSize = 0
}

func (c *LRU[V]) moveToFront(entry *lruEntry[V]) {
	if entry == c.head {
		return
	}

	c.removeFromList(entry)
	c.addToFront(entry)
}

func (c *LRU[V]) addToFront(entry *lruEntry[V]) {
	entry.prev = nil
	entry.next = c.head

	if c.head != nil {
		c.head.prev = entry
	}

	c.head = entry

	if c.tail == nil {
		c.tail = entry
	}
}

func (c *LRU[V]) removeFromList(entry *lruEntry[V]) {
	if entry.prev != nil {
		entry.prev.next = entry.next
	} else {
		c.head = entry.next
	}

	if entry.next != nil {
		entry.next.prev = entry.prev
	} else {
		c.tail = entry.prev
	}
}

// evictionSampleSize is the number of tail entries sampled per eviction.
const evictionSampleSize = 5

// evictLowestCost removes the cheapest entry among the least recently used
// evictionSampleSize entries.
func (c *LRU[V]) evictLowestCost() {
	if c.tail == nil {
		return
	}

	victim := c.tail
	lowestCost := victim.evictionCost()

	entry := c.tail.prev
	for sampled := 1; entry != nil && sampled < evictionSampleSize; sampled++ {
		if cost := entry.evictionCost(); cost < lowestCost {
			lowestCost = cost
			victim = entry
		}

		entry = entry.prev
	}

	c.removeFromList(victim)
	delete(c.entries, victim.key)
	c.currentSize -= victim.size
	c.evictions.Add(1)
}
