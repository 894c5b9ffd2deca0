// Package memo provides a small TTL- and capacity-bounded cache used to
// memoize related-bill computations per doc number.
package memo

import (
	"sync"
	"time"

	"github.com/peachstatelabs/gabills/internal/similar"
)

type entry struct {
	key string
	ts  time.Time
}

// Cache keeps recently computed recommendation lists. Entries expire
// after the ttl or when capacity pushes out the oldest insertions.
type Cache struct {
	mu       sync.Mutex
	items    map[string]cached
	order    []entry
	capacity int
	ttl      time.Duration
}

type cached struct {
	matches []similar.Match
	ts      time.Time
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]cached, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the cached matches for a key when present and fresh.
func (c *Cache) Get(key string) ([]similar.Match, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[key]; ok && now.Sub(item.ts) <= c.ttl {
		return item.matches, true
	}
	return nil, false
}

// Put records computed matches for a key.
func (c *Cache) Put(key string, matches []similar.Match) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cached{matches: matches, ts: now}
	c.order = append(c.order, entry{key: key, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if item, ok := c.items[oldest.key]; ok {
			if item.ts == oldest.ts {
				delete(c.items, oldest.key)
			}
		}
	}
}
