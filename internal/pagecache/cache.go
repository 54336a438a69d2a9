// Package pagecache holds materialized page surfaces in a bounded
// least-recently-used store.
package pagecache

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/mmcdole/leaf/internal/domain"
)

// DefaultLimit is the number of pages kept when no limit is configured
const DefaultLimit = 12

// Cache maps page index to materialized surface. Get and Set both promote the
// entry to most recently used; inserting past the limit silently forgets the
// least recently used page.
//
// A Cache belongs to one content source. Clear it whenever the pagination
// result changes. It is not safe for concurrent use; confine it to the
// scheduler loop.
type Cache struct {
	lru   *simplelru.LRU[int, domain.Surface]
	limit int
}

// New creates a cache holding at most limit pages. A non-positive limit
// falls back to DefaultLimit.
func New(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	lru, err := simplelru.NewLRU[int, domain.Surface](limit, nil)
	if err != nil {
		// Only returned for a non-positive size, ruled out above
		panic(err)
	}
	return &Cache{lru: lru, limit: limit}
}

// Get returns the surface for index and promotes it
func (c *Cache) Get(index int) (domain.Surface, bool) {
	return c.lru.Get(index)
}

// Set inserts or updates the surface for index and promotes it
func (c *Cache) Set(index int, s domain.Surface) {
	c.lru.Add(index, s)
}

// Has reports whether index is cached without changing its recency
func (c *Cache) Has(index int) bool {
	return c.lru.Contains(index)
}

// Clear forgets every page
func (c *Cache) Clear() {
	c.lru.Purge()
}

// Len returns the number of cached pages
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Limit returns the configured capacity
func (c *Cache) Limit() int {
	return c.limit
}

// Keys returns cached page indexes from least to most recently used
func (c *Cache) Keys() []int {
	return c.lru.Keys()
}
