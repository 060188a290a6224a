package index

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of restaurant indexes kept in memory.
const DefaultCacheSize = 512

// Cache holds built indexes keyed by restaurant.
//
// Implementations must be safe for concurrent use. Two callers may build and
// Set the same key at once after an invalidation; both builds come from the
// same snapshot, so whichever Set lands last wins.
type Cache interface {
	Get(key string) (*Index, bool)
	Set(key string, ix *Index)
	Invalidate(key string)
	InvalidateAll()
	Len() int
}

// LRUCache is a size-bounded Cache.
type LRUCache struct {
	c *lru.Cache[string, *Index]
}

// NewLRUCache creates a cache holding at most size indexes.
func NewLRUCache(size int) (*LRUCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, *Index](size)
	if err != nil {
		return nil, fmt.Errorf("create index cache: %w", err)
	}
	return &LRUCache{c: c}, nil
}

// Get returns the cached index for key.
func (l *LRUCache) Get(key string) (*Index, bool) {
	return l.c.Get(key)
}

// Set stores ix under key, replacing any previous index.
func (l *LRUCache) Set(key string, ix *Index) {
	l.c.Add(key, ix)
}

// Invalidate drops the index for key.
func (l *LRUCache) Invalidate(key string) {
	l.c.Remove(key)
}

// InvalidateAll drops every cached index.
func (l *LRUCache) InvalidateAll() {
	l.c.Purge()
}

// Len returns the number of cached indexes.
func (l *LRUCache) Len() int {
	return l.c.Len()
}
