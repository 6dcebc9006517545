package engine

import (
	"container/list"
	"strings"
	"sync"

	"github.com/address-extractor/app/models"
)

// cachedHitTimeMs is the nominal time reported for a cache hit.
const cachedHitTimeMs = 0.1

// ResultCache memoizes extraction results keyed by the lowercased,
// trimmed raw input. Eviction is strictly FIFO: repeated hits do not
// extend an entry's life, so a hot entry still ages out and gets
// recomputed against fresh gazetteer data.
type ResultCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key    string
	result *models.ExtractionResult
}

func NewResultCache(capacity int) *ResultCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &ResultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// CacheKey derives the cache key from raw input.
func CacheKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Get returns a copy of the cached result, marked as a cache hit. The
// stored entry is never handed out directly.
func (c *ResultCache) Get(key string) (*models.ExtractionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++

	result := el.Value.(*cacheEntry).result.Clone()
	result.Cached = true
	result.ExtractionTimeMs = cachedHitTimeMs
	return result, true
}

// Put stores a copy of the result, evicting the oldest entry at capacity.
func (c *ResultCache) Put(key string, result *models.ExtractionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).result = result.Clone()
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}

	c.entries[key] = c.order.PushBack(&cacheEntry{key: key, result: result.Clone()})
}

// Len reports the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats reports hit and miss counts since startup.
func (c *ResultCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear drops every entry but keeps the counters.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	c.entries = make(map[string]*list.Element)
}
