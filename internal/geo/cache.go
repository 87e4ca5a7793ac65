package geo

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// Cache is a best-effort TTL cache for provider responses, keyed by
// normalized address text. It is constructed in Setup and handed to the
// handlers — there is no package-global cache, so dropping or resetting it
// has no correctness impact.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	value     any
	expiresAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) > 10000 {
		c.prune()
	}
	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// prune drops expired entries. Called with the lock held.
func (c *Cache) prune() {
	now := time.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

var foldCaser = cases.Fold()

// NormalizeAddress produces the cache key for free-form address input:
// case-folded with runs of whitespace collapsed, so "12 Main St " and
// "12 MAIN ST" share an entry.
func NormalizeAddress(address string) string {
	folded := foldCaser.String(address)
	return strings.Join(strings.Fields(folded), " ")
}
