package rollup

import (
	"sync"

	"recipe-cost/core/types"
)

// Cache memoizes rollup results by recipe id. Entries are replaced
// wholesale, never patched in place, so a concurrent reader sees either
// the old consistent result or the new one, never a partial mix.
// Staleness is the caller's check: an entry only serves a calculation
// whose observed leaf price versions match its fingerprint.
type Cache struct {
	mu      sync.RWMutex
	entries map[types.RecipeID]*Result
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{entries: make(map[types.RecipeID]*Result)}
}

// Get returns the cached result for a recipe, if any
func (c *Cache) Get(id types.RecipeID) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[id]
	return r, ok
}

// Put replaces the cached result for a recipe
func (c *Cache) Put(r *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r.RecipeID] = r
}

// Len returns the number of cached results
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Purge drops every cached result. Intended for structural edits that
// change more than prices, and for tests.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[types.RecipeID]*Result)
}
