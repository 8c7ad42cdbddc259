package taxon

import (
	"maps"
	"sync"
)

// Cache maps canonical lineage keys to match results for one pipeline
// run. It is the only mutable structure shared between workers. Writes
// are idempotent per key, so first-writer-wins is correct. A Cache is
// constructed at run start, injected into every worker, and discarded at
// run end - it is never persisted.
type Cache struct {
	mu      sync.Mutex
	results map[string]MatchResult
	claimed map[string]struct{}
}

// NewCache creates an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{
		results: make(map[string]MatchResult),
		claimed: make(map[string]struct{}),
	}
}

// Get returns the result for a key if it reached a terminal state.
func (c *Cache) Get(key string) (MatchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[key]
	return res, ok
}

// Set records the terminal result for a key. The first write wins;
// later writes for the same key are ignored.
func (c *Cache) Set(res MatchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.results[res.Key]; ok {
		return
	}
	c.results[res.Key] = res
}

// Claim marks a key as taken by a worker. It returns true for the first
// caller and false for everyone after, so redundant concurrent
// computation of the same key is avoided.
func (c *Cache) Claim(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.claimed[key]; ok {
		return false
	}
	c.claimed[key] = struct{}{}
	return true
}

// Len returns the number of keys in a terminal state.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// All returns a copy of the key to result mapping.
func (c *Cache) All() map[string]MatchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.results)
}
