package handodds

import "sync"

// MemoryCache is an append-only in-process CoefficientCache
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[CombinationKey]float64
}

// NewMemoryCache creates an empty in-process cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[CombinationKey]float64)}
}

// Load returns the cached coefficient for key
func (c *MemoryCache) Load(key CombinationKey) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[key]
	return v, ok
}

// Store records value unless key is already present
func (c *MemoryCache) Store(key CombinationKey, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = value
}

// Len returns the number of cached coefficients
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Keys returns a snapshot of every cached key, in no particular order
func (c *MemoryCache) Keys() []CombinationKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]CombinationKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}
