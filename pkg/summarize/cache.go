package summarize

import (
	"fmt"
	"sync"
)

// Loader creates the backend for a model and device.
type Loader func(model, device string) (Backend, error)

// PipelineCache memoizes loaded backends by "model:device". Entries are
// never evicted. Failed loads are not cached.
type PipelineCache struct {
	mu       sync.RWMutex
	load     Loader
	backends map[string]Backend
}

// NewPipelineCache creates a cache that loads backends with load.
func NewPipelineCache(load Loader) *PipelineCache {
	return &PipelineCache{
		load:     load,
		backends: make(map[string]Backend),
	}
}

// CacheKey is the cache key of a model on a device.
func CacheKey(model, device string) string {
	return model + ":" + device
}

// Get returns the cached backend for model and device, loading it on first
// use.
func (c *PipelineCache) Get(model, device string) (Backend, error) {
	key := CacheKey(model, device)

	c.mu.RLock()
	b, ok := c.backends[key]
	c.mu.RUnlock()
	if ok {
		return b, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[key]; ok {
		return b, nil
	}
	if c.load == nil {
		return nil, ErrNoBackend
	}
	b, err := c.load(model, device)
	if err != nil {
		return nil, fmt.Errorf("loading summarizer %s: %w", key, err)
	}
	c.backends[key] = b
	return b, nil
}

// Put registers a backend under model and device, replacing any entry.
func (c *PipelineCache) Put(model, device string, b Backend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backends[CacheKey(model, device)] = b
}

// Len returns the number of cached backends.
func (c *PipelineCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.backends)
}
