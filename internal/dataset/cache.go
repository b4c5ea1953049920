package dataset

import (
	"sync"
)

// Loader produces a dataset for a path.
type Loader func(path string) (*Dataset, error)

type entry struct {
	ds  *Dataset
	err error
}

// Cache memoises loads by path. Failed loads are memoised too: a session whose
// dataset failed stays failed until Reload.
type Cache struct {
	mu      sync.Mutex
	load    Loader
	entries map[string]entry
	loads   int
}

// NewCache returns a cache backed by load, or by Load when load is nil.
func NewCache(load Loader) *Cache {
	if load == nil {
		load = Load
	}
	return &Cache{load: load, entries: make(map[string]entry)}
}

// Get returns the dataset for path, loading it on first use.
func (c *Cache) Get(path string) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[path]; ok {
		return e.ds, e.err
	}
	return c.fill(path)
}

// Reload drops any cached result for path and loads it again.
func (c *Cache) Reload(path string) (*Dataset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, path)
	return c.fill(path)
}

// Loads counts how many times the loader ran.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func (c *Cache) fill(path string) (*Dataset, error) {
	c.loads++
	ds, err := c.load(path)
	c.entries[path] = entry{ds: ds, err: err}
	return ds, err
}
