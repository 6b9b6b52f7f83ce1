package dataset

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	table   *Table
}

// Cache loads each file at most once while its modification time and size stay
// the same. It is safe for concurrent use.
type Cache struct {
	loader Loader

	mu      sync.Mutex
	entries map[string]cacheEntry
	loads   int
}

// NewCache returns an empty cache backed by loader.
func NewCache(loader Loader) *Cache {
	return &Cache{loader: loader, entries: make(map[string]cacheEntry)}
}

// Get returns the table for path, reading the file only when it is not cached
// or has changed on disk since it was cached.
func (c *Cache) Get(path string) (*Table, error) {
	key := cacheKey(path)
	info, err := os.Stat(path)
	if err != nil {
		c.Invalidate(path)
		return nil, &LoadError{Path: path, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.table, nil
	}
	t, err := c.loader.Load(path)
	if err != nil {
		delete(c.entries, key)
		return nil, err
	}
	c.loads++
	c.entries[key] = cacheEntry{modTime: info.ModTime(), size: info.Size(), table: t}
	return t, nil
}

// Invalidate drops the cached table for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, cacheKey(path))
	c.mu.Unlock()
}

// Loads returns how many times the underlying loader has read a file.
func (c *Cache) Loads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
