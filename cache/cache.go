// ABOUTME: Content-addressed prompt cache: exact request key, no expiry, no eviction.
// ABOUTME: Loaded from its store at open and flushed write-through on every put; store failures are warnings.
package cache

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Store persists cache entries across runs. Load is called once at open; Put
// must durably record a single entry (durability is favored over throughput).
type Store interface {
	// Load returns all persisted entries.
	Load() (map[string]string, error)

	// Put durably records one entry.
	Put(key, value string) error
}

// Cache memoizes expensive external calls keyed by their exact request
// payload. Entries are appended on first miss and never evicted. A store
// that cannot be read is treated as empty with a warning; a store that
// cannot be written degrades the cache to memory-only, also with a warning.
// Cache trouble is never fatal.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
	store   Store
	warn    io.Writer
}

// Option configures a Cache.
type Option func(*Cache)

// WithWarnings redirects cache warnings away from stderr.
func WithWarnings(w io.Writer) Option {
	return func(c *Cache) { c.warn = w }
}

// Open loads the persisted entries from store. A nil store gives a
// memory-only cache.
func Open(store Store, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]string),
		store:   store,
		warn:    os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}

	if store != nil {
		loaded, err := store.Load()
		if err != nil {
			fmt.Fprintf(c.warn, "warning: failed to load cache, starting empty: %v\n", err)
		} else {
			c.entries = loaded
		}
	}
	return c
}

// Get returns the cached value for key.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put records the value in memory and flushes it to the store.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	c.entries[key] = value
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	if err := c.store.Put(key, value); err != nil {
		fmt.Fprintf(c.warn, "warning: failed to save cache entry: %v\n", err)
	}
}

// Len returns the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
