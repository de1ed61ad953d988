// ABOUTME: Context is the stock key-value shared state for flows without a typed state struct.
// ABOUTME: Thread-safe so a parallelizing step implementation can share it across goroutines.
package flow

import "sync"

// Context is a mutable key-value store passed by reference through every step
// of a run. It is the stock shared state for ad-hoc flows; pipelines with a
// known shape should prefer their own typed state struct (as the tutorial
// pipeline does) and instantiate the engine over that type instead.
//
// Keys are never deleted mid-run; later writers overwrite earlier ones.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under the given key, overwriting any previous value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get retrieves the value for the given key, or nil if not present.
func (c *Context) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// GetString retrieves the string value for the key, or defaultVal when the
// key is missing or holds a non-string.
func (c *Context) GetString(key, defaultVal string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if s, ok := c.values[key].(string); ok {
		return s
	}
	return defaultVal
}

// Snapshot returns a shallow copy of all key-value pairs.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := make(map[string]any, len(c.values))
	for k, v := range c.values {
		snap[k] = v
	}
	return snap
}

// ApplyUpdates merges the given pairs into the context.
func (c *Context) ApplyUpdates(updates map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range updates {
		c.values[k] = v
	}
}
