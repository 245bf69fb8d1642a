package pipeline

import "sort"

// Context is the insertion-ordered key/value state threaded through one run.
// Keys are written once and never overwritten.
type Context struct {
	keys   []string
	values map[string]string
}

// NewContext creates an empty context.
func NewContext() *Context {
	return &Context{values: make(map[string]string)}
}

// Set writes key. It fails with *KeyExistsError if key was already written.
func (c *Context) Set(key, value string) error {
	if _, ok := c.values[key]; ok {
		return &KeyExistsError{Key: key}
	}
	c.keys = append(c.keys, key)
	c.values[key] = value
	return nil
}

// Get returns the value under key.
func (c *Context) Get(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of keys.
func (c *Context) Len() int {
	return len(c.keys)
}

// Snapshot returns a copy of the values.
func (c *Context) Snapshot() map[string]string {
	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// seed writes initial entries in sorted key order.
func (c *Context) seed(initial map[string]string) error {
	keys := make([]string, 0, len(initial))
	for k := range initial {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Set(k, initial[k]); err != nil {
			return err
		}
	}
	return nil
}
