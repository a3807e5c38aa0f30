// Package collection provides the ordered key/value container a model uses to
// hold its current row and any rows appended by queries.
package collection

import (
	"sort"
	"strconv"
)

// Collection is an ordered mapping from string keys to values. Values appended
// with Add are stored under consecutive integer keys ("0", "1", ...), the same
// way named values set with Set keep their first insertion position.
type Collection struct {
	keys   []string
	values map[string]any
	next   int
}

// New creates an empty collection
func New() *Collection {
	return &Collection{values: make(map[string]any)}
}

// FromMap creates a collection from a map. Keys are inserted in sorted order so
// the resulting collection is deterministic.
func FromMap(m map[string]any) *Collection {
	c := New()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, m[k])
	}
	return c
}

// Set stores value under name, overwriting any previous value
func (c *Collection) Set(name string, value any) {
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = value
	if n, err := strconv.Atoi(name); err == nil && n >= c.next {
		c.next = n + 1
	}
}

// Add appends value under the next free integer key and returns that key
func (c *Collection) Add(value any) string {
	key := strconv.Itoa(c.next)
	c.Set(key, value)
	return key
}

// AddAll stores every entry of m by name, in sorted key order
func (c *Collection) AddAll(m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Set(k, m[k])
	}
}

// Get returns the value stored under name, or nil
func (c *Collection) Get(name string) any {
	return c.values[name]
}

// Lookup returns the value stored under name and whether it exists
func (c *Collection) Lookup(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Has reports whether name is present
func (c *Collection) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Delete removes name from the collection
func (c *Collection) Delete(name string) {
	if _, ok := c.values[name]; !ok {
		return
	}
	delete(c.values, name)
	for i, k := range c.keys {
		if k == name {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order
func (c *Collection) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of entries
func (c *Collection) Len() int {
	return len(c.keys)
}

// Each calls fn for every entry in insertion order until fn returns false
func (c *Collection) Each(fn func(key string, value any) bool) {
	for _, k := range c.keys {
		if !fn(k, c.values[k]) {
			return
		}
	}
}

// Map returns a copy of the named (non-integer) entries
func (c *Collection) Map() map[string]any {
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		if IsInteger(k) {
			continue
		}
		out[k] = c.values[k]
	}
	return out
}

// Rows returns the values stored under integer keys, in insertion order
func (c *Collection) Rows() []any {
	var rows []any
	for _, k := range c.keys {
		if IsInteger(k) {
			rows = append(rows, c.values[k])
		}
	}
	return rows
}

// IsInteger reports whether key is a base-10 integer
func IsInteger(key string) bool {
	if key == "" {
		return false
	}
	_, err := strconv.Atoi(key)
	return err == nil
}
