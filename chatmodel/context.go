package chatmodel

import (
	"fmt"
	"maps"
)

// Context is the caller supplied side data of a run.
// The agent treats it as an opaque passthrough, tools may read it.
type Context map[string]any

// NewContext returns an empty Context
func NewContext() Context {
	return Context{}
}

// WithData sets the value and returns the Context for chaining,
// a nil Context is allocated.
func (c Context) WithData(key string, value any) Context {
	if c == nil {
		c = Context{}
	}
	c[key] = value
	return c
}

// Get returns the value by key
func (c Context) Get(key string) (any, bool) {
	v, ok := c[key]
	return v, ok
}

// GetString returns the value by key formatted as a string,
// or an empty string if the key is not present
func (c Context) GetString(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Merge copies all values from other, existing keys are overwritten
func (c Context) Merge(other Context) Context {
	if c == nil {
		c = Context{}
	}
	maps.Copy(c, other)
	return c
}

// Clone returns a shallow copy of the Context
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	return maps.Clone(c)
}
