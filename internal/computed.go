package internal

import "sync"

// Computed caches the result of compute until it is invalidated.
//
// Sources are not tracked: compute runs untracked, so neither the computed nor
// an enclosing effect subscribes to what it reads. Callers invalidate it when
// its inputs change.
type Computed struct {
	// held while compute runs, so concurrent reads compute at most once.
	// compute must not read this computed.
	mu sync.Mutex

	compute func() any

	value any
	dirty bool
}

func NewComputed(compute func() any) *Computed {
	return &Computed{
		compute: compute,
		dirty:   true,
	}
}

// Read returns the cached value, recomputing it first if dirty.
// If compute panics the computed stays dirty.
func (c *Computed) Read() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dirty {
		var value any
		Untrack(func() { value = c.compute() })

		c.value = value
		c.dirty = false
	}

	return c.value
}

func (c *Computed) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dirty
}

// Invalidate marks the computed dirty. The next Read recomputes.
func (c *Computed) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dirty = true
}
