package window

import "sync"

// Coalescer serializes a refresh-style operation. At most one function runs
// at a time; requests arriving while one is running collapse into a single
// trailing run, and the latest request wins. Requests are never queued
// beyond that one slot, bounding memory under rapid input.
type Coalescer struct {
	mu      sync.Mutex
	running bool
	pending func()
}

// Do runs fn, or schedules it as the trailing run if another call is already
// executing. The call that owns the slot keeps draining trailing requests
// until none remain.
func (c *Coalescer) Do(fn func()) {
	c.mu.Lock()
	if c.running {
		c.pending = fn
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	for fn != nil {
		fn()

		c.mu.Lock()
		fn = c.pending
		c.pending = nil
		if fn == nil {
			c.running = false
		}
		c.mu.Unlock()
	}
}

// Busy reports whether a run is currently in flight.
func (c *Coalescer) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
