// Package generation tags asynchronous loads so that only the response to
// the most recently issued load is applied to a view.
package generation

import "sync/atomic"

// Counter issues monotonically increasing generation numbers.
// The zero value is ready to use and safe for concurrent use.
type Counter struct {
	n atomic.Uint64
}

// Next starts a new generation and returns it. Every earlier generation
// becomes stale.
func (c *Counter) Next() uint64 {
	return c.n.Add(1)
}

// Current reports whether gen is still the latest generation issued.
func (c *Counter) Current(gen uint64) bool {
	return c.n.Load() == gen
}

// Invalidate makes every issued generation stale without starting a load.
func (c *Counter) Invalidate() {
	c.n.Add(1)
}

// Latest returns the most recently issued generation without starting a
// new one. Follow-up loads that belong to the current view use it.
func (c *Counter) Latest() uint64 {
	return c.n.Load()
}
