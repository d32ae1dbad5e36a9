package sync

import "sync"

// Closer implements a one-shot shutdown signal that is safe to trigger
// from multiple goroutines.
type Closer struct {
	closeOnce sync.Once
	doneCh    chan struct{}
}

func NewCloser() *Closer {
	return &Closer{doneCh: make(chan struct{})}
}

// Done returns a channel that is closed once Close has been called.
func (c *Closer) Done() <-chan struct{} {
	return c.doneCh
}

// Close triggers the shutdown signal. Subsequent calls are no-ops.
func (c *Closer) Close() {
	c.closeOnce.Do(func() { close(c.doneCh) })
}
