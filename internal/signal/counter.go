package signal

import "sync/atomic"

// Counter is the process-wide counter cell. It starts at zero and only ever
// moves forward. It is safe for concurrent use.
type Counter struct {
	v atomic.Int32
}

// NewCounter creates a counter starting at zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Inc advances the counter by one and returns the new value.
func (c *Counter) Inc() int32 {
	return c.v.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() int32 {
	return c.v.Load()
}
