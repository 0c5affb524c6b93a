package activity

import (
	"context"
	"sync"
)

// CaptureHook records every event it receives. Useful in tests.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify implements Hook.
func (c *CaptureHook) Notify(_ context.Context, evt Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Events = append(c.Events, evt)
	return nil
}

// Last returns the most recent event.
func (c *CaptureHook) Last() (Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Events) == 0 {
		return Event{}, false
	}
	return c.Events[len(c.Events)-1], true
}
