package activity

import (
	"context"
	"sync"
)

// DefaultSinkCapacity bounds the memory sink when no capacity is given.
const DefaultSinkCapacity = 100

// MemorySink keeps the most recent events in a fixed size ring.
type MemorySink struct {
	mu    sync.RWMutex
	ring  []Event
	next  int
	count int
}

// NewMemorySink allocates a ring holding up to capacity events.
func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = DefaultSinkCapacity
	}
	return &MemorySink{ring: make([]Event, capacity)}
}

// Notify implements Hook.
func (s *MemorySink) Notify(_ context.Context, evt Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ring[s.next] = evt
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Recent returns up to limit events, newest first. Filter, when set, restricts
// the result to matching events.
func (s *MemorySink) Recent(limit int, filter func(Event) bool) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > s.count {
		limit = s.count
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= s.count && len(out) < limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		evt := s.ring[idx]
		if filter != nil && !filter(evt) {
			continue
		}
		out = append(out, evt)
	}
	return out
}

// Len reports how many events are retained.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
