// Package optimistic tracks row mutations that are shown before the backend
// confirms them. A record moves Pending -> Confirmed on success or
// Pending -> Reverted on failure, in which case the pre-action snapshot is
// restored.
package optimistic

import (
	"fmt"
	"sync"
)

// Phase is the state of a tracked mutation.
type Phase uint8

const (
	Idle Phase = iota
	Pending
	Confirmed
	Reverted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Confirmed:
		return "confirmed"
	case Reverted:
		return "reverted"
	}
	return fmt.Sprintf("phase(%d)", p)
}

// Entry is the tracked state of one record.
type Entry[T any] struct {
	Phase    Phase
	Current  T
	Snapshot T
	Err      error
}

// ErrInFlight is returned by Begin when the key already has a pending
// mutation.
type ErrInFlight struct {
	Key any
}

func (e ErrInFlight) Error() string {
	return fmt.Sprintf("optimistic: mutation already pending for %v", e.Key)
}

// Tracker holds mutation state keyed by record id.
type Tracker[K comparable, T any] struct {
	mu      sync.Mutex
	entries map[K]*Entry[T]
}

// NewTracker returns an empty tracker.
func NewTracker[K comparable, T any]() *Tracker[K, T] {
	return &Tracker[K, T]{entries: map[K]*Entry[T]{}}
}

// Begin records snapshot and shows pending as the current value.
func (t *Tracker[K, T]) Begin(key K, snapshot, pending T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok && entry.Phase == Pending {
		return ErrInFlight{Key: key}
	}
	t.entries[key] = &Entry[T]{Phase: Pending, Current: pending, Snapshot: snapshot}
	return nil
}

// Confirm replaces the pending value with the server record.
func (t *Tracker[K, T]) Confirm(key K, server T) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	if !ok || entry.Phase != Pending {
		var zero T
		return zero, false
	}
	entry.Phase = Confirmed
	entry.Current = server
	entry.Err = nil
	return server, true
}

// Fail reverts to the pre-action snapshot and keeps err for display.
func (t *Tracker[K, T]) Fail(key K, err error) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	if !ok || entry.Phase != Pending {
		var zero T
		return zero, false
	}
	entry.Phase = Reverted
	entry.Current = entry.Snapshot
	entry.Err = err
	return entry.Snapshot, true
}

// Get returns the entry for key.
func (t *Tracker[K, T]) Get(key K) (Entry[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.entries[key]
	if !ok {
		return Entry[T]{}, false
	}
	return *entry, true
}

// Phase returns the phase for key, Idle when untracked.
func (t *Tracker[K, T]) Phase(key K) Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok {
		return entry.Phase
	}
	return Idle
}

// Forget drops a settled entry. Pending entries are kept.
func (t *Tracker[K, T]) Forget(key K) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if entry, ok := t.entries[key]; ok && entry.Phase != Pending {
		delete(t.entries, key)
	}
}

// Overlay returns current values for every tracked key in items, leaving
// untracked records as they are.
func (t *Tracker[K, T]) Overlay(items []T, keyOf func(T) K) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = item
		if entry, ok := t.entries[keyOf(item)]; ok && entry.Phase != Reverted {
			out[i] = entry.Current
		}
	}
	return out
}

// Run performs the full cycle: Begin, call apply, then Confirm or Fail.
func (t *Tracker[K, T]) Run(key K, snapshot, pending T, apply func() (T, error)) (T, error) {
	if err := t.Begin(key, snapshot, pending); err != nil {
		return snapshot, err
	}
	server, err := apply()
	if err != nil {
		reverted, _ := t.Fail(key, err)
		return reverted, err
	}
	confirmed, _ := t.Confirm(key, server)
	return confirmed, nil
}
