// Package inflight tracks actions that are underway for a given key so a
// duplicate submission can be turned away instead of applied twice.
package inflight

import "sync"

// Tracker remembers which keys currently have an action in flight.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func New() *Tracker {
	return &Tracker{pending: make(map[string]struct{})}
}

// Begin marks key busy. It reports false when an action for the key is
// already underway, in which case the caller must not proceed.
func (t *Tracker) Begin(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.pending[key]; busy {
		return false
	}
	t.pending[key] = struct{}{}
	return true
}

// End clears key. Calling it for a key that was never begun is a no-op.
func (t *Tracker) End(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, key)
}

// Busy reports whether an action for key is underway.
func (t *Tracker) Busy(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, busy := t.pending[key]
	return busy
}
