package store

import (
	"sync"
	"time"
)

// SharedStateStore accumulates the out-of-band structured state the
// agent reports alongside text. Its lifecycle is independent from the
// transcript: merged on every state event, reset only on explicit user
// action.
type SharedStateStore struct {
	mu        sync.RWMutex
	state     map[string]any
	updatedAt time.Time
}

func NewSharedStateStore() *SharedStateStore {
	return &SharedStateStore{state: make(map[string]any)}
}

// MergeShallow overwrites only the top-level keys the event carries,
// leaving the rest untouched.
func (s *SharedStateStore) MergeShallow(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range fields {
		s.state[k] = v
	}
	s.updatedAt = time.Now().UTC()
}

// Replace swaps in a whole new state.
func (s *SharedStateStore) Replace(fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = make(map[string]any, len(fields))
	for k, v := range fields {
		s.state[k] = v
	}
	s.updatedAt = time.Now().UTC()
}

// Reset returns the store to its initial empty condition.
func (s *SharedStateStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = make(map[string]any)
	s.updatedAt = time.Time{}
}

// Snapshot returns a shallow copy of the current state.
func (s *SharedStateStore) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[string]any, len(s.state))
	for k, v := range s.state {
		copied[k] = v
	}
	return copied
}

// UpdatedAt reports when the state last changed; zero before the first
// merge.
func (s *SharedStateStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
