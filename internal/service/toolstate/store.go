package toolstate

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Store persists tool-server enabled flags to a JSON file. A missing or
// corrupt file reads as empty, and servers default to enabled — the
// file only records explicit toggles.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted flag map.
func (s *Store) Load() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Enabled reports the flag for id, defaulting to true when the server
// was never toggled.
func (s *Store) Enabled(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	enabled, ok := s.load()[id]
	if !ok {
		return true
	}
	return enabled
}

// Set persists one flag.
func (s *Store) Set(id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load()
	state[id] = enabled

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode tool state: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write tool state: %w", err)
	}
	return nil
}

func (s *Store) load() map[string]bool {
	state := make(map[string]bool)

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return make(map[string]bool)
	}
	return state
}
