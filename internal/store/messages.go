package store

import (
	"sync"

	"aguichat/internal/model/chat"
)

// MessageStore is the ordered conversation transcript. Only the session
// controller mutates it during a turn; readers may take snapshots at any
// time and always observe the latest completed mutation, never a partial
// record.
type MessageStore struct {
	mu       sync.RWMutex
	messages []chat.Message
	changes  chan struct{}
}

func NewMessageStore() *MessageStore {
	return &MessageStore{changes: make(chan struct{}, 1)}
}

// Append adds a message to the end of the transcript.
func (s *MessageStore) Append(msg chat.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
	s.notify()
}

// PatchByID merges the given fields into the matching record in place.
// Unknown ids are a no-op.
func (s *MessageStore) PatchByID(id string, patch chat.MessagePatch) {
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		if patch.Content != nil {
			s.messages[i].Content = *patch.Content
		}
		if patch.Status != nil {
			s.messages[i].Status = *patch.Status
		}
		s.mu.Unlock()
		s.notify()
		return
	}
	s.mu.Unlock()
}

// AppendContentByID concatenates text onto the matching record's
// content. Unknown ids are a no-op.
func (s *MessageStore) AppendContentByID(id, text string) {
	if text == "" {
		return
	}
	s.mu.Lock()
	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		s.messages[i].Content += text
		s.mu.Unlock()
		s.notify()
		return
	}
	s.mu.Unlock()
}

// Clear drops the whole transcript.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
	s.notify()
}

// Messages returns a copy of the transcript in insertion order.
func (s *MessageStore) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// LastByRole returns the most recent message with the given role.
func (s *MessageStore) LastByRole(role chat.Role) (chat.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == role {
			return s.messages[i], true
		}
	}
	return chat.Message{}, false
}

// Len reports the number of stored messages.
func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Changes returns a coalesced notification channel for reactive readers;
// one receive may cover several mutations.
func (s *MessageStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *MessageStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
