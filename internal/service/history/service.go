package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"aguichat/internal/model/chat"
)

const (
	titleLimit   = 48
	previewLimit = 96
)

// Turn is one completed exchange kept for the history panel and for
// prompting the model with conversation context.
type Turn struct {
	ID        string
	UserText  string
	ReplyText string
	UpdatedAt time.Time
}

// Service keeps the gateway-side turn log in memory for the lifetime of
// the process.
type Service struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewService() *Service {
	return &Service{turns: make([]Turn, 0, 16)}
}

// RecordTurn appends a completed exchange.
func (s *Service) RecordTurn(userText, replyText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{
		ID:        uuid.NewString(),
		UserText:  userText,
		ReplyText: replyText,
		UpdatedAt: time.Now().UTC(),
	})
}

// Len reports the number of recorded turns.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Entries renders the log newest-first as history entries.
func (s *Service) Entries() []chat.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]chat.HistoryEntry, 0, len(s.turns))
	for i := len(s.turns) - 1; i >= 0; i-- {
		turn := s.turns[i]
		entries = append(entries, chat.HistoryEntry{
			ID:        turn.ID,
			Title:     truncate(turn.UserText, titleLimit),
			Preview:   truncate(turn.ReplyText, previewLimit),
			UpdatedAt: turn.UpdatedAt,
		})
	}
	return entries
}

// Messages returns the transcript oldest-first as chat messages, ready
// to feed the reply chain as prompt history.
func (s *Service) Messages() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := make([]chat.Message, 0, len(s.turns)*2)
	for _, turn := range s.turns {
		messages = append(messages,
			chat.Message{ID: turn.ID + ":user", Role: chat.RoleUser, Content: turn.UserText, Status: chat.StatusDone, CreatedAt: turn.UpdatedAt},
			chat.Message{ID: turn.ID + ":assistant", Role: chat.RoleAssistant, Content: turn.ReplyText, Status: chat.StatusDone, CreatedAt: turn.UpdatedAt},
		)
	}
	return messages
}

// truncate cuts on runes so multi-byte text is never split mid-character.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
