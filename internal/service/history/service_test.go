package history

import (
	"strings"
	"testing"

	"aguichat/internal/model/chat"
)

func TestRecordTurnAndEntries(t *testing.T) {
	svc := NewService()

	svc.RecordTurn("What is Go?", "Go is a programming language.")
	svc.RecordTurn("And generics?", "Added in 1.18.")

	entries := svc.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].Title != "And generics?" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[1].Preview != "Go is a programming language." {
		t.Fatalf("unexpected preview: %q", entries[1].Preview)
	}
	if entries[0].ID == "" || entries[0].UpdatedAt.IsZero() {
		t.Fatalf("entry missing id or timestamp: %+v", entries[0])
	}
}

func TestEntriesTruncateLongText(t *testing.T) {
	svc := NewService()
	svc.RecordTurn(strings.Repeat("ы", 100), strings.Repeat("o", 200))

	entry := svc.Entries()[0]
	if got := len([]rune(entry.Title)); got != titleLimit {
		t.Fatalf("unexpected title length: %d", got)
	}
	if !strings.HasSuffix(entry.Title, "…") {
		t.Fatalf("expected ellipsis, got %q", entry.Title)
	}
	if got := len([]rune(entry.Preview)); got != previewLimit {
		t.Fatalf("unexpected preview length: %d", got)
	}
}

func TestMessagesAlternateRoles(t *testing.T) {
	svc := NewService()
	svc.RecordTurn("q1", "a1")
	svc.RecordTurn("q2", "a2")

	msgs := svc.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != chat.RoleUser || msgs[1].Role != chat.RoleAssistant {
		t.Fatalf("unexpected roles: %+v", msgs[:2])
	}
	if msgs[2].Content != "q2" || msgs[3].Content != "a2" {
		t.Fatalf("unexpected ordering: %+v", msgs[2:])
	}
}
