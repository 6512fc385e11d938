package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aguichat/internal/config"
	"aguichat/internal/model/chat"
)

func TestFallbackModeReply(t *testing.T) {
	svc, err := NewService(context.Background(), config.AIConfig{}, "be helpful", "модель не подключена", nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	if svc.ModelEnabled() {
		t.Fatal("expected fallback mode without credentials")
	}

	reply, err := svc.Reply(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("Reply err: %v", err)
	}
	if reply != "модель не подключена" {
		t.Fatalf("unexpected fallback reply: %q", reply)
	}
}

func TestBuildHistoryMessagesLimit(t *testing.T) {
	var messages []chat.Message
	for i := 0; i < 20; i++ {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		messages = append(messages, chat.Message{Role: role, Content: "m"})
	}

	history := buildHistoryMessages(messages)
	if len(history) != historyLimit {
		t.Fatalf("expected history capped at %d, got %d", historyLimit, len(history))
	}
}

func TestBuildHistoryMessagesEmpty(t *testing.T) {
	if got := buildHistoryMessages(nil); got != nil {
		t.Fatalf("expected nil history, got %v", got)
	}
}

func TestUserFacingError(t *testing.T) {
	billing := UserFacingError(errors.New("provider said: Not enough money"))
	if !strings.Contains(billing, "оплаты") {
		t.Fatalf("expected billing explanation, got %q", billing)
	}

	plain := UserFacingError(errors.New("context deadline exceeded"))
	if plain != "context deadline exceeded" {
		t.Fatalf("unexpected passthrough: %q", plain)
	}
}
