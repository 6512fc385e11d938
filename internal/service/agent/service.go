package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"aguichat/internal/config"
	"aguichat/internal/model/chat"
)

// defaultFallbackReply is served when no chat model is configured, so
// the gateway still answers end to end during development.
const defaultFallbackReply = "Агент не настроен: задайте ARK_API_KEY и ARK_MODEL, чтобы получать ответы модели."

// historyLimit caps how many prior messages feed the prompt.
const historyLimit = 10

// Service generates assistant replies through an eino chain.
type Service struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	system    string
	fallback  string
	logger    *zap.Logger
}

// NewService compiles the reply chain. Missing credentials leave the
// service in fallback mode instead of failing startup.
func NewService(ctx context.Context, cfg config.AIConfig, systemPrompt, fallbackReply string, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallbackReply == "" {
		fallbackReply = defaultFallbackReply
	}

	svc := &Service{
		system:   systemPrompt,
		fallback: fallbackReply,
		logger:   logger,
	}
	if !cfg.Enabled() {
		return svc, nil
	}

	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	svc.chatModel = chatModel
	svc.chain = runnable
	return svc, nil
}

// ModelEnabled reports whether a real chat model backs the service.
func (s *Service) ModelEnabled() bool {
	return s.chain != nil
}

// Reply produces the full assistant reply for one turn.
func (s *Service) Reply(ctx context.Context, history []chat.Message, query string) (string, error) {
	if s.chain == nil {
		return s.fallback, nil
	}

	input := map[string]any{
		"system":  s.system,
		"history": buildHistoryMessages(history),
		"query":   query,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}

	s.logger.Debug("generated reply",
		zap.Int("historyLen", len(history)),
		zap.Int("replyLen", len(response.Content)))
	return response.Content, nil
}

func buildHistoryMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return history
}

// UserFacingError renders a model failure the way the product shows it:
// billing problems get a fixed explanation, everything else passes
// through trimmed.
func UserFacingError(err error) string {
	message := strings.TrimSpace(err.Error())
	if message == "" {
		return "internal agent error"
	}
	if strings.Contains(strings.ToLower(message), "not enough money") {
		return "LLM провайдер вернул ошибку оплаты/лимитов (Not enough money). Проверь ключ/баланс/лимиты модели."
	}
	return message
}
