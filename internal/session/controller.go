package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aguichat/internal/model/chat"
	"aguichat/internal/protocol"
	"aguichat/internal/store"
)

// failedReplyText is what the user sees in place of a reply when the
// transport gives up. The detailed cause goes to the log only.
const failedReplyText = "Ошибка: не удалось получить ответ агента. Попробуйте отправить сообщение ещё раз."

// Controller owns the lifecycle of a single conversation: it creates the
// paired user/assistant records for a turn, consumes the normalized
// event stream, and resolves every turn to a terminal message status.
// It is the only writer to the two stores while a turn is in flight.
type Controller struct {
	streamer  Streamer
	messages  *store.MessageStore
	shared    *store.SharedStateStore
	serverIDs func() []string
	logger    *zap.Logger

	sending atomic.Bool
	dropped atomic.Int64
}

// New builds a controller. serverIDs reports the tool servers enabled at
// the moment a turn starts; it may be nil.
func New(streamer Streamer, messages *store.MessageStore, shared *store.SharedStateStore, serverIDs func() []string, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		streamer:  streamer,
		messages:  messages,
		shared:    shared,
		serverIDs: serverIDs,
		logger:    logger,
	}
}

// SendMessage runs one full turn: record the user message, open the
// stream, apply events in arrival order, resolve the assistant message
// to done or error. Blank input is silently ignored. Transport failures
// never surface as errors; they end up as the assistant message's
// terminal state.
func (c *Controller) SendMessage(ctx context.Context, text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return
	}

	ids := c.enabledServerIDs()
	now := time.Now().UTC()

	c.messages.Append(chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   trimmed,
		Status:    chat.StatusDone,
		ServerIDs: ids,
		CreatedAt: now,
	})

	assistantID := uuid.NewString()
	c.messages.Append(chat.Message{
		ID:        assistantID,
		Role:      chat.RoleAssistant,
		Status:    chat.StatusStreaming,
		CreatedAt: now,
	})

	c.sending.Store(true)
	defer c.sending.Store(false)

	body, err := c.openTurnStream(ctx, StreamPayload{Message: trimmed, ServerIDs: ids})
	if err != nil {
		c.failTurn(assistantID, err)
		return
	}
	defer body.Close()

	c.consume(assistantID, protocol.NewScanner(body))
}

// Regenerate re-sends the most recent user message verbatim as a fresh
// turn. The prior assistant message is left untouched.
func (c *Controller) Regenerate(ctx context.Context) {
	last, ok := c.messages.LastByRole(chat.RoleUser)
	if !ok {
		return
	}
	c.SendMessage(ctx, last.Content)
}

// ClearConversation empties the transcript and resets shared state.
func (c *Controller) ClearConversation() {
	c.messages.Clear()
	c.shared.Reset()
}

// IsSending reports whether a turn is in flight. Collaborators use it to
// disable further sends; this layer does not enforce it.
func (c *Controller) IsSending() bool {
	return c.sending.Load()
}

// DroppedEvents reports how many unrecognized events were discarded.
// Debug surface only; the drop itself stays silent.
func (c *Controller) DroppedEvents() int64 {
	return c.dropped.Load()
}

// openTurnStream tries the metadata-bearing request first and retries
// exactly once with the message alone when it is rejected.
func (c *Controller) openTurnStream(ctx context.Context, payload StreamPayload) (io.ReadCloser, error) {
	body, richErr := c.streamer.OpenStream(ctx, payload)
	if richErr == nil {
		return body, nil
	}

	c.logger.Debug("stream open rejected, retrying with minimal payload", zap.Error(richErr))

	body, minErr := c.streamer.OpenStream(ctx, minimalPayload(payload))
	if minErr == nil {
		return body, nil
	}
	return nil, chooseOpenError(richErr, minErr)
}

func (c *Controller) consume(assistantID string, sc *protocol.Scanner) {
	for {
		ev, err := sc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.failTurn(assistantID, err)
			return
		}

		switch ev.Kind {
		case protocol.EventText:
			c.messages.AppendContentByID(assistantID, ev.Delta)
		case protocol.EventState:
			c.shared.MergeShallow(ev.State)
		case protocol.EventDone:
			// Graceful end: stop consuming, the turn is complete.
			c.finishTurn(assistantID)
			return
		case protocol.EventUnknown:
			n := c.dropped.Add(1)
			c.logger.Debug("dropping unrecognized stream event",
				zap.Int64("dropped", n),
				zap.Any("raw", ev.Raw))
		}
	}
	c.finishTurn(assistantID)
}

func (c *Controller) finishTurn(id string) {
	done := chat.StatusDone
	c.messages.PatchByID(id, chat.MessagePatch{Status: &done})
}

func (c *Controller) failTurn(id string, cause error) {
	c.logger.Error("turn failed",
		zap.String("messageId", id),
		zap.Error(cause))

	status := chat.StatusError
	content := failedReplyText
	c.messages.PatchByID(id, chat.MessagePatch{Status: &status, Content: &content})
}

func (c *Controller) enabledServerIDs() []string {
	if c.serverIDs == nil {
		return nil
	}
	return c.serverIDs()
}
