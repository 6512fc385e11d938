package agent

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	agentService "aguichat/internal/service/agent"
	historyService "aguichat/internal/service/history"
	"aguichat/pkg/utils"
)

// maxChunkLen caps one streamed delta, counted in runes.
const maxChunkLen = 24

// doneSentinel terminates every stream.
const doneSentinel = "[DONE]"

// Handler runs the agent for one turn and streams the reply.
type Handler struct {
	agentSvc *agentService.Service
	history  *historyService.Service
	logger   *zap.Logger
}

func New(agentSvc *agentService.Service, history *historyService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{agentSvc: agentSvc, history: history, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/agent", h.handleAgent)
	r.Post("/agui", h.handleAgent)
}

type agentRequest struct {
	Message   string   `json:"message"`
	ServerIDs []string `json:"serverIds"`
	Tool      string   `json:"tool"`
}

func (h *Handler) handleAgent(w http.ResponseWriter, r *http.Request) {
	var payload agentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	streamMode := wantsStream(r)

	reply, err := h.agentSvc.Reply(r.Context(), h.history.Messages(), message)
	if err != nil {
		h.logger.Error("agent reply failed", zap.Error(err))
		text := "Ошибка: " + agentService.UserFacingError(err)
		if streamMode {
			h.streamReply(w, text, nil)
			return
		}
		utils.RespondJSON(w, http.StatusOK, map[string]any{"message": agentService.UserFacingError(err), "error": true})
		return
	}

	h.history.RecordTurn(message, reply)

	if !streamMode {
		utils.RespondJSON(w, http.StatusOK, map[string]any{"message": reply})
		return
	}
	h.streamReply(w, reply, h.stateSnapshot(payload.ServerIDs))
}

// streamReply writes the reply as delta chunks, an optional state
// snapshot, and the terminator.
func (h *Handler) streamReply(w http.ResponseWriter, text string, state map[string]any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	for _, chunk := range chunkText(text, maxChunkLen) {
		if err := utils.SendSSEChunk(w, flusher, map[string]any{"delta": chunk}); err != nil {
			h.logger.Debug("client went away mid-stream", zap.Error(err))
			return
		}
	}
	if state != nil {
		if err := utils.SendSSEChunk(w, flusher, map[string]any{"state": state}); err != nil {
			h.logger.Debug("client went away mid-stream", zap.Error(err))
			return
		}
	}
	if err := utils.SendSSERaw(w, flusher, doneSentinel); err != nil {
		h.logger.Debug("failed to write stream terminator", zap.Error(err))
	}
}

func (h *Handler) stateSnapshot(serverIDs []string) map[string]any {
	if serverIDs == nil {
		serverIDs = []string{}
	}
	return map[string]any{
		"turns":      h.history.Len(),
		"server_ids": serverIDs,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	}
}

// wantsStream decides between SSE and plain JSON for a turn. The
// explicit stream query parameter wins; otherwise the Accept header
// decides, defaulting to streaming.
func wantsStream(r *http.Request) bool {
	switch r.URL.Query().Get("stream") {
	case "true":
		return true
	case "false":
		return false
	}

	accept := strings.ToLower(r.Header.Get("Accept"))
	if accept == "" || strings.Contains(accept, "*/*") {
		return true
	}
	if strings.Contains(accept, "text/event-stream") {
		return true
	}
	if strings.Contains(accept, "application/json") {
		return false
	}
	return true
}

// chunkText splits text into word-aligned chunks of at most maxLen
// runes. Every chunk carries a trailing space so concatenation
// reconstructs the word boundaries.
func chunkText(text string, maxLen int) []string {
	if text == "" {
		return nil
	}

	var chunks []string
	current := ""
	for _, word := range strings.Split(text, " ") {
		candidate := word
		if current != "" {
			candidate = strings.TrimSpace(current + " " + word)
		}
		if len([]rune(candidate)) > maxLen && current != "" {
			chunks = append(chunks, current+" ")
			current = word
		} else {
			current = candidate
		}
	}
	if current != "" {
		chunks = append(chunks, current+" ")
	}
	return chunks
}
