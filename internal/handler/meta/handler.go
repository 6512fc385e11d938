package meta

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"aguichat/internal/model/chat"
	historyService "aguichat/internal/service/history"
	"aguichat/pkg/utils"
)

// Handler serves the chat sidebar data: quick prompts and the turn log.
type Handler struct {
	prompts []chat.QuickPrompt
	history *historyService.Service
}

func New(prompts []chat.QuickPrompt, history *historyService.Service) *Handler {
	return &Handler{prompts: prompts, history: history}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/prompts", h.handlePrompts)
	r.Get("/chat/history", h.handleHistory)
}

func (h *Handler) handlePrompts(w http.ResponseWriter, r *http.Request) {
	prompts := h.prompts
	if prompts == nil {
		prompts = []chat.QuickPrompt{}
	}
	utils.RespondJSON(w, http.StatusOK, prompts)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.history.Entries())
}
