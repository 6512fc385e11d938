package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"aguichat/internal/config"
	"aguichat/internal/model/chat"
	"aguichat/internal/service/toolstate"
	"aguichat/pkg/utils"
)

// Handler exposes the tool-server catalog and its enabled flags.
type Handler struct {
	servers map[string]config.MCPServer
	state   *toolstate.Store
	logger  *zap.Logger
}

func New(servers map[string]config.MCPServer, state *toolstate.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{servers: servers, state: state, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/mcp/servers", h.handleList)
	r.Post("/mcp/servers/{id}/state", h.handleSetState)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	enabled := h.state.Load()

	ids := make([]string, 0, len(h.servers))
	for id := range h.servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	servers := make([]chat.ToolServer, 0, len(ids))
	for _, id := range ids {
		cfg := h.servers[id]

		tools := make([]chat.Tool, 0, len(cfg.Tools))
		for _, name := range cfg.Tools {
			tools = append(tools, chat.Tool{
				ID:      id + ":" + name,
				Name:    name,
				Command: cfg.EndpointOrCommand(),
			})
		}

		description := cfg.Description
		if description == "" {
			description = fmt.Sprintf("MCP server (%s)", cfg.Transport)
		}

		on, toggled := enabled[id]
		servers = append(servers, chat.ToolServer{
			ID:          id,
			Name:        id,
			Description: description,
			Enabled:     !toggled || on,
			Tools:       tools,
		})
	}

	utils.RespondJSON(w, http.StatusOK, servers)
}

func (h *Handler) handleSetState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.servers[id]; !ok {
		utils.RespondError(w, http.StatusNotFound, "server not found")
		return
	}

	var payload struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.state.Set(id, payload.Enabled); err != nil {
		h.logger.Error("failed to persist tool state", zap.String("server", id), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to persist state")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"id": id, "enabled": payload.Enabled})
}
