package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"aguichat/internal/config"
	agentHandler "aguichat/internal/handler/agent"
	mcpHandler "aguichat/internal/handler/mcp"
	metaHandler "aguichat/internal/handler/meta"
	middlewarePkg "aguichat/internal/middleware"
	agentService "aguichat/internal/service/agent"
	historyService "aguichat/internal/service/history"
	"aguichat/internal/service/toolstate"
	"aguichat/pkg/utils"
)

// NewRouter wires HTTP routes to the gateway services.
func NewRouter(
	agentSvc *agentService.Service,
	historySvc *historyService.Service,
	agentFile *config.AgentFile,
	state *toolstate.Store,
	logger *zap.Logger,
) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Route("/api", func(api chi.Router) {
		agentHandler.New(agentSvc, historySvc, logger).RegisterRoutes(api)
		metaHandler.New(agentFile.Prompts, historySvc).RegisterRoutes(api)
		mcpHandler.New(agentFile.MCP, state, logger).RegisterRoutes(api)
	})

	return r
}
