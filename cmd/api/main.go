package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"aguichat/internal/config"
	"aguichat/internal/handler"
	agentService "aguichat/internal/service/agent"
	historyService "aguichat/internal/service/history"
	"aguichat/internal/service/toolstate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	agentFile, err := config.LoadAgentFile(cfg.Agent.DefinitionPath)
	if err != nil {
		logger.Warn("agent definition unavailable, using defaults",
			zap.String("path", cfg.Agent.DefinitionPath), zap.Error(err))
		agentFile = config.AgentFile{SystemPrompt: "You are a helpful assistant."}
	}

	agentSvc, err := agentService.NewService(ctx, cfg.AI, agentFile.SystemPrompt, agentFile.FallbackReply, logger)
	if err != nil {
		logger.Fatal("failed to initialize agent service", zap.Error(err))
	}
	if agentSvc.ModelEnabled() {
		logger.Info("chat model initialized", zap.String("model", cfg.AI.Model))
	} else {
		logger.Info("no chat model configured, serving fallback replies")
	}

	historySvc := historyService.NewService()
	stateStore := toolstate.NewStore(cfg.Agent.StatePath)

	router := handler.NewRouter(agentSvc, historySvc, &agentFile, stateStore, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func newLogger(debug bool) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zapCfg.Build()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("agent gateway listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
