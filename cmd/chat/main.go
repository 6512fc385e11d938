package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"aguichat/internal/client"
	"aguichat/internal/model/chat"
	"aguichat/internal/session"
	"aguichat/internal/store"
)

// Minimal terminal driver for the streaming client: one conversation,
// one line per turn.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	baseURL := strings.TrimSpace(os.Getenv("AGENT_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	logger, err := newLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	api := client.New(baseURL)
	messages := store.NewMessageStore()
	shared := store.NewSharedStateStore()

	serverIDs := func() []string {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		servers, err := api.ToolServers(ctx)
		if err != nil {
			logger.Debug("tool server list unavailable", zap.Error(err))
			return nil
		}
		ids := make([]string, 0, len(servers))
		for _, server := range servers {
			if server.Enabled {
				ids = append(ids, server.ID)
			}
		}
		return ids
	}

	controller := session.New(api, messages, shared, serverIDs, logger)

	printQuickPrompts(api)
	fmt.Println("Commands: /clear, /regen, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/clear":
			controller.ClearConversation()
			fmt.Println("conversation cleared")
			continue
		case "/regen":
			controller.Regenerate(context.Background())
		default:
			controller.SendMessage(context.Background(), line)
		}

		if reply, ok := messages.LastByRole(chat.RoleAssistant); ok {
			fmt.Println(reply.Content)
		}
	}
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if strings.TrimSpace(os.Getenv("AGENT_DEBUG")) == "" {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func printQuickPrompts(api *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prompts, err := api.QuickPrompts(ctx)
	if err != nil || len(prompts) == 0 {
		return
	}
	fmt.Println("Quick prompts:")
	for _, p := range prompts {
		fmt.Printf("  %s: %s\n", p.Title, p.Prompt)
	}
}
