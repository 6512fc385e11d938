package config

import (
	"encoding/json"
	"fmt"
	"os"

	"aguichat/internal/model/chat"
)

// AgentFile mirrors the agent definition file: system prompt, quick
// prompts offered to the user, and the MCP server map.
type AgentFile struct {
	SystemPrompt  string               `json:"system_prompt"`
	FallbackReply string               `json:"fallback_reply"`
	Prompts       []chat.QuickPrompt   `json:"prompts"`
	MCP           map[string]MCPServer `json:"mcp"`
}

// MCPServer describes one configured tool server.
type MCPServer struct {
	Transport   string   `json:"transport"`
	Endpoint    string   `json:"endpoint,omitempty"`
	Command     string   `json:"command,omitempty"`
	Args        []string `json:"args,omitempty"`
	Tools       []string `json:"tools"`
	Description string   `json:"description,omitempty"`
}

// EndpointOrCommand returns whichever launch target the server defines.
func (s MCPServer) EndpointOrCommand() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return s.Command
}

// LoadAgentFile reads and parses the agent definition.
func LoadAgentFile(path string) (AgentFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return AgentFile{}, fmt.Errorf("read agent config: %w", err)
	}

	var file AgentFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return AgentFile{}, fmt.Errorf("parse agent config %s: %w", path, err)
	}
	if file.SystemPrompt == "" {
		file.SystemPrompt = "You are a helpful assistant."
	}
	return file, nil
}
