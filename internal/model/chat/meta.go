package chat

import "time"

// QuickPrompt is a canned prompt the UI offers for one-click sending.
type QuickPrompt struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
	Tone   string `json:"tone,omitempty"`
}

// HistoryEntry summarizes a past exchange for the history panel.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tool describes a single tool exposed by a tool server.
type Tool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Command     string `json:"command"`
}

// ToolServer describes one MCP server and its toggle state.
type ToolServer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	LatencyMs   int    `json:"latencyMs,omitempty"`
	Tools       []Tool `json:"tools"`
}
