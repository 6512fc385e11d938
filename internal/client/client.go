package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"aguichat/internal/model/chat"
	"aguichat/internal/session"
)

// Client talks to the agent gateway's HTTP API. It implements the
// session controller's Streamer along with the read-only collaborator
// calls the surrounding UI consumes.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a gateway client. The underlying http.Client carries no
// global timeout: a turn's stream runs until the server closes it, and
// callers bound the metadata calls through their contexts.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

type streamRequest struct {
	Message   string   `json:"message"`
	ServerIDs []string `json:"serverIds,omitempty"`
	Tool      string   `json:"tool,omitempty"`
}

// OpenStream opens the reply stream for one turn. A non-2xx response is
// returned as an error carrying the server's diagnostic text; the
// controller's negotiation decides what to do with it.
func (c *Client) OpenStream(ctx context.Context, payload session.StreamPayload) (io.ReadCloser, error) {
	body, err := json.Marshal(streamRequest{
		Message:   payload.Message,
		ServerIDs: payload.ServerIDs,
		Tool:      payload.Tool,
	})
	if err != nil {
		return nil, fmt.Errorf("encode stream request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/agent", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open agent stream: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail := readErrorDetail(resp.Body)
		resp.Body.Close()
		if detail == "" {
			return nil, fmt.Errorf("agent stream rejected: %s", resp.Status)
		}
		return nil, fmt.Errorf("agent stream rejected: %s", detail)
	}
	return resp.Body, nil
}

// QuickPrompts fetches the canned prompt list. Callers cache the result.
func (c *Client) QuickPrompts(ctx context.Context) ([]chat.QuickPrompt, error) {
	var prompts []chat.QuickPrompt
	if err := c.getJSON(ctx, "/api/chat/prompts", &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// History fetches past exchange summaries. Callers cache the result.
func (c *Client) History(ctx context.Context) ([]chat.HistoryEntry, error) {
	var entries []chat.HistoryEntry
	if err := c.getJSON(ctx, "/api/chat/history", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ToolServers fetches the tool-server catalog with current toggle state.
func (c *Client) ToolServers(ctx context.Context) ([]chat.ToolServer, error) {
	var servers []chat.ToolServer
	if err := c.getJSON(ctx, "/api/mcp/servers", &servers); err != nil {
		return nil, err
	}
	return servers, nil
}

// SetToolServerState toggles a tool server. Call sites treat it as
// fire-and-forget: failures are logged, never retried.
func (c *Client) SetToolServerState(ctx context.Context, id string, enabled bool) error {
	body, err := json.Marshal(map[string]bool{"enabled": enabled})
	if err != nil {
		return fmt.Errorf("encode state request: %w", err)
	}

	url := fmt.Sprintf("%s/api/mcp/servers/%s/state", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build state request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("persist tool server state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("persist tool server state: %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readErrorDetail extracts a human-readable diagnostic from an error
// response: the "error" field when the body is the gateway's JSON error
// shape, the trimmed body text otherwise.
func readErrorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 2048))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var shaped struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &shaped) == nil && shaped.Error != "" {
		return shaped.Error
	}
	return strings.TrimSpace(string(raw))
}
