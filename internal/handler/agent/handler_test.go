package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"aguichat/internal/config"
	agentService "aguichat/internal/service/agent"
	historyService "aguichat/internal/service/history"
)

const testFallback = "Я заглушка: модель не настроена."

func newTestRouter(t *testing.T) (chi.Router, *historyService.Service) {
	t.Helper()

	agentSvc, err := agentService.NewService(context.Background(), config.AIConfig{}, "test", testFallback, nil)
	if err != nil {
		t.Fatalf("NewService err: %v", err)
	}
	history := historyService.NewService()

	r := chi.NewRouter()
	New(agentSvc, history, nil).RegisterRoutes(r)
	return r, history
}

func collectDeltas(t *testing.T, body string) (deltas []string, sawState, sawDone bool) {
	t.Helper()

	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			sawDone = true
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("unparseable data line %q: %v", line, err)
		}
		if delta, ok := event["delta"].(string); ok {
			deltas = append(deltas, delta)
			continue
		}
		if _, ok := event["state"]; ok {
			sawState = true
			continue
		}
		t.Fatalf("unexpected event shape: %q", payload)
	}
	return deltas, sawState, sawDone
}

func TestHandleAgentStreamsReply(t *testing.T) {
	router, history := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"message":"привет","serverIds":["docs"]}`))
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	deltas, sawState, sawDone := collectDeltas(t, rec.Body.String())
	if !sawDone {
		t.Fatal("stream missing [DONE]")
	}
	if !sawState {
		t.Fatal("stream missing state snapshot")
	}
	joined := strings.TrimSpace(strings.Join(deltas, ""))
	if joined != testFallback {
		t.Fatalf("reassembled reply %q != %q", joined, testFallback)
	}
	for _, delta := range deltas {
		if got := len([]rune(strings.TrimSpace(delta))); got > maxChunkLen {
			t.Fatalf("chunk %q exceeds %d runes", delta, maxChunkLen)
		}
	}
	if history.Len() != 1 {
		t.Fatalf("expected recorded turn, got %d", history.Len())
	}
}

func TestHandleAgentAliasRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/agui", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if _, _, sawDone := collectDeltas(t, rec.Body.String()); !sawDone {
		t.Fatal("alias stream missing [DONE]")
	}
}

func TestHandleAgentRejectsEmptyMessage(t *testing.T) {
	router, history := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"message":"   "}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("error body missing diagnostic")
	}
	if history.Len() != 0 {
		t.Fatal("rejected turn must not be recorded")
	}
}

func TestHandleAgentRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleAgentJSONMode(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/agent", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != testFallback {
		t.Fatalf("unexpected message: %v", body["message"])
	}
}

func TestChunkText(t *testing.T) {
	chunks := chunkText("one two three four five six seven", 10)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for _, chunk := range chunks {
		if !strings.HasSuffix(chunk, " ") {
			t.Fatalf("chunk %q missing trailing space", chunk)
		}
		if got := len([]rune(strings.TrimSpace(chunk))); got > 10 {
			t.Fatalf("chunk %q too long", chunk)
		}
	}
	joined := strings.Join(chunks, "")
	if strings.TrimSpace(joined) != "one two three four five six seven" {
		t.Fatalf("chunks do not reassemble: %q", joined)
	}
}

func TestChunkTextLongWordKept(t *testing.T) {
	chunks := chunkText("supercalifragilistic", 5)
	if len(chunks) != 1 || chunks[0] != "supercalifragilistic " {
		t.Fatalf("oversized word must survive as one chunk, got %v", chunks)
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if got := chunkText("", 24); got != nil {
		t.Fatalf("expected no chunks, got %v", got)
	}
}
