package protocol

import (
	"encoding/json"
	"sort"
	"strings"
)

// EventKind tags a normalized protocol event.
type EventKind string

const (
	EventText    EventKind = "text"
	EventState   EventKind = "state"
	EventDone    EventKind = "done"
	EventUnknown EventKind = "unknown"
)

// Event is the sole contract between the wire layer and the session
// controller; downstream code never inspects raw protocol lines.
type Event struct {
	Kind  EventKind
	Delta string         // set for EventText
	State map[string]any // set for EventState
	Raw   any            // set for EventUnknown, kept for diagnostics
}

// doneSentinel signals normal stream termination.
const doneSentinel = "[DONE]"

// dataPrefix is the only framing marker the wire uses.
const dataPrefix = "data:"

// The classifier probes these fixed, ordered candidate lists. Order is
// the tie-break: the first match wins, there is no scoring.
var (
	stateKeys    = []string{"state", "shared_state"}
	stateNesting = []string{"data", "payload"}
	textKeys     = []string{"delta", "text", "content", "message", "output_text"}
)

// Normalize classifies one raw line into at most one event. The second
// return is false when the line carries no event at all.
func Normalize(line string) (Event, bool) {
	text := strings.TrimSpace(line)
	if text == "" {
		return Event{}, false
	}

	if rest, ok := strings.CutPrefix(text, dataPrefix); ok {
		text = strings.TrimSpace(rest)
		if text == "" {
			return Event{}, false
		}
	}

	if text == doneSentinel {
		return Event{Kind: EventDone}, true
	}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		// Not structured data: the whole line is a literal delta.
		return Event{Kind: EventText, Delta: text}, true
	}

	switch v := parsed.(type) {
	case string:
		if strings.TrimSpace(v) == doneSentinel {
			return Event{Kind: EventDone}, true
		}
		return Event{Kind: EventText, Delta: v}, true
	case map[string]any:
		// State detection outranks text detection when an object
		// carries both.
		if state, ok := findState(v); ok {
			return Event{Kind: EventState, State: state}, true
		}
		if delta, ok := findText(v); ok {
			return Event{Kind: EventText, Delta: delta}, true
		}
		return Event{Kind: EventUnknown, Raw: v}, true
	default:
		return Event{Kind: EventUnknown, Raw: parsed}, true
	}
}

// findState probes the fixed candidate locations for a state payload:
// top-level "state" or "shared_state", then the same keys one level
// under "data" or "payload". Arrays never qualify.
func findState(obj map[string]any) (map[string]any, bool) {
	for _, key := range stateKeys {
		if m, ok := obj[key].(map[string]any); ok {
			return m, true
		}
	}
	for _, outer := range stateNesting {
		inner, ok := obj[outer].(map[string]any)
		if !ok {
			continue
		}
		for _, key := range stateKeys {
			if m, ok := inner[key].(map[string]any); ok {
				return m, true
			}
		}
	}
	return nil, false
}

// findText walks the object breadth-first and returns the first
// non-empty string sitting under one of the known text keys. Children
// are enqueued in sorted-key order so classification stays deterministic
// regardless of map iteration order.
func findText(obj map[string]any) (string, bool) {
	queue := []map[string]any{obj}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, key := range textKeys {
			if s, ok := cur[key].(string); ok && s != "" {
				return s, true
			}
		}

		keys := make([]string, 0, len(cur))
		for k := range cur {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			queue = enqueueObjects(queue, cur[k])
		}
	}
	return "", false
}

func enqueueObjects(queue []map[string]any, v any) []map[string]any {
	switch child := v.(type) {
	case map[string]any:
		queue = append(queue, child)
	case []any:
		for _, item := range child {
			queue = enqueueObjects(queue, item)
		}
	}
	return queue
}
