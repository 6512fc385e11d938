package chat

import "time"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status tracks the lifecycle of a message. Transitions are monotonic:
// a streaming message resolves to done or error and never goes back.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Message captures one turn's content.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	ServerIDs []string  `json:"serverIds,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessagePatch carries the fields a patch may overwrite. Nil fields are
// left untouched.
type MessagePatch struct {
	Content *string
	Status  *Status
}
