// spur/types/chat.go
package types

import (
	"time"

	"github.com/google/uuid"
)

// ChatRequest is the widget's chat-turn body. Message may be empty
// only for named-conversation creation (Name set, no Message). The
// same shape is the first frame on the websocket stream.
type ChatRequest struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	UserID    string `json:"userId"`
	Name      string `json:"name,omitempty"`
}

// ChatResponse carries the reply plus the session the turn landed in;
// the widget stores sessionId for the next turn. Reply is absent on
// name-only creation.
type ChatResponse struct {
	Reply     string    `json:"reply,omitempty"`
	SessionID uuid.UUID `json:"sessionId"`
}

// HistoryMessage is one transcript entry on the history endpoint.
type HistoryMessage struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionSummary is one row on the sessions panel, newest first.
type SessionSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryItem is one remembered fact on the memories endpoint.
type MemoryItem struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRequest asks for a conversation transcript to be archived to
// object storage.
type ExportRequest struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId"`
}

// ExportResponse names the stored transcript object.
type ExportResponse struct {
	Object string `json:"object"`
}
