package chat

import (
	"context"
	"time"
)

// ChatMessage — one immutable user-turn/reply pair. Assigned id and
// createdAt come from the store on insert.
type ChatMessage struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"createdAt"`
}

// RelayResult is what a successful relay returns to the widget.
type RelayResult struct {
	Reply     string `json:"reply"`
	MessageID int64  `json:"messageId"`
}

// Upstream — the external system that produces replies. Returns the raw
// response body; normalization happens in the service.
type Upstream interface {
	Send(ctx context.Context, userID, text string) ([]byte, error)
}

// Store — persistence for chat messages. Append-only, no update/delete.
type Store interface {
	Append(ctx context.Context, userID, message, reply string) (int64, error)
	History(ctx context.Context, userID string, limit int) ([]ChatMessage, error)
	Close() error
}

// Service — orchestration of one user turn.
type Service interface {
	Relay(ctx context.Context, userID, text string) (*RelayResult, error)
	History(ctx context.Context, userID string, limit int) ([]ChatMessage, error)
}
