package core

import (
	"context"
	"time"
)

// Message is the domain model for a chat or system entry in the room log.
type Message struct {
	User   string    `json:"user"`
	Text   string    `json:"text"`
	Color  string    `json:"color"`
	Avatar string    `json:"avatar"`
	SentAt time.Time `json:"sent_at"`
}

// HistoryStore persists the bounded room log. Save is best-effort: callers
// log failures and keep the in-memory log authoritative.
type HistoryStore interface {
	Load(ctx context.Context) ([]Message, error)
	Save(ctx context.Context, messages []Message) error
}
