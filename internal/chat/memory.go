package chat

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps chat history in memory. Used by tests and as a
// development mode when no Postgres is available.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	messages []ChatMessage
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Append(_ context.Context, userID, message, reply string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.messages = append(s.messages, ChatMessage{
		ID:        id,
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		CreatedAt: time.Now(),
	})
	return id, nil
}

func (s *MemoryStore) History(_ context.Context, userID string, limit int) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ChatMessage
	for _, m := range s.messages {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}

	result := make([]ChatMessage, len(out))
	copy(result, out)
	return result, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
