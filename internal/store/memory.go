package store

import (
	"context"
	"sync"

	"voice-assistant/internal/types"
)

// ChatStore persists one chat document per user.
type ChatStore interface {
	// Append adds messages to the user's document, creating it on first use.
	Append(ctx context.Context, userID string, msgs ...types.Message) error
	// History returns the user's documents; empty when none exist.
	History(ctx context.Context, userID string) ([]types.Chat, error)
	Close(ctx context.Context) error
}

type MemoryStore struct {
	mu          sync.RWMutex
	chats       map[string][]types.Message
	maxMessages int
}

// NewMemoryStore keeps at most maxMessages per user; 0 keeps everything.
func NewMemoryStore(maxMessages int) *MemoryStore {
	return &MemoryStore{
		chats:       make(map[string][]types.Message),
		maxMessages: maxMessages,
	}
}

func (m *MemoryStore) Append(_ context.Context, userID string, msgs ...types.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[userID] = append(m.chats[userID], msgs...)
	m.trimLocked(userID)
	return nil
}

func (m *MemoryStore) History(_ context.Context, userID string) ([]types.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs, ok := m.chats[userID]
	if !ok {
		return []types.Chat{}, nil
	}
	copyMsgs := make([]types.Message, len(msgs))
	copy(copyMsgs, msgs)
	return []types.Chat{{UserID: userID, Messages: copyMsgs}}, nil
}

func (m *MemoryStore) Close(context.Context) error { return nil }

func (m *MemoryStore) trimLocked(userID string) {
	if m.maxMessages <= 0 {
		return
	}
	msgs := m.chats[userID]
	if len(msgs) > m.maxMessages {
		m.chats[userID] = msgs[len(msgs)-m.maxMessages:]
	}
}
