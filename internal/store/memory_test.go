package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/types"
)

func msg(sender, text string) types.Message {
	return types.Message{Sender: sender, Text: text, Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func TestMemoryStore_EmptyHistory(t *testing.T) {
	s := NewMemoryStore(0)
	chats, err := s.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, chats)
	assert.Empty(t, chats)
}

func TestMemoryStore_AppendCreatesThenExtends(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "u1", msg(types.SenderUser, "hi"), msg(types.SenderAssistant, "hello")))
	require.NoError(t, s.Append(ctx, "u1", msg(types.SenderUser, "bye")))
	require.NoError(t, s.Append(ctx, "u2", msg(types.SenderUser, "other")))

	chats, err := s.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "u1", chats[0].UserID)
	require.Len(t, chats[0].Messages, 3)
	assert.Equal(t, "bye", chats[0].Messages[2].Text)
	assert.Equal(t, types.SenderAssistant, chats[0].Messages[1].Sender)
}

func TestMemoryStore_Trim(t *testing.T) {
	s := NewMemoryStore(2)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, "u", msg(types.SenderUser, fmt.Sprint(i))))
	}

	chats, err := s.History(ctx, "u")
	require.NoError(t, err)
	require.Len(t, chats[0].Messages, 2)
	assert.Equal(t, "3", chats[0].Messages[0].Text)
	assert.Equal(t, "4", chats[0].Messages[1].Text)
}

func TestMemoryStore_HistoryIsACopy(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()
	require.NoError(t, s.Append(ctx, "u", msg(types.SenderUser, "original")))

	chats, _ := s.History(ctx, "u")
	chats[0].Messages[0].Text = "mutated"

	again, _ := s.History(ctx, "u")
	assert.Equal(t, "original", again[0].Messages[0].Text)
}

func TestMemoryStore_ConcurrentAppend(t *testing.T) {
	s := NewMemoryStore(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, "u", msg(types.SenderUser, "x"))
		}()
	}
	wg.Wait()

	chats, err := s.History(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, chats[0].Messages, 20)
	assert.NoError(t, s.Close(ctx))
}
