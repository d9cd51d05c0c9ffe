package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	threadID := uuid.New()

	require.NoError(t, store.EnsureThread(ctx, chat.Thread{ID: threadID, Profile: "gpt-oss:120b-cloud", CreatedAt: time.Now()}))
	// Ensuring the same thread twice is a no-op.
	require.NoError(t, store.EnsureThread(ctx, chat.Thread{ID: threadID, Profile: "other"}))

	first := chat.Message{ID: uuid.New(), ThreadID: threadID, Role: chat.RoleUser, Content: "question"}
	second := chat.Message{ID: uuid.New(), ThreadID: threadID, Role: chat.RoleAssistant, Content: "answer"}
	require.NoError(t, store.AppendMessage(ctx, first))
	require.NoError(t, store.AppendMessage(ctx, second))

	messages, err := store.ListMessages(ctx, threadID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "question", messages[0].Content)
	require.Equal(t, "answer", messages[1].Content)
}

func TestMemoryStoreUnknownThread(t *testing.T) {
	store := NewMemoryStore()

	messages, err := store.ListMessages(context.Background(), uuid.New())
	require.NoError(t, err)
	require.Empty(t, messages)
}
