package history

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

// MemoryStore is an in-memory chat.ThreadStore used for tests/dev.
type MemoryStore struct {
	mu       sync.RWMutex
	threads  map[uuid.UUID]chat.Thread
	messages map[uuid.UUID][]chat.Message
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		threads:  make(map[uuid.UUID]chat.Thread),
		messages: make(map[uuid.UUID][]chat.Message),
	}
}

// EnsureThread implements chat.ThreadStore.
func (s *MemoryStore) EnsureThread(_ context.Context, thread chat.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.threads[thread.ID]; !exists {
		s.threads[thread.ID] = thread
	}
	return nil
}

// AppendMessage implements chat.ThreadStore.
func (s *MemoryStore) AppendMessage(_ context.Context, msg chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], msg)
	return nil
}

// ListMessages implements chat.ThreadStore.
func (s *MemoryStore) ListMessages(_ context.Context, threadID uuid.UUID) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.messages[threadID]
	out := make([]chat.Message, len(stored))
	copy(out, stored)
	return out, nil
}

var _ chat.ThreadStore = (*MemoryStore)(nil)
