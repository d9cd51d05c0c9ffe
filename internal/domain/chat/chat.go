package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role distinguishes who authored a message within a thread.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Thread is one conversation, bound to the profile it was opened with.
type Thread struct {
	ID        uuid.UUID
	Profile   string
	CreatedAt time.Time
}

// Message is one turn of a conversation.
type Message struct {
	ID        uuid.UUID
	ThreadID  uuid.UUID
	Role      Role
	Content   string
	CreatedAt time.Time
}

// ThreadStore persists conversation threads and their messages.
type ThreadStore interface {
	EnsureThread(ctx context.Context, thread Thread) error
	AppendMessage(ctx context.Context, msg Message) error
	ListMessages(ctx context.Context, threadID uuid.UUID) ([]Message, error)
}

// ExtractCache memoizes processed document text keyed by content digest.
type ExtractCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

// ObjectStore archives raw uploads before processing.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
