package uploadstore

import (
	"context"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

// NoopStore discards uploads. Used when no object storage is configured.
type NoopStore struct{}

// NewNoopStore constructs the store.
func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

// Put implements chat.ObjectStore.
func (*NoopStore) Put(context.Context, string, []byte, string) error {
	return nil
}

var _ chat.ObjectStore = (*NoopStore)(nil)
