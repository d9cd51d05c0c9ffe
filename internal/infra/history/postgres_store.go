package history

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jmorelli/chatdocs/internal/domain/chat"
)

// PostgresStore implements chat.ThreadStore using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureThread upserts the thread row. Re-sending a thread id is a no-op.
func (s *PostgresStore) EnsureThread(ctx context.Context, thread chat.Thread) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO threads (id, profile, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, thread.ID, thread.Profile, thread.CreatedAt)
	return err
}

// AppendMessage inserts one conversation turn.
func (s *PostgresStore) AppendMessage(ctx context.Context, msg chat.Message) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO messages (id, thread_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.ThreadID, string(msg.Role), msg.Content, msg.CreatedAt)
	return err
}

// ListMessages returns a thread's turns oldest first.
func (s *PostgresStore) ListMessages(ctx context.Context, threadID uuid.UUID) ([]chat.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, thread_id, role, content, created_at
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at, id
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []chat.Message
	for rows.Next() {
		var (
			msg  chat.Message
			role string
		)
		if err := rows.Scan(&msg.ID, &msg.ThreadID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msg.Role = chat.Role(role)
		out = append(out, msg)
	}
	return out, rows.Err()
}

var _ chat.ThreadStore = (*PostgresStore)(nil)
