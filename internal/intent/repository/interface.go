package repository

import (
	"context"
	"errors"
	"time"

	"wasales_backend/internal/intent/domain"
)

// ErrNotFound is returned when no intent record exists for a conversation.
var ErrNotFound = errors.New("conversation intent not found")

// ErrStale is returned by Upsert when the stored row no longer matches the
// state the caller read. Another writer applied a turn in between; nothing
// is written.
var ErrStale = errors.New("conversation intent modified concurrently")

// Store is the persistence boundary of the intent service. The pgx
// implementation lives in this package; tests substitute an in-memory fake.
type Store interface {
	// Get loads the intent record for one conversation. Returns ErrNotFound
	// when the conversation has never produced a turn.
	Get(ctx context.Context, conversationID string) (*domain.ConversationIntent, error)

	// Upsert persists the full record atomically. prevUpdatedAt is the
	// updated_at value observed when the record was loaded (zero for a record
	// created this turn); the write applies only while the stored row still
	// carries it, otherwise ErrStale is returned.
	Upsert(ctx context.Context, record *domain.ConversationIntent, prevUpdatedAt time.Time) error
}
