package driven

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// SessionStore remembers the last chunk surfaced to each conversation,
// so vague follow-ups ("cet événement") can be resolved.
type SessionStore interface {
	// Last returns the last chunk for the session and whether one exists.
	Last(ctx context.Context, sessionID string) (domain.Chunk, bool, error)

	// SetLast records the chunk most recently shown to the session.
	SetLast(ctx context.Context, sessionID string, chunk domain.Chunk) error

	// Close releases resources.
	Close() error
}
