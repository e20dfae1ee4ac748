// Package memory provides an in-process session store bounded by an LRU.
package memory

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SessionStore = (*Store)(nil)

// DefaultCapacity is the number of sessions kept when none is configured.
const DefaultCapacity = 1024

// Store keeps the last chunk per session. Least recently used sessions are
// evicted once capacity is reached.
type Store struct {
	cache *lru.Cache[string, domain.Chunk]
}

// NewStore creates a session store holding up to capacity sessions.
func NewStore(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache, err := lru.New[string, domain.Chunk](capacity)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Store{cache: cache}, nil
}

// Last returns the last chunk recorded for the session.
func (s *Store) Last(_ context.Context, sessionID string) (domain.Chunk, bool, error) {
	chunk, ok := s.cache.Get(key(sessionID))
	return chunk, ok, nil
}

// SetLast records the chunk most recently shown to the session.
func (s *Store) SetLast(_ context.Context, sessionID string, chunk domain.Chunk) error {
	s.cache.Add(key(sessionID), chunk)
	return nil
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Close drops all sessions.
func (s *Store) Close() error {
	s.cache.Purge()
	return nil
}

func key(sessionID string) string {
	if sessionID == "" {
		return domain.DefaultSessionID
	}
	return sessionID
}
