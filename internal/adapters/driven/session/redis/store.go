// Package redis provides a session store backed by Redis, so several
// server replicas can share follow-up memory.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.SessionStore = (*Store)(nil)

// KeyPrefix namespaces session keys.
const KeyPrefix = "agenda:session:"

// Config holds Redis connection settings.
type Config struct {
	Addr string
	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration
}

// Store keeps the last chunk per session as JSON under KeyPrefix+id.
type Store struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: missing redis address", domain.ErrConfiguration)
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Store{rdb: rdb, ttl: cfg.TTL}, nil
}

// Last returns the last chunk recorded for the session.
func (s *Store) Last(ctx context.Context, sessionID string) (domain.Chunk, bool, error) {
	raw, err := s.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return domain.Chunk{}, false, nil
	}
	if err != nil {
		return domain.Chunk{}, false, fmt.Errorf("get session: %w", err)
	}

	var chunk domain.Chunk
	if err := json.Unmarshal(raw, &chunk); err != nil {
		return domain.Chunk{}, false, fmt.Errorf("decode session: %w", err)
	}
	return chunk, true, nil
}

// SetLast records the chunk most recently shown to the session and
// refreshes its TTL.
func (s *Store) SetLast(ctx context.Context, sessionID string, chunk domain.Chunk) error {
	raw, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func key(sessionID string) string {
	if sessionID == "" {
		sessionID = domain.DefaultSessionID
	}
	return KeyPrefix + sessionID
}
