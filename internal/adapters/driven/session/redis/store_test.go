package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

func setupStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewStore(context.Background(), Config{Addr: mr.Addr(), TTL: ttl})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestNewStore_MissingAddr(t *testing.T) {
	_, err := NewStore(context.Background(), Config{})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestNewStore_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := NewStore(ctx, Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, time.Hour)

	_, ok, err := s.Last(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	chunk := domain.Chunk{Position: 3, EventID: "e3", Title: "Fête des Lumières"}
	require.NoError(t, s.SetLast(ctx, "alice", chunk))

	got, ok, err := s.Last(ctx, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, chunk, got)

	assert.True(t, mr.Exists(KeyPrefix+"alice"))
	assert.Equal(t, time.Hour, mr.TTL(KeyPrefix+"alice"))
}

func TestStore_TTLExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := setupStore(t, time.Minute)

	require.NoError(t, s.SetLast(ctx, "", domain.Chunk{EventID: "e1"}))
	assert.True(t, mr.Exists(KeyPrefix+domain.DefaultSessionID))

	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Last(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptValue(t *testing.T) {
	s, mr := setupStore(t, 0)
	require.NoError(t, mr.Set(KeyPrefix+"bob", "not json"))

	_, _, err := s.Last(context.Background(), "bob")
	assert.Error(t, err)
}
