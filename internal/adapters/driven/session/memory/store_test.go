package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

func TestStore_LastMissing(t *testing.T) {
	s, err := NewStore(4)
	require.NoError(t, err)

	_, ok, err := s.Last(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetLastIsolatedPerSession(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(4)
	require.NoError(t, err)

	require.NoError(t, s.SetLast(ctx, "a", domain.Chunk{EventID: "e1"}))
	require.NoError(t, s.SetLast(ctx, "b", domain.Chunk{EventID: "e2"}))

	got, ok, err := s.Last(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e1", got.EventID)

	got, ok, err = s.Last(ctx, "b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e2", got.EventID)
}

func TestStore_EmptyIDIsDefaultSession(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(4)
	require.NoError(t, err)

	require.NoError(t, s.SetLast(ctx, "", domain.Chunk{EventID: "e1"}))

	got, ok, err := s.Last(ctx, domain.DefaultSessionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "e1", got.EventID)
}

func TestStore_Evicts(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(2)
	require.NoError(t, err)

	require.NoError(t, s.SetLast(ctx, "a", domain.Chunk{EventID: "1"}))
	require.NoError(t, s.SetLast(ctx, "b", domain.Chunk{EventID: "2"}))
	require.NoError(t, s.SetLast(ctx, "c", domain.Chunk{EventID: "3"}))

	assert.Equal(t, 2, s.Len())
	_, ok, _ := s.Last(ctx, "a")
	assert.False(t, ok)
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s, err := NewStore(0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			_ = s.SetLast(ctx, id, domain.Chunk{Position: n})
			_, _, _ = s.Last(ctx, id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, s.Len())
}
