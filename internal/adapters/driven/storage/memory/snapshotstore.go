package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/custodia-labs/agenda/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Ensure SnapshotStore implements the interface.
var _ driven.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the last saved snapshot in memory.
type SnapshotStore struct {
	mu   sync.RWMutex
	snap *driven.Snapshot
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Save builds an index from vectors and keeps it with a copy of chunks.
func (s *SnapshotStore) Save(_ context.Context, info domain.SnapshotInfo, vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrInvalidInput, len(vectors), len(chunks))
	}
	idx, err := flat.Build(vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	stored := slices.Clone(chunks)
	for i := range stored {
		stored[i].Position = i
	}
	info.Count = idx.Len()
	info.Dimensions = idx.Dimensions()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &driven.Snapshot{Info: info, Index: idx, Chunks: stored}
	return nil
}

// Load returns the last saved snapshot.
func (s *SnapshotStore) Load(_ context.Context) (*driven.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return nil, fmt.Errorf("%w: nothing saved", domain.ErrIndexUnavailable)
	}
	return s.snap, nil
}

// Put installs a prepared snapshot as-is, without alignment checks.
// Useful for exercising load-time validation in callers.
func (s *SnapshotStore) Put(snap *driven.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Close is a no-op.
func (s *SnapshotStore) Close() error {
	return nil
}
