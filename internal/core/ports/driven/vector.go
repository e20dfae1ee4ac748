package driven

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// VectorIndex provides exact similarity search over an immutable set of
// L2-normalised vectors. Position i corresponds to chunk i of the snapshot.
type VectorIndex interface {
	// Search returns min(k, Len()) hits ordered by descending score,
	// ties broken by lower position. k <= 0 yields no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimensions returns the vector size.
	Dimensions() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the ordinal of the matched vector.
	Position int

	// Score is the inner product with the query.
	Score float64
}

// Snapshot is an immutable, aligned (index, metadata) pair.
type Snapshot struct {
	Info   domain.SnapshotInfo
	Index  VectorIndex
	Chunks []domain.Chunk
}

// Chunk returns the metadata record at position.
func (s *Snapshot) Chunk(position int) (domain.Chunk, bool) {
	if position < 0 || position >= len(s.Chunks) {
		return domain.Chunk{}, false
	}
	return s.Chunks[position], true
}

// SnapshotStore persists and loads snapshots.
type SnapshotStore interface {
	// Save writes vectors and chunks as a new snapshot identified by info.BuildID.
	// len(vectors) must equal len(chunks).
	Save(ctx context.Context, info domain.SnapshotInfo, vectors [][]float32, chunks []domain.Chunk) error

	// Load reads the persisted snapshot. Missing, corrupt, or misaligned
	// artifacts are reported as domain.ErrIndexUnavailable.
	Load(ctx context.Context) (*Snapshot, error)

	// Close releases resources.
	Close() error
}
