// Package snapshot persists the vector index file next to the SQLite
// metadata store and loads them back as one aligned snapshot.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/agenda/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/agenda/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

// IndexFile is the vector index file name inside the data directory.
const IndexFile = "vectors.idx"

// Store is a filesystem + SQLite snapshot store.
type Store struct {
	dir  string
	meta *sqlite.Store
}

// NewStore opens (creating if needed) the snapshot store in dataDir.
func NewStore(dataDir string) (*Store, error) {
	meta, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: filepath.Dir(meta.Path()), meta: meta}, nil
}

// IndexPath returns the path of the vector index file.
func (s *Store) IndexPath() string {
	return filepath.Join(s.dir, IndexFile)
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Metadata exposes the underlying metadata store.
func (s *Store) Metadata() *sqlite.Store {
	return s.meta
}

// Save writes a new snapshot. The index is written to a temporary file and
// renamed into place after the metadata transaction commits.
func (s *Store) Save(ctx context.Context, info domain.SnapshotInfo, vectors [][]float32, chunks []domain.Chunk) error {
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrInvalidInput, len(vectors), len(chunks))
	}

	idx, err := flat.Build(vectors)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	info.Count = idx.Len()
	info.Dimensions = idx.Dimensions()

	tmp, err := os.CreateTemp(s.dir, IndexFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := idx.Encode(tmp, info.BuildID); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if err := s.meta.ReplaceSnapshot(ctx, info, chunks); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	if err := os.Rename(tmpPath, s.IndexPath()); err != nil {
		return fmt.Errorf("install index: %w", err)
	}

	logger.Info("Saved snapshot %s: %d vectors of %d dimensions", info.BuildID, info.Count, info.Dimensions)
	return nil
}

// Load reads and cross-checks the index file and metadata.
func (s *Store) Load(ctx context.Context) (*driven.Snapshot, error) {
	f, err := os.Open(s.IndexPath())
	if err != nil {
		return nil, fmt.Errorf("%w: open index: %w", domain.ErrIndexUnavailable, err)
	}
	defer f.Close()

	idx, buildID, err := flat.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	info, chunks, err := s.meta.ActiveSnapshot(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no metadata stored", domain.ErrIndexUnavailable)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	snap, err := Assemble(info, idx, chunks)
	if err != nil {
		return nil, err
	}
	if buildID != info.BuildID {
		return nil, fmt.Errorf("%w: index build %q does not match metadata build %q",
			domain.ErrIndexUnavailable, buildID, info.BuildID)
	}

	logger.Debug("Loaded snapshot %s (%d chunks)", info.BuildID, len(chunks))
	return snap, nil
}

// Close releases the metadata database.
func (s *Store) Close() error {
	return s.meta.Close()
}

// Assemble pairs an index with its metadata, rejecting misaligned pairs.
func Assemble(info domain.SnapshotInfo, idx driven.VectorIndex, chunks []domain.Chunk) (*driven.Snapshot, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: no index", domain.ErrIndexUnavailable)
	}
	if idx.Len() != len(chunks) {
		return nil, fmt.Errorf("%w: index has %d vectors but metadata has %d records",
			domain.ErrIndexUnavailable, idx.Len(), len(chunks))
	}
	info.Count = idx.Len()
	info.Dimensions = idx.Dimensions()
	return &driven.Snapshot{Info: info, Index: idx, Chunks: chunks}, nil
}
