package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

func TestInstallsIndex(t *testing.T) {
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create index", "/data/vectors.idx", fsnotify.Create, true},
		{"write index", "/data/vectors.idx", fsnotify.Write, true},
		{"write and chmod", "/data/vectors.idx", fsnotify.Write | fsnotify.Chmod, true},
		{"remove index", "/data/vectors.idx", fsnotify.Remove, false},
		{"chmod only", "/data/vectors.idx", fsnotify.Chmod, false},
		{"temp file", "/data/vectors.idx.123.tmp", fsnotify.Create, false},
		{"metadata", "/data/metadata.db", fsnotify.Write, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, installsIndex(fsnotify.Event{Name: tt.path, Op: tt.op}))
		})
	}
}

func TestWatch_SignalsOnSave(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, s.Dir(), 20*time.Millisecond)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		info := domain.SnapshotInfo{BuildID: "watched", BuiltAt: time.Now()}
		_ = s.Save(context.Background(), info, vectors(), chunksN(4))
	}()

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for index change")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, dir, 10*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case <-changes:
		t.Fatal("unexpected signal")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	changes, err := Watch(ctx, t.TempDir(), 0)
	require.NoError(t, err)

	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}
