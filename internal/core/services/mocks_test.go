package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder returns fixed vectors by text and counts calls.
type mockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	dims    int
	err     error
	calls   int
	batches [][]string
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{vectors: make(map[string][]float32), dims: dims}
}

func (m *mockEmbedder) vector(text string) []float32 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	v := make([]float32, m.dims)
	v[len(text)%m.dims] = 1
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.batches = append(m.batches, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error { return nil }
func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLM records prompts and returns a fixed response.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockSnapshotStore returns a preset snapshot or error from Load.
type mockSnapshotStore struct {
	snap    *driven.Snapshot
	loadErr error
	saved   *savedSnapshot
	saveErr error
}

type savedSnapshot struct {
	info    domain.SnapshotInfo
	vectors [][]float32
	chunks  []domain.Chunk
}

func (m *mockSnapshotStore) Save(_ context.Context, info domain.SnapshotInfo, vectors [][]float32, chunks []domain.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &savedSnapshot{info: info, vectors: vectors, chunks: chunks}
	return nil
}

func (m *mockSnapshotStore) Load(_ context.Context) (*driven.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.snap, nil
}

func (m *mockSnapshotStore) Close() error { return nil }

// failingSessions fails every call.
type failingSessions struct{}

var errSessionDown = errors.New("session backend down")

func (failingSessions) Last(_ context.Context, _ string) (domain.Chunk, bool, error) {
	return domain.Chunk{}, false, errSessionDown
}

func (failingSessions) SetLast(_ context.Context, _ string, _ domain.Chunk) error {
	return errSessionDown
}

func (failingSessions) Close() error { return nil }

// mockConnector emits preset records, then an optional error.
type mockConnector struct {
	records []domain.RawEvent
	err     error
}

func (m *mockConnector) Type() string { return "mock" }
func (m *mockConnector) Validate(_ context.Context) error { return nil }
func (m *mockConnector) Close() error { return nil }

func (m *mockConnector) FullSync(ctx context.Context) (<-chan domain.RawEvent, <-chan error) {
	events := make(chan domain.RawEvent)
	errs := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errs)
		for _, r := range m.records {
			select {
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			case events <- r:
			}
		}
		if m.err != nil {
			errs <- m.err
		}
	}()
	return events, errs
}
