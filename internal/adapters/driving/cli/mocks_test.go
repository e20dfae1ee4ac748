package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/agenda/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/agenda/internal/app"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/core/services"
)

type mockAskService struct {
	mu         sync.Mutex
	answer     *domain.Answer
	err        error
	rebuildErr error
	health     driving.HealthStatus
	questions  []domain.Question
	rebuilds   int
}

func (m *mockAskService) Ask(_ context.Context, q domain.Question) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions = append(m.questions, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.answer, nil
}

func (m *mockAskService) Rebuild(_ context.Context) (domain.SnapshotInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuilds++
	return m.health.Snapshot, m.rebuildErr
}

func (m *mockAskService) Health(_ context.Context) driving.HealthStatus {
	return m.health
}

func (m *mockAskService) LastContext() []string {
	return nil
}

type mockIngestService struct {
	stats     *domain.IngestStats
	err       error
	connector driven.Connector
}

func (m *mockIngestService) Ingest(_ context.Context, c driven.Connector) (*domain.IngestStats, error) {
	m.connector = c
	return m.stats, m.err
}

type stubConnector struct {
	source string
	path   string
}

func (c *stubConnector) Type() string                     { return c.source }
func (c *stubConnector) Validate(_ context.Context) error { return nil }
func (c *stubConnector) Close() error                     { return nil }

func (c *stubConnector) FullSync(_ context.Context) (<-chan domain.RawEvent, <-chan error) {
	events := make(chan domain.RawEvent)
	errs := make(chan error)
	close(events)
	close(errs)
	return events, errs
}

type fakeRuntime struct {
	ask        *mockAskService
	ingest     *mockIngestService
	history    []domain.SnapshotInfo
	historyErr error
	watched    bool
	closed     bool
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		ask:    &mockAskService{answer: &domain.Answer{}},
		ingest: &mockIngestService{stats: &domain.IngestStats{}},
	}
}

func (f *fakeRuntime) AskService() driving.AskService       { return f.ask }
func (f *fakeRuntime) IngestService() driving.IngestService { return f.ingest }

func (f *fakeRuntime) Connector(source, path string) (driven.Connector, error) {
	switch source {
	case app.SourceOpenData:
		return &stubConnector{source: source}, nil
	case app.SourceJSONL:
		if path == "" {
			return nil, errors.New("the jsonl source needs a file path")
		}
		return &stubConnector{source: source, path: path}, nil
	default:
		return nil, errors.New("unknown source " + source)
	}
}

func (f *fakeRuntime) WatchSnapshots(ctx context.Context) error {
	f.watched = true
	<-ctx.Done()
	return nil
}

func (f *fakeRuntime) History(_ context.Context, limit int) ([]domain.SnapshotInfo, error) {
	if len(f.history) > limit {
		return f.history[:limit], f.historyErr
	}
	return f.history, f.historyErr
}

func (f *fakeRuntime) Close() error {
	f.closed = true
	return nil
}

// setupCLI installs an in-memory settings service and the fake runtime,
// and resets command flags between tests.
func setupCLI(t *testing.T, rt *fakeRuntime) *services.SettingsService {
	t.Helper()

	svc := services.NewSettingsService(memory.NewConfigStore()).
		WithEnv(func(string) (string, bool) { return "", false })

	oldSettings, oldFactory := settingsService, openRuntime
	SetSettingsService(svc)
	SetRuntimeFactory(func(context.Context, *domain.AppSettings) (Runtime, error) {
		return rt, nil
	})
	resetFlags()

	t.Cleanup(func() {
		settingsService, openRuntime = oldSettings, oldFactory
		resetFlags()
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})
	return svc
}

func resetFlags() {
	askSession, askTopK, askToday, askJSON = "", 0, false, false
	ingestSource, ingestFile = app.SourceOpenData, ""
	serveAddr, serveWatch, serveOrigins = "", false, nil
	chatSession, chatPlain = "", false
	statusHistory = 5
	versionShort = false
	mcpPort, mcpHost, mcpWatch = 0, "localhost", false
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
