// Package app wires settings, adapters and core services into a runnable
// application shared by the CLI, HTTP, MCP and TUI surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/ai"
	sessionmemory "github.com/custodia-labs/agenda/internal/adapters/driven/session/memory"
	sessionredis "github.com/custodia-labs/agenda/internal/adapters/driven/session/redis"
	"github.com/custodia-labs/agenda/internal/adapters/driven/storage/snapshot"
	"github.com/custodia-labs/agenda/internal/connectors/jsonl"
	"github.com/custodia-labs/agenda/internal/connectors/opendata"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/core/services"
	"github.com/custodia-labs/agenda/internal/logger"
	"github.com/custodia-labs/agenda/internal/normalisers/event"
	"github.com/custodia-labs/agenda/internal/postprocessors/chunker"
)

// Source names accepted by Connector.
const (
	SourceOpenData = opendata.ConnectorType
	SourceJSONL    = jsonl.ConnectorType
)

// App holds the wired application.
type App struct {
	Settings  *domain.AppSettings
	AI        *ai.Services
	Snapshots *snapshot.Store
	Sessions  driven.SessionStore
	Ask       *services.AskService
	Ingest    *services.IngestService

	httpClient *http.Client
}

// New validates settings and builds every component. The serving snapshot
// is not loaded; call Ask.Rebuild for that.
func New(ctx context.Context, settings *domain.AppSettings) (*App, error) {
	if err := settings.Chunking.Validate(); err != nil {
		return nil, err
	}

	processor, err := chunker.FromSettings(settings.Chunking)
	if err != nil {
		return nil, err
	}

	aiServices, err := ai.NewServices(settings)
	if err != nil {
		return nil, err
	}

	dataDir, err := DataDir(settings)
	if err != nil {
		aiServices.Close()
		return nil, err
	}
	snapshots, err := snapshot.NewStore(dataDir)
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("open data directory %s: %w", dataDir, err)
	}

	sessions, err := NewSessionStore(ctx, settings.Session)
	if err != nil {
		aiServices.Close()
		snapshots.Close()
		return nil, err
	}

	ask := services.NewAskService(snapshots, aiServices.Embedding, aiServices.LLM, sessions, services.AskOptions{
		TopK: settings.Retrieval.TopK,
		Generate: driven.GenerateOptions{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		},
	})
	ingest := services.NewIngestService(event.New(), processor, aiServices.Embedding, snapshots, services.IngestOptions{})

	logger.Debug("Wired %s embeddings (%s), %s generation (%s), %s sessions, data in %s",
		settings.Embedding.Provider, aiServices.Embedding.ModelName(),
		settings.LLM.Provider, aiServices.LLM.ModelName(),
		settings.Session.Backend, dataDir)

	return &App{
		Settings:   settings,
		AI:         aiServices,
		Snapshots:  snapshots,
		Sessions:   sessions,
		Ask:        ask,
		Ingest:     ingest,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// NewSessionStore creates the session store selected by settings.
func NewSessionStore(ctx context.Context, s domain.SessionSettings) (driven.SessionStore, error) {
	switch s.Backend {
	case domain.SessionBackendRedis:
		store, err := sessionredis.NewStore(ctx, sessionredis.Config{Addr: s.RedisAddr, TTL: s.TTL})
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.SessionBackendMemory, "":
		store, err := sessionmemory.NewStore(s.Capacity)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown session backend %q", domain.ErrConfiguration, s.Backend)
	}
}

// DataDir resolves the data directory, defaulting to ~/.agenda/data.
func DataDir(settings *domain.AppSettings) (string, error) {
	if settings.DataDir != "" {
		return settings.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".agenda", "data"), nil
}

// Connector creates the event source named by source. path is required for
// the jsonl source.
func (a *App) Connector(source, path string) (driven.Connector, error) {
	switch source {
	case SourceOpenData, "":
		cfg := opendata.ConfigFromSettings(a.Settings.OpenData, time.Now())
		return opendata.New(cfg, a.httpClient), nil
	case SourceJSONL:
		if path == "" {
			return nil, fmt.Errorf("%w: the jsonl source needs a file path", domain.ErrInvalidInput)
		}
		return jsonl.New(path), nil
	default:
		return nil, fmt.Errorf("%w: unknown source %q (want %s or %s)",
			domain.ErrInvalidInput, source, SourceOpenData, SourceJSONL)
	}
}

// WatchSnapshots rebuilds the serving snapshot whenever ingestion installs
// a new index. It blocks until ctx is done.
func (a *App) WatchSnapshots(ctx context.Context) error {
	changes, err := snapshot.Watch(ctx, a.Snapshots.Dir(), snapshot.DefaultDebounce)
	if err != nil {
		return err
	}
	for range changes {
		if _, err := a.Ask.Rebuild(ctx); err != nil {
			logger.Warn("Reload after index change failed: %v", err)
		}
	}
	return nil
}

// AskService returns the ask pipeline.
func (a *App) AskService() driving.AskService {
	return a.Ask
}

// IngestService returns the ingestion pipeline.
func (a *App) IngestService() driving.IngestService {
	return a.Ingest
}

// History lists persisted snapshot builds, newest first.
func (a *App) History(ctx context.Context, limit int) ([]domain.SnapshotInfo, error) {
	return a.Snapshots.Metadata().ListSnapshots(ctx, limit)
}

// Close releases all resources.
func (a *App) Close() error {
	a.AI.Close()
	return errors.Join(a.Sessions.Close(), a.Snapshots.Close())
}
