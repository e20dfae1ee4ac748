package driving

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// AskService answers questions about indexed events.
type AskService interface {
	// Ask retrieves grounding chunks for the question and generates an answer.
	// An empty or whitespace-only question fails with domain.ErrInvalidInput
	// before any model or index call.
	Ask(ctx context.Context, q domain.Question) (*domain.Answer, error)

	// Rebuild loads the persisted snapshot and swaps it in atomically.
	// On failure the previous snapshot stays live.
	Rebuild(ctx context.Context) (domain.SnapshotInfo, error)

	// Health reports whether a snapshot is loaded and its identity.
	Health(ctx context.Context) HealthStatus

	// LastContext returns the audit trail of the most recent Ask.
	LastContext() []string
}

// HealthStatus describes the serving state.
type HealthStatus struct {
	// Ready is true when a snapshot is loaded.
	Ready bool `json:"ready"`

	// Snapshot is the loaded snapshot identity, zero when not ready.
	Snapshot domain.SnapshotInfo `json:"snapshot"`

	// EmbeddingModel and LLMModel name the configured models.
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
}
