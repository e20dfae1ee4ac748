package driven

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
)

// Connector fetches raw event records from a data source.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks the source is reachable and readable.
	Validate(ctx context.Context) error

	// FullSync fetches all records from the source.
	// Both channels are closed when the sync ends; at most one error is sent.
	FullSync(ctx context.Context) (<-chan domain.RawEvent, <-chan error)

	// Close releases resources.
	Close() error
}

// Normaliser transforms raw records into events.
type Normaliser interface {
	// Normalise returns the event, or domain.ErrInvalidInput wrapped when
	// the record cannot or should not be indexed.
	Normalise(ctx context.Context, raw *domain.RawEvent) (*domain.Event, error)
}

// PostProcessor splits events into chunks.
type PostProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process returns the chunks for event. Positions are left at zero.
	Process(ctx context.Context, event *domain.Event) ([]domain.Chunk, error)
}
