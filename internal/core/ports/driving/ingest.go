package driving

import (
	"context"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// IngestService builds a new snapshot from an event source.
type IngestService interface {
	// Ingest reads all events from the connector, chunks and embeds them,
	// and persists a new snapshot. The serving snapshot is not touched.
	Ingest(ctx context.Context, connector driven.Connector) (*domain.IngestStats, error)
}
