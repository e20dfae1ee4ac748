package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
	"github.com/custodia-labs/agenda/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Ingestion defaults.
const (
	DefaultEmbedBatchSize   = 64
	DefaultEmbedConcurrency = 4
)

// IngestOptions tunes an ingestion run.
type IngestOptions struct {
	// BatchSize is the number of chunks per EmbedBatch call.
	BatchSize int

	// Concurrency bounds the number of embedding calls in flight.
	Concurrency int

	// Now stamps the snapshot. Defaults to time.Now.
	Now func() time.Time
}

// IngestService builds snapshots: source, normalise, chunk, embed, persist.
type IngestService struct {
	normaliser driven.Normaliser
	processor  driven.PostProcessor
	embedder   driven.EmbeddingService
	store      driven.SnapshotStore
	opts       IngestOptions
}

// NewIngestService creates an ingest service.
func NewIngestService(
	normaliser driven.Normaliser,
	processor driven.PostProcessor,
	embedder driven.EmbeddingService,
	store driven.SnapshotStore,
	opts IngestOptions,
) *IngestService {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultEmbedBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultEmbedConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &IngestService{
		normaliser: normaliser,
		processor:  processor,
		embedder:   embedder,
		store:      store,
		opts:       opts,
	}
}

// Ingest reads every event from connector and persists a new snapshot.
func (s *IngestService) Ingest(ctx context.Context, connector driven.Connector) (*domain.IngestStats, error) {
	start := time.Now()
	logger.Section("Ingest " + connector.Type())

	stats := &domain.IngestStats{}
	chunks, err := s.collect(ctx, connector, stats)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: source produced no indexable events", domain.ErrInvalidInput)
	}
	for i := range chunks {
		chunks[i].Position = i
	}
	logger.Info("%d events read, %d skipped, %d chunks", stats.EventsRead, stats.EventsSkipped, len(chunks))

	vectors, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	info := domain.SnapshotInfo{
		BuildID:    uuid.NewString(),
		Count:      len(chunks),
		Dimensions: len(vectors[0]),
		BuiltAt:    s.opts.Now().UTC(),
	}
	if err := s.store.Save(ctx, info, vectors, chunks); err != nil {
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	stats.Chunks = len(chunks)
	stats.Snapshot = info
	stats.Duration = time.Since(start)
	logger.Infow("ingest complete",
		"build_id", info.BuildID,
		"chunks", info.Count,
		"duration", stats.Duration)
	return stats, nil
}

// collect drains the connector, normalising and chunking each record.
func (s *IngestService) collect(
	ctx context.Context, connector driven.Connector, stats *domain.IngestStats,
) ([]domain.Chunk, error) {
	events, errs := connector.FullSync(ctx)

	var chunks []domain.Chunk
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case raw, ok := <-events:
			if !ok {
				if err := <-errs; err != nil {
					return nil, fmt.Errorf("read %s: %w", connector.Type(), err)
				}
				return chunks, nil
			}
			stats.EventsRead++

			ev, err := s.normaliser.Normalise(ctx, &raw)
			if errors.Is(err, domain.ErrInvalidInput) {
				stats.EventsSkipped++
				logger.Debug("skip %s: %v", raw.URI, err)
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("normalise %s: %w", raw.URI, err)
			}

			cs, err := s.processor.Process(ctx, ev)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", s.processor.Name(), ev.EventID, err)
			}
			chunks = append(chunks, cs...)
		}
	}
}

// embed embeds chunk texts in batches, preserving order.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	size := s.opts.BatchSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for lo := 0; lo < len(chunks); lo += size {
		hi := min(lo+size, len(chunks))
		texts := make([]string, 0, hi-lo)
		for _, c := range chunks[lo:hi] {
			texts = append(texts, c.Text)
		}

		g.Go(func() error {
			out, err := s.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("%w: batch %d-%d: %w", domain.ErrEmbedding, lo, hi, err)
			}
			if len(out) != len(texts) {
				return fmt.Errorf("%w: batch %d-%d: got %d vectors for %d texts",
					domain.ErrEmbedding, lo, hi, len(out), len(texts))
			}
			copy(vectors[lo:hi], out)
			logger.Debug("embedded %d/%d", hi, len(chunks))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
