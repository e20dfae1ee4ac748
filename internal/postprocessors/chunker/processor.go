// Package chunker provides a fixed-size, overlapping text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 500

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// Processor splits event text into fixed-size chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a new chunker processor with the given options.
// Parameters that cannot make progress fail here with domain.ErrConfiguration.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	cfg := domain.ChunkSettings{Size: p.chunkSize, Overlap: p.overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// FromSettings creates a processor from chunk settings.
func FromSettings(cfg domain.ChunkSettings) (*Processor, error) {
	return New(WithChunkSize(cfg.Size), WithOverlap(cfg.Overlap))
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split windows text using the processor's parameters.
func (p *Processor) Split(text string) []string {
	return split(text, p.chunkSize, p.overlap)
}

// Process splits the event's vectorise text into chunks carrying the event fields.
func (p *Processor) Process(_ context.Context, event *domain.Event) ([]domain.Chunk, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: nil event", domain.ErrInvalidInput)
	}

	windows := p.Split(event.VectoriseText)
	chunks := make([]domain.Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, domain.Chunk{
			EventID:       event.EventID,
			Title:         event.Title,
			DatesText:     event.DatesText,
			GeoText:       event.GeoText,
			VectoriseText: event.VectoriseText,
			Text:          w,
		})
	}
	return chunks, nil
}

// Split windows text into chunks of chunkSize characters, each starting
// chunkSize-overlap characters after the previous one. The last window is
// clamped to the end of the text. Lengths are counted in runes.
func Split(text string, chunkSize, overlap int) ([]string, error) {
	cfg := domain.ChunkSettings{Size: chunkSize, Overlap: overlap}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return split(text, chunkSize, overlap), nil
}

func split(text string, chunkSize, overlap int) []string {
	if text == "" {
		return []string{}
	}

	runes := []rune(text)
	n := len(runes)
	if n <= chunkSize {
		return []string{text}
	}

	stride := chunkSize - overlap
	chunks := make([]string, 0, n/stride+1)
	for start := 0; start < n; start += stride {
		end := start + chunkSize
		if end > n {
			end = n
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
