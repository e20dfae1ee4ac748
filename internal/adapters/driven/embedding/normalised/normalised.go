// Package normalised wraps an embedding service so every vector it returns
// has unit L2 norm, making inner product equal to cosine similarity.
package normalised

import (
	"context"

	"github.com/custodia-labs/agenda/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService L2-normalises the output of an inner service.
type EmbeddingService struct {
	driven.EmbeddingService
}

// Wrap returns svc with normalised outputs. Wrapping twice is a no-op.
func Wrap(svc driven.EmbeddingService) driven.EmbeddingService {
	if svc == nil {
		return nil
	}
	if _, ok := svc.(*EmbeddingService); ok {
		return svc
	}
	return &EmbeddingService{EmbeddingService: svc}
}

// Embed generates a unit-norm embedding for text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	v, err := s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	return flat.Normalize(v), nil
}

// EmbedBatch generates unit-norm embeddings for texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vs, err := s.EmbeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	for _, v := range vs {
		flat.Normalize(v)
	}
	return vs, nil
}
