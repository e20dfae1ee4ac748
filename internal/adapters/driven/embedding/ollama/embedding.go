// Package ollama embeds event chunks with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultModel      = "all-minilm"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 384
)

// Config selects the server and model. Zero values take the defaults above.
type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// EmbeddingService calls /api/embed, sending a whole batch per request.
type EmbeddingService struct {
	api        *ollamaapi.Client
	model      string
	dimensions int
}

type embedRequest struct {
	Model    string   `json:"model"`
	Input    []string `json:"input"`
	Truncate bool     `json:"truncate"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService builds the adapter.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &EmbeddingService{
		api:        ollamaapi.New(cfg.BaseURL, timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if s.dimensions <= 0 {
		s.dimensions = DefaultDimensions
	}
	return s
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text, in input order. Chunks longer than
// the model context are truncated server-side rather than rejected.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp embedResponse
	req := embedRequest{Model: s.model, Input: texts, Truncate: true}
	if err := s.api.Post(ctx, "/api/embed", req, &resp); err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, vec := range resp.Embeddings {
		if len(vec) != s.dimensions {
			return nil, fmt.Errorf("ollama embed: model %s returned %d dimensions, expected %d",
				s.model, len(vec), s.dimensions)
		}
		out[i] = toFloat32(vec)
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the server is up and the model has been pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.api.CheckModel(ctx, s.model)
}

func (s *EmbeddingService) Close() error { return nil }

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
