// Package openai embeds text through an OpenAI compatible /embeddings
// endpoint. Mistral speaks the same protocol.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second

	// MistralBaseURL serves mistral-embed.
	MistralBaseURL = "https://api.mistral.ai/v1"

	fallbackDimensions = 1536
)

var knownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"mistral-embed":          1024,
}

// Config for NewEmbeddingService. APIKey is required; Provider labels errors
// and defaults to "openai".
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Provider string

	// Dimensions overrides the model's native size. Only text-embedding-3
	// models accept a shortened output.
	Dimensions int
}

// EmbeddingService embeds a batch per request.
type EmbeddingService struct {
	api        *httpapi.Client
	model      string
	dimensions int
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewEmbeddingService builds the adapter.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	provider := orDefault(cfg.Provider, "openai")
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	model := orDefault(cfg.Model, DefaultModel)

	dims := cfg.Dimensions
	if dims <= 0 {
		dims = knownDimensions[model]
	}
	if dims <= 0 {
		dims = fallbackDimensions
	}

	return &EmbeddingService{
		api:        httpapi.New(provider, orDefault(cfg.BaseURL, DefaultBaseURL), timeout, httpapi.BearerAuth(cfg.APIKey)),
		model:      model,
		dimensions: dims,
	}, nil
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text. Replies are placed by their index
// field since providers may reorder them.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := embeddingRequest{Model: s.model, Input: texts}
	if strings.HasPrefix(s.model, "text-embedding-3-") {
		req.Dimensions = s.dimensions
	}

	var resp embeddingResponse
	if err := s.api.Post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, err
	}
	provider := s.api.Provider()
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%s: got %d embeddings for %d inputs", provider, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%s: embedding index %d out of range", provider, d.Index)
		}
		if out[d.Index] != nil {
			return nil, fmt.Errorf("%s: duplicate embedding index %d", provider, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[d.Index] = vec
	}
	return out, nil
}

func (s *EmbeddingService) Dimensions() int   { return s.dimensions }
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("%s: ping failed: %w", s.api.Provider(), err)
	}
	return nil
}

func (s *EmbeddingService) Close() error { return nil }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
