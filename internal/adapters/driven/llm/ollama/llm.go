// Package ollama answers prompts with a model served by a local Ollama.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/ollamaapi"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultLLMModel = "llama3.2"
	// DefaultLLMTimeout is generous since the first call loads the model.
	DefaultLLMTimeout = 120 * time.Second
)

// errEmptyResponse is returned when generation finishes with no text.
var errEmptyResponse = errors.New("ollama generate: empty response")

// LLMConfig selects the server and model. Zero values take the defaults above.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService calls /api/generate without streaming.
type LLMService struct {
	api   *ollamaapi.Client
	model string
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options *samplingParams `json:"options,omitempty"`
}

type samplingParams struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response   string `json:"response"`
	Done       bool   `json:"done"`
	DoneReason string `json:"done_reason"`
}

// NewLLMService builds the adapter.
func NewLLMService(cfg LLMConfig) *LLMService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	return &LLMService{api: ollamaapi.New(cfg.BaseURL, timeout), model: model}
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:   s.model,
		Prompt:  prompt,
		Options: sampling(opts),
	}

	var resp generateResponse
	if err := s.api.Post(ctx, "/api/generate", req, &resp); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if !resp.Done {
		return "", fmt.Errorf("ollama generate: incomplete response (reason %q)", resp.DoneReason)
	}

	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}

// sampling returns nil when opts leave every model default in place.
func sampling(opts driven.GenerateOptions) *samplingParams {
	if opts.MaxTokens <= 0 && opts.Temperature <= 0 && len(opts.StopWords) == 0 {
		return nil
	}
	return &samplingParams{
		NumPredict:  opts.MaxTokens,
		Temperature: opts.Temperature,
		Stop:        opts.StopWords,
	}
}

func (s *LLMService) ModelName() string { return s.model }

// Ping checks the server is up and the model has been pulled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.api.CheckModel(ctx, s.model)
}

func (s *LLMService) Close() error { return nil }
