// Package openai answers prompts through an OpenAI compatible
// /chat/completions endpoint. Mistral speaks the same protocol.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/httpapi"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 30 * time.Second

	MistralBaseURL = "https://api.mistral.ai/v1"
	MistralModel   = "mistral-small-latest"
)

// LLMConfig for NewLLMService. APIKey is required; Provider labels errors and
// defaults to "openai".
type LLMConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
	Provider string
}

// LLMService sends the prompt as a single user turn.
type LLMService struct {
	api   *httpapi.Client
	model string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// NewLLMService builds the adapter.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s: API key is required", provider)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultLLMModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}

	return &LLMService{
		api:   httpapi.New(provider, baseURL, timeout, httpapi.BearerAuth(cfg.APIKey)),
		model: model,
	}, nil
}

// Generate returns the first choice. Negative or zero options are omitted so
// the provider defaults apply.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: []message{{Role: "user", Content: prompt}},
		Stop:     opts.StopWords,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = opts.Temperature
	}

	var resp chatResponse
	if err := s.api.Post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no response choices returned", s.api.Provider())
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%s: empty completion (finish_reason %q)", s.api.Provider(), resp.Choices[0].FinishReason)
	}
	return text, nil
}

func (s *LLMService) ModelName() string { return s.model }

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.api.Get(ctx, "/models", nil); err != nil {
		return fmt.Errorf("%s: ping failed: %w", s.api.Provider(), err)
	}
	return nil
}

func (s *LLMService) Close() error { return nil }
