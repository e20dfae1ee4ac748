// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/agenda/internal/adapters/driven/embedding/normalised"
	ollamaembed "github.com/custodia-labs/agenda/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/agenda/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/agenda/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/agenda/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/agenda/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the AI adapters the answering pipeline needs.
type Services struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.LLM != nil {
		s.LLM.Close()
	}
}

// NewServices creates both AI adapters from settings without probing them.
// Both providers must be configured.
func NewServices(settings *domain.AppSettings) (*Services, error) {
	emb, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if emb == nil {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured. Run 'agenda settings show' to inspect",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}

	llm, err := CreateLLMService(&settings.LLM)
	if err != nil {
		emb.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if llm == nil {
		emb.Close()
		return nil, fmt.Errorf("%w: LLM provider %q is not configured (missing API key?). Run 'agenda settings show' to inspect",
			domain.ErrConfiguration, settings.LLM.Provider)
	}

	return &Services{Embedding: emb, LLM: llm}, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'agenda settings set embedding.provider <name>' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'agenda settings set llm.provider <name>' to fix",
			domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Vectors it returns are L2-normalised so inner product equals cosine similarity.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama, openai or mistral")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.EmbeddingService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaEmbedding(settings)
	case domain.AIProviderOpenAI:
		svc, err = createOpenAIEmbedding(settings, "", "openai")
	case domain.AIProviderMistral:
		svc, err = createOpenAIEmbedding(settings, openaiembed.MistralBaseURL, "mistral")
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return normalised.Wrap(svc), nil
}

// CreateLLMService creates the LLM service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings, "", "openai")

	case domain.AIProviderMistral:
		return createOpenAILLM(settings, openaillm.MistralBaseURL, "mistral")

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings, defaultURL, provider string) (driven.EmbeddingService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}
	dimensions := settings.Dimensions
	if dimensions == 0 {
		dimensions = domain.EmbeddingDimensions()[settings.Model]
	}

	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    baseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
		Provider:   provider,
	})
}

func createOpenAILLM(settings *domain.LLMSettings, defaultURL, provider string) (driven.LLMService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" {
		baseURL = defaultURL
	}

	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:   settings.APIKey,
		BaseURL:  baseURL,
		Model:    settings.Model,
		Timeout:  settings.Timeout,
		Provider: provider,
	})
}
