package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderMistral is the Mistral cloud API (OpenAI-compatible).
	AIProviderMistral AIProvider = "mistral"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderMistral, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderMistral || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderMistral:
		return "Mistral (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkSettings controls how event text is windowed before embedding.
type ChunkSettings struct {
	// Size is the window width in characters.
	Size int

	// Overlap is the number of characters shared by consecutive windows.
	Overlap int
}

// Validate checks the window parameters.
func (c ChunkSettings) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfiguration, c.Size)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfiguration, c.Overlap)
	}
	if c.Overlap >= c.Size {
		return fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			ErrConfiguration, c.Overlap, c.Size)
	}
	return nil
}

// RetrievalSettings controls the ask pipeline.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Dimensions is the vector size. Zero uses the known size for Model.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generator configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint. Empty uses the provider default.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Timeout bounds a single generation request.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// SessionBackend selects where follow-up memory is kept.
type SessionBackend string

// Available session backends.
const (
	// SessionBackendMemory keeps sessions in a bounded in-process LRU.
	SessionBackendMemory SessionBackend = "memory"

	// SessionBackendRedis keeps sessions in Redis so replicas share them.
	SessionBackendRedis SessionBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b SessionBackend) IsValid() bool {
	return b == SessionBackendMemory || b == SessionBackendRedis
}

// String returns the string representation.
func (b SessionBackend) String() string {
	return string(b)
}

// SessionSettings holds follow-up memory configuration.
type SessionSettings struct {
	Backend SessionBackend

	// Capacity bounds the number of sessions held in memory.
	Capacity int

	// RedisAddr is the host:port of the Redis server.
	RedisAddr string

	// TTL expires idle sessions in Redis.
	TTL time.Duration
}

// OpenDataSettings configures the OpenDataSoft event source.
type OpenDataSettings struct {
	// BaseURL is the records search endpoint.
	BaseURL string

	// Dataset is the OpenDataSoft dataset identifier.
	Dataset string

	// City restricts events to a location_city refinement.
	City string

	// Lang restricts events to a language refinement.
	Lang string

	// PageSize is the number of rows requested per page.
	PageSize int

	// MaxRecords caps the total number of records fetched.
	MaxRecords int

	// RequestsPerSecond throttles page requests.
	RequestsPerSecond float64
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Chunking  ChunkSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Session   SessionSettings
	OpenData  OpenDataSettings
	Server    ServerSettings

	// DataDir holds the persisted index and metadata.
	DataDir string
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty and must come from the config file or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkSettings{
			Size:    500,
			Overlap: 50,
		},
		Retrieval: RetrievalSettings{
			TopK: 5,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "all-minilm",
			Dimensions: 384,
		},
		LLM: LLMSettings{
			Provider:    AIProviderMistral,
			Model:       "mistral-small-latest",
			Temperature: 0.7,
			MaxTokens:   512,
			Timeout:     30 * time.Second,
		},
		Session: SessionSettings{
			Backend:  SessionBackendMemory,
			Capacity: 1024,
			TTL:      24 * time.Hour,
		},
		OpenData: OpenDataSettings{
			BaseURL:           "https://public.opendatasoft.com/api/records/1.0/search/",
			Dataset:           "evenements-publics-openagenda",
			City:              "Lyon",
			Lang:              "fr",
			PageSize:          300,
			MaxRecords:        10000,
			RequestsPerSecond: 2,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMistral,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderMistral,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderMistral: "mistral-embed",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderMistral:   "mistral-small-latest",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		// Mistral models
		"mistral-embed": 1024,
	}
}
