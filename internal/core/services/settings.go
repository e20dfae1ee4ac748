package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/agenda/internal/core/domain"
	"github.com/custodia-labs/agenda/internal/core/ports/driven"
	"github.com/custodia-labs/agenda/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyTopK             = "retrieval.top_k"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMTemperature   = "llm.temperature"
	keyLLMMaxTokens     = "llm.max_tokens"
	keyLLMTimeout       = "llm.timeout_secs"
	keySessionBackend   = "session.backend"
	keySessionCapacity  = "session.capacity"
	keySessionRedisAddr = "session.redis_addr"
	keySessionTTL       = "session.ttl_secs"
	keyODBaseURL        = "opendata.base_url"
	keyODDataset        = "opendata.dataset"
	keyODCity           = "opendata.city"
	keyODLang           = "opendata.lang"
	keyODPageSize       = "opendata.page_size"
	keyODMaxRecords     = "opendata.max_records"
	keyODRate           = "opendata.requests_per_second"
	keyServerAddr       = "server.addr"
	keyDataDir          = "data.dir"
)

// EnvPrefix prefixes environment overrides: AGENDA_LLM_MODEL overrides llm.model.
const EnvPrefix = "AGENDA_"

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindProvider
	kindBackend
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	name string
	kind valueKind
}{
	{keyChunkSize, kindInt},
	{keyChunkOverlap, kindInt},
	{keyTopK, kindInt},
	{keyEmbedProvider, kindProvider},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindString},
	{keyEmbedDimensions, kindInt},
	{keyLLMProvider, kindProvider},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindString},
	{keyLLMTemperature, kindFloat},
	{keyLLMMaxTokens, kindInt},
	{keyLLMTimeout, kindInt},
	{keySessionBackend, kindBackend},
	{keySessionCapacity, kindInt},
	{keySessionRedisAddr, kindString},
	{keySessionTTL, kindInt},
	{keyODBaseURL, kindString},
	{keyODDataset, kindString},
	{keyODCity, kindString},
	{keyODLang, kindString},
	{keyODPageSize, kindInt},
	{keyODMaxRecords, kindInt},
	{keyODRate, kindFloat},
	{keyServerAddr, kindString},
	{keyDataDir, kindString},
}

// providerKeyEnv names the conventional API key variable of each cloud provider.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderMistral:   "MISTRAL_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// SettingsService maps the config store and environment onto AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		lookupEnv:   os.LookupEnv,
	}
}

// WithEnv replaces the environment lookup, for tests.
func (s *SettingsService) WithEnv(lookup func(string) (string, bool)) *SettingsService {
	s.lookupEnv = lookup
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Chunking: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, d.Chunking.Size),
			Overlap: s.getInt(keyChunkOverlap, d.Chunking.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getInt(keyTopK, d.Retrieval.TopK),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:    s.getString(keyEmbedBaseURL, ""),
			APIKey:     s.getString(keyEmbedAPIKey, ""),
			Dimensions: s.getInt(keyEmbedDimensions, 0),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			BaseURL:     s.getString(keyLLMBaseURL, ""),
			APIKey:      s.getString(keyLLMAPIKey, ""),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Timeout:     s.getSeconds(keyLLMTimeout, d.LLM.Timeout),
		},
		Session: domain.SessionSettings{
			Backend:   s.getBackend(d.Session.Backend),
			Capacity:  s.getInt(keySessionCapacity, d.Session.Capacity),
			RedisAddr: s.getString(keySessionRedisAddr, d.Session.RedisAddr),
			TTL:       s.getSeconds(keySessionTTL, d.Session.TTL),
		},
		OpenData: domain.OpenDataSettings{
			BaseURL:           s.getString(keyODBaseURL, d.OpenData.BaseURL),
			Dataset:           s.getString(keyODDataset, d.OpenData.Dataset),
			City:              s.getString(keyODCity, d.OpenData.City),
			Lang:              s.getString(keyODLang, d.OpenData.Lang),
			PageSize:          s.getInt(keyODPageSize, d.OpenData.PageSize),
			MaxRecords:        s.getInt(keyODMaxRecords, d.OpenData.MaxRecords),
			RequestsPerSecond: s.getFloat(keyODRate, d.OpenData.RequestsPerSecond),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, d.Server.Addr),
		},
		DataDir: s.getString(keyDataDir, d.DataDir),
	}

	// Models default per provider, so switching provider alone stays usable.
	settings.Embedding.Model = s.getString(keyEmbedModel, defaultModel(
		domain.DefaultEmbeddingModels(), settings.Embedding.Provider, d.Embedding.Model))
	settings.LLM.Model = s.getString(keyLLMModel, defaultModel(
		domain.DefaultLLMModels(), settings.LLM.Provider, d.LLM.Model))

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.providerKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.providerKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Set stores a single key after parsing and validating its value.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKind(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}

	if key == keyEmbedProvider && domain.AIProvider(value) == domain.AIProviderAnthropic {
		return fmt.Errorf("%w: anthropic does not provide embeddings", domain.ErrInvalidInput)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists the settable keys in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.name
	}
	return keys
}

// Validate checks the settings can produce a working pipeline.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Chunking.Validate(); err != nil {
		return err
	}
	if settings.Retrieval.TopK < 0 {
		return fmt.Errorf("%w: retrieval.top_k must not be negative", domain.ErrConfiguration)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not usable (unknown provider or missing API key)",
			domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not usable (missing API key? set %s)",
			domain.ErrConfiguration, settings.LLM.Provider, providerKeyEnv[settings.LLM.Provider])
	}
	if settings.Session.Backend == domain.SessionBackendRedis && settings.Session.RedisAddr == "" {
		return fmt.Errorf("%w: session.backend is redis but session.redis_addr is empty", domain.ErrConfiguration)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Path returns the config file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults. Environment overrides
// win over the config file.

func (s *SettingsService) lookup(key string) (string, bool) {
	env := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if v, ok := s.lookupEnv(env); ok && v != "" {
		return v, true
	}
	return "", false
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if v, ok := s.lookup(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	secs := s.getInt(key, -1)
	if secs < 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.getString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.SessionBackend) domain.SessionBackend {
	backend := domain.SessionBackend(s.getString(keySessionBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) providerKey(p domain.AIProvider) string {
	name, ok := providerKeyEnv[p]
	if !ok {
		return ""
	}
	v, _ := s.lookupEnv(name)
	return v
}

func defaultModel(models map[domain.AIProvider]string, p domain.AIProvider, fallback string) string {
	if m, ok := models[p]; ok {
		return m
	}
	return fallback
}

func keyKind(key string) (valueKind, bool) {
	for _, k := range settingKeys {
		if k.name == key {
			return k.kind, true
		}
	}
	return 0, false
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative: %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", value)
		}
		return f, nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindBackend:
		if !domain.SessionBackend(value).IsValid() {
			return nil, fmt.Errorf("unknown session backend %q", value)
		}
		return value, nil
	}
	return value, nil
}
