package driven

import "context"

// LLMService turns a grounded prompt into the answer shown to the user.
// Mistral, OpenAI, Anthropic and Ollama adapters implement it.
type LLMService interface {
	// Generate returns the completion for prompt. Non-2xx replies, timeouts
	// and empty completions are errors.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	ModelName() string

	// Ping checks credentials and reachability without generating.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions overrides sampling. Zero fields keep the provider default.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}
