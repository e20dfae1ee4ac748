package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input,
	// such as an empty question.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfiguration indicates settings that cannot produce a working
	// pipeline (chunk overlap not smaller than chunk size, missing API key).
	ErrConfiguration = errors.New("invalid configuration")

	// ErrIndexUnavailable indicates the vector index or its metadata is
	// missing, corrupt, or misaligned. The previously loaded snapshot,
	// if any, stays in service.
	ErrIndexUnavailable = errors.New("index unavailable")

	// Adapter Errors.

	// ErrEmbedding indicates the embedding model call failed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the generative model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrSourceUnavailable indicates the event source could not be read.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// IsAdapterError reports whether err originates from an external model call.
func IsAdapterError(err error) bool {
	return errors.Is(err, ErrEmbedding) || errors.Is(err, ErrGeneration) ||
		errors.Is(err, ErrEmbeddingUnavailable) || errors.Is(err, ErrLLMUnavailable)
}
