package driven

import "context"

// EmbeddingService maps chunk texts and questions into the vector space the
// index is built in. The same model must serve ingestion and queries, since
// snapshots only record the vector size.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch keeps input order: result i embeds texts[i].
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks the provider answers and knows the model.
	Ping(ctx context.Context) error

	Close() error
}
