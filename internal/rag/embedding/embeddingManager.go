package embedding

import "context"

// Embedder turns text into vectors. Dimension and similarity metric belong to
// the model, so stores must not assume either.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	ModelName() string
}
