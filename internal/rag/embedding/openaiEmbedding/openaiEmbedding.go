package openaiEmbedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// client talks to any OpenAI compatible /embeddings endpoint.
type client struct {
	api       openai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewOpenAIEmbedder(modelName string, apiKey string, baseURL string, dimension int32, httpClient *http.Client) embedding.Embedder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &client{
		api:       openai.NewClient(opts...),
		model:     modelName,
		dimension: dimension,
		logger:    logger_i.NewLogger("openai_embedding"),
	}
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.ForContext(ctx).With("chunks", len(chunks))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	results := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := min(i+config.EmbeddingBatchSize, len(chunks))

		resp, err := c.api.Embeddings.New(ctx, c.params(chunks[i:end]))
		if err != nil {
			log.Error("Error getting Embeddings", "batchStart", i, "error", err)
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		batch, err := orderVectors(resp.Data, end-i)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)
	}
	return results, nil
}

func (c *client) params(batch []string) openai.EmbeddingNewParams {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: batch},
	}
	// only the v3 models accept a custom size
	if c.dimension > 0 && strings.HasPrefix(c.model, "text-embedding-3") {
		params.Dimensions = openai.Int(int64(c.dimension))
	}
	return params
}

// the api reports the input position of every vector, the slice order is not guaranteed
func orderVectors(data []openai.Embedding, want int) ([][]float32, error) {
	if len(data) != want {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d chunks", len(data), want)
	}
	ordered := make([][]float32, want)
	for _, d := range data {
		if d.Index < 0 || int(d.Index) >= want {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		ordered[d.Index] = vec
	}
	for i, v := range ordered {
		if v == nil {
			return nil, fmt.Errorf("embedding for chunk %d missing", i)
		}
	}
	return ordered, nil
}
