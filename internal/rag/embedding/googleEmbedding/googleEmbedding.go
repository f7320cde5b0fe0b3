package googleEmbedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

const retryDelay = 5 * time.Second

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string, dimension int32, httpClient *http.Client) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apikey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return
	}
	embeddingClient = &client{
		genAi:     c,
		model:     modelName,
		dimension: dimension,
	}
	logger.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	go closeClient(ctx)
}

func closeClient(ctx context.Context) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
}

// GetGoogleEmbeddingClient returns nil when the client could not be built.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string, dimension int32, httpClient *http.Client) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey, dimension, httpClient)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{genAi: embeddingClient.genAi, model: embeddingClient.model, dimension: embeddingClient.dimension}
}

func (c *client) ModelName() string {
	return c.model
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	log := logger.ForContext(ctx)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	res, err := c.callWithRetry(ctx, genai.Text(query), "RETRIEVAL_QUERY", log)
	if err != nil {
		log.Error("Error getting query embedding from Google", "error", err)
		return nil, err
	}
	if len(res.Embeddings) == 0 {
		return nil, errors.New("google embedding returned no vectors")
	}
	return res.Embeddings[0].Values, nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := logger.ForContext(ctx).With("chunks", len(chunks))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	results := make([][]float32, 0, len(chunks))
	for i := 0; i < len(chunks); i += config.EmbeddingBatchSize {
		end := min(i+config.EmbeddingBatchSize, len(chunks))

		res, err := c.callWithRetry(ctx, getContent(chunks[i:end]), "RETRIEVAL_DOCUMENT", log)
		if err != nil {
			log.Error("Error getting Embeddings from Google", "batchStart", i, "error", err)
			return nil, err
		}
		if len(res.Embeddings) != end-i {
			return nil, fmt.Errorf("google embedding returned %d vectors for %d chunks", len(res.Embeddings), end-i)
		}
		for _, r := range res.Embeddings {
			results = append(results, r.Values)
		}
	}
	return results, nil
}

func (c *client) callWithRetry(ctx context.Context, content []*genai.Content, taskType string, log *logger_i.Logger) (*genai.EmbedContentResponse, error) {
	res, err := c.doCall(ctx, content, taskType)
	if err != nil && doRetry(err, log) {
		log.Debug("Retrying in 5 seconds")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		res, err = c.doCall(ctx, content, taskType)
	}
	return res, err
}

func (c *client) doCall(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	conf := &genai.EmbedContentConfig{TaskType: taskType}
	if c.dimension > 0 {
		conf.OutputDimensionality = &c.dimension
	}
	return c.genAi.Models.EmbedContent(ctx, c.model, content, conf)
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}

// rate limits come back either as a grpc status or as a 429 api error
func doRetry(err error, log *logger_i.Logger) bool {
	if s, ok := status.FromError(err); ok && s.Code() == codes.ResourceExhausted {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	if apiErrorCode(err) == http.StatusTooManyRequests {
		log.Warn("Rate limit hit", "error", err)
		return true
	}
	return false
}

// the sdk has returned APIError both by value and by pointer
func apiErrorCode(err error) int {
	var byValue genai.APIError
	if errors.As(err, &byValue) {
		return byValue.Code
	}
	var byPointer *genai.APIError
	if errors.As(err, &byPointer) && byPointer != nil {
		return byPointer.Code
	}
	return 0
}
