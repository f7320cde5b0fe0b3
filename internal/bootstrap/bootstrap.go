package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/customHttpClient"
	"github.com/akolanti/ResearchAgent/internal/data/redisStore"
	"github.com/akolanti/ResearchAgent/internal/rag"
	"github.com/akolanti/ResearchAgent/internal/rag/agent"
	"github.com/akolanti/ResearchAgent/internal/rag/classifier"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/ResearchAgent/internal/rag/generator"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
	"github.com/akolanti/ResearchAgent/internal/rag/llm/gemini"
	"github.com/akolanti/ResearchAgent/internal/rag/llm/openaiLLM"
	"github.com/akolanti/ResearchAgent/internal/rag/retriever"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB/localDB"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/ResearchAgent/internal/report"
	"github.com/akolanti/ResearchAgent/internal/session"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

// App is everything a transport needs.
type App struct {
	Service  rag.Service
	Reports  report.Store
	Sessions session.Manager
}

// Components lets callers (and tests) hand in prebuilt collaborators.
// Nil fields are built from settings.
type Components struct {
	Embedder   embedding.Embedder
	LLM        llm.Provider
	Store      vectorDB.SessionStore
	Classifier classifier.Classifier
}

// Build wires the application. ctx bounds the lifetime of the shared clients.
func Build(ctx context.Context, s config.Settings, c Components) (*App, error) {
	logger := logger_i.NewLogger("bootstrap")

	if c.Embedder == nil {
		c.Embedder = NewEmbedder(ctx, s)
		if c.Embedder == nil {
			return nil, fmt.Errorf("embedding provider %q could not be initialised", s.EmbeddingProvider)
		}
	}
	if c.LLM == nil {
		provider, err := NewLLM(ctx, s)
		if err != nil {
			return nil, err
		}
		c.LLM = provider
	}
	if c.Store == nil {
		c.Store = NewSessionStore(ctx, s, c.Embedder)
	}
	if c.Classifier == nil {
		c.Classifier = NewClassifier(s, c.LLM)
	}

	sessions, err := session.NewManager(s.UploadDir, c.Store)
	if err != nil {
		return nil, err
	}
	reports := report.NewStore(s.ReportStoreDir)

	researchAgent := agent.New(
		c.Classifier,
		retriever.New(c.Store, s.RetrievalTopK),
		generator.New(c.LLM, s.LLMMaxOutputTokens),
		generator.Registry(),
	)

	logger.Info("Application wired",
		"llm", s.LLMProvider, "model", s.LLMModel,
		"embedding", s.EmbeddingProvider, "index", s.IndexBackend, "classifier", s.Classifier)

	return &App{
		Service:  rag.NewService(sessions, c.Store, researchAgent, reports),
		Reports:  reports,
		Sessions: sessions,
	}, nil
}

// NewEmbedder returns nil when the provider client cannot be built.
func NewEmbedder(ctx context.Context, s config.Settings) embedding.Embedder {
	httpClient := customHttpClient.GetHTTPClient(s.LLMRequestTimeout)
	switch strings.ToLower(s.EmbeddingProvider) {
	case "openai":
		return openaiEmbedding.NewOpenAIEmbedder(s.EmbeddingModel, s.EmbeddingAPIKey, s.EmbeddingBaseURL, s.EmbeddingDimension, httpClient)
	default:
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, s.EmbeddingModel, s.EmbeddingAPIKey, s.EmbeddingDimension, httpClient)
	}
}

func NewLLM(ctx context.Context, s config.Settings) (llm.Provider, error) {
	httpClient := customHttpClient.GetHTTPClient(s.LLMRequestTimeout)
	switch strings.ToLower(s.LLMProvider) {
	case "groq", "openai":
		return openaiLLM.NewOpenAIClient(openaiLLM.Config{
			APIKey:  s.LLMAPIKey,
			BaseURL: s.LLMBaseURL,
			Model:   s.LLMModel,
			// groq only honours json_object mode
			StrictSchema: strings.EqualFold(s.LLMProvider, "openai"),
		}, httpClient), nil
	case "gemini":
		provider := gemini.GetGeminiClient(ctx, s.LLMModel, s.LLMAPIKey, httpClient)
		if provider == nil {
			return nil, errors.New("gemini client could not be initialised")
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", s.LLMProvider)
	}
}

// NewSessionStore falls back to file snapshots when the configured backend is offline.
func NewSessionStore(ctx context.Context, s config.Settings, e embedding.Embedder) vectorDB.SessionStore {
	logger := logger_i.NewLogger("bootstrap")
	fileStore := func() vectorDB.SessionStore {
		return localDB.NewSessionStore(localDB.NewFileSnapshot(filepath.Clean(s.VectorDBDir)), e)
	}

	switch strings.ToLower(s.IndexBackend) {
	case "redis":
		store := redisStore.GetRedisStore(ctx, redisStore.Options{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB})
		if store == nil {
			logger.Error("Redis is offline, using file snapshots", "addr", s.RedisAddr)
			return fileStore()
		}
		return localDB.NewSessionStore(localDB.NewRedisSnapshot(store, config.RedisIndexTTL), e)
	case "qdrant":
		client := qdrantDB.GetQuadrantClient(ctx, s.QdrantHost, s.QdrantPort)
		if client == nil {
			logger.Error("Qdrant is offline, using file snapshots", "host", s.QdrantHost)
			return fileStore()
		}
		return qdrantDB.NewSessionStore(client, e)
	default:
		return fileStore()
	}
}

func NewClassifier(s config.Settings, provider llm.Provider) classifier.Classifier {
	if strings.EqualFold(s.Classifier, "rules") {
		return classifier.NewRuleClassifier()
	}
	return classifier.NewLLMClassifier(provider)
}
