package config

import (
	"log/slog"
	"time"
)

type contextKey string

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = contextKey("traceId")

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking window, in characters
	ChunkSize    = 800
	ChunkOverlap = 150

	//nearest passages handed to the generators
	DefaultRetrievalTopK = 8

	//embeddings are sent in batches of this size
	EmbeddingBatchSize = 100

	DefaultEmbeddingDimension int32 = 768

	//serverTimeouts
	//the research call runs ingest + three model calls inline, so writes get a long budget
	ReadTimeout            = 30 * time.Second
	WriteTimeout           = 5 * time.Minute
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//upload limit for one research request
	MaxUploadSize = 32 << 20

	//pdf extraction guards
	PageExtractTimeout     = 10 * time.Second
	DocumentExtractTimeout = 2 * time.Minute

	//vectorDB
	QdrantHost          = "localhost"
	QdrantGrpcPort      = 6334
	QdrantUseTLS        = false
	QdrantPoolSize      = 1
	QdrantSessionPrefix = "session_"

	//local index snapshots
	VectorDBDirSuffix = "_vector_db"
	VectorDBFileName  = "index.json"
	RedisIndexPrefix  = "vector_db:"
	RedisIndexTTL     = 6 * time.Hour

	//llm
	DefaultLLMProvider       = "groq"
	DefaultLLMModel          = "llama-3.1-8b-instant"
	GroqBaseURL              = "https://api.groq.com/openai/v1"
	GeminiModelName          = "gemini-2.5-flash-lite-preview-09-2025"
	DefaultMaxOutputTokens   = 2048
	DefaultLLMRequestTimeout = 2 * time.Minute
	DeterministicTemperature = float32(0.0)
	InsightTemperature       = float32(0.3)

	//embeddings
	DefaultEmbeddingProvider = "gemini"
	GoogleEmbeddingModel     = "gemini-embedding-001"
	OpenAIEmbeddingModel     = "text-embedding-3-small"

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisIndexStore = 2

	//data directories
	DefaultUploadDir      = "app/data/uploads"
	DefaultVectorDBDir    = "app/data/vector_dbs"
	DefaultReportStoreDir = "app/data/reports"
	ReportDownloadRoute   = "/ai/reports/download/"
)
