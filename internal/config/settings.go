package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Settings is the runtime configuration. Every field can be overridden by the
// upper-cased environment variable of its key, e.g. VECTOR_DB_DIR.
type Settings struct {
	ListenAddr string `mapstructure:"listen_addr"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	LLMProvider        string        `mapstructure:"llm_provider"`
	LLMModel           string        `mapstructure:"llm_model"`
	LLMAPIKey          string        `mapstructure:"llm_api_key"`
	LLMBaseURL         string        `mapstructure:"llm_base_url"`
	LLMMaxOutputTokens int           `mapstructure:"llm_max_output_tokens"`
	LLMRequestTimeout  time.Duration `mapstructure:"llm_request_timeout"`

	EmbeddingProvider  string `mapstructure:"embedding_provider"`
	EmbeddingModel     string `mapstructure:"embedding_model"`
	EmbeddingAPIKey    string `mapstructure:"embedding_api_key"`
	EmbeddingBaseURL   string `mapstructure:"embedding_base_url"`
	EmbeddingDimension int32  `mapstructure:"embedding_dimension"`

	IndexBackend  string `mapstructure:"index_backend"`
	VectorDBDir   string `mapstructure:"vector_db_dir"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	QdrantHost    string `mapstructure:"qdrant_host"`
	QdrantPort    int    `mapstructure:"qdrant_port"`

	UploadDir      string `mapstructure:"upload_dir"`
	ReportStoreDir string `mapstructure:"report_store_dir"`

	Classifier    string `mapstructure:"classifier"`
	RetrievalTopK int    `mapstructure:"retrieval_top_k"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ServerListenAddr)

	v.SetDefault("log_level", "debug")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")

	v.SetDefault("llm_provider", DefaultLLMProvider)
	v.SetDefault("llm_model", DefaultLLMModel)
	v.SetDefault("llm_api_key", "")
	v.SetDefault("llm_base_url", "")
	v.SetDefault("llm_max_output_tokens", DefaultMaxOutputTokens)
	v.SetDefault("llm_request_timeout", DefaultLLMRequestTimeout)

	v.SetDefault("embedding_provider", DefaultEmbeddingProvider)
	v.SetDefault("embedding_model", "")
	v.SetDefault("embedding_api_key", "")
	v.SetDefault("embedding_base_url", "")
	v.SetDefault("embedding_dimension", DefaultEmbeddingDimension)

	v.SetDefault("index_backend", "file")
	v.SetDefault("vector_db_dir", DefaultVectorDBDir)
	v.SetDefault("redis_addr", RedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", RedisIndexStore)
	v.SetDefault("qdrant_host", QdrantHost)
	v.SetDefault("qdrant_port", QdrantGrpcPort)

	v.SetDefault("upload_dir", DefaultUploadDir)
	v.SetDefault("report_store_dir", DefaultReportStoreDir)

	v.SetDefault("classifier", "llm")
	v.SetDefault("retrieval_top_k", DefaultRetrievalTopK)
}

// Load reads .env (if any), an optional YAML file named by CONFIG_FILE and the
// process environment, then makes sure the data directories exist.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	s.applyKeyFallbacks()

	if s.RetrievalTopK <= 0 {
		s.RetrievalTopK = DefaultRetrievalTopK
	}

	for _, dir := range []string{s.UploadDir, s.VectorDBDir, s.ReportStoreDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return Settings{}, fmt.Errorf("creating data dir %s: %w", dir, err)
		}
	}
	return s, nil
}

// provider specific key names still work when the generic ones are unset
func (s *Settings) applyKeyFallbacks() {
	if s.LLMAPIKey == "" {
		switch s.LLMProvider {
		case "groq":
			s.LLMAPIKey = os.Getenv("GROQ_API_KEY")
		case "openai":
			s.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			s.LLMAPIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if s.LLMBaseURL == "" && s.LLMProvider == "groq" {
		s.LLMBaseURL = GroqBaseURL
	}
	if s.LLMProvider == "gemini" && s.LLMModel == DefaultLLMModel {
		s.LLMModel = GeminiModelName
	}

	if s.EmbeddingAPIKey == "" {
		switch s.EmbeddingProvider {
		case "gemini":
			s.EmbeddingAPIKey = os.Getenv("GEMINI_API_KEY")
		case "openai":
			s.EmbeddingAPIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = GoogleEmbeddingModel
		if s.EmbeddingProvider == "openai" {
			s.EmbeddingModel = OpenAIEmbeddingModel
		}
	}
}
