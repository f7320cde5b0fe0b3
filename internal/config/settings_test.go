package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every data dir into a temp dir and clears the keys a
// developer machine may have exported.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("UPLOAD_DIR", filepath.Join(root, "uploads"))
	t.Setenv("VECTOR_DB_DIR", filepath.Join(root, "vector_dbs"))
	t.Setenv("REPORT_STORE_DIR", filepath.Join(root, "reports"))
	for _, key := range []string{
		"CONFIG_FILE", "LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "LLM_BASE_URL",
		"EMBEDDING_PROVIDER", "EMBEDDING_MODEL", "EMBEDDING_API_KEY", "RETRIEVAL_TOP_K",
		"GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "CLASSIFIER",
	} {
		t.Setenv(key, "")
	}
	return root
}

func TestLoad_Defaults(t *testing.T) {
	root := isolate(t)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "groq", s.LLMProvider)
	assert.Equal(t, GroqBaseURL, s.LLMBaseURL)
	assert.Equal(t, DefaultLLMModel, s.LLMModel)
	assert.Equal(t, DefaultRetrievalTopK, s.RetrievalTopK)
	assert.Equal(t, DefaultLLMRequestTimeout, s.LLMRequestTimeout)
	assert.Equal(t, GoogleEmbeddingModel, s.EmbeddingModel)
	assert.Equal(t, DefaultEmbeddingDimension, s.EmbeddingDimension)
	assert.Equal(t, "file", s.IndexBackend)
	assert.Equal(t, "llm", s.Classifier)

	for _, dir := range []string{"uploads", "vector_dbs", "reports"} {
		assert.DirExists(t, filepath.Join(root, dir))
	}
}

func TestLoad_ProviderKeyFallbacks(t *testing.T) {
	isolate(t)
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oa-key")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gem-key", s.LLMAPIKey)
	assert.Equal(t, GeminiModelName, s.LLMModel)
	assert.Empty(t, s.LLMBaseURL)
	assert.Equal(t, "oa-key", s.EmbeddingAPIKey)
	assert.Equal(t, OpenAIEmbeddingModel, s.EmbeddingModel)
}

func TestLoad_ExplicitValuesWin(t *testing.T) {
	isolate(t)
	t.Setenv("LLM_API_KEY", "explicit")
	t.Setenv("GROQ_API_KEY", "fallback")
	t.Setenv("RETRIEVAL_TOP_K", "-3")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "explicit", s.LLMAPIKey)
	assert.Equal(t, DefaultRetrievalTopK, s.RetrievalTopK, "non positive k falls back to the default")
}

func TestLoad_ConfigFile(t *testing.T) {
	root := isolate(t)
	path := filepath.Join(root, "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm_provider: openai
llm_model: gpt-4o-mini
llm_request_timeout: 45s
classifier: rules
retrieval_top_k: 4
index_backend: redis
`), 0o644))
	t.Setenv("CONFIG_FILE", path)

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", s.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", s.LLMModel)
	assert.Equal(t, 45*time.Second, s.LLMRequestTimeout)
	assert.Equal(t, "rules", s.Classifier)
	assert.Equal(t, 4, s.RetrievalTopK)
	assert.Equal(t, "redis", s.IndexBackend)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	root := isolate(t)
	t.Setenv("CONFIG_FILE", filepath.Join(root, "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
