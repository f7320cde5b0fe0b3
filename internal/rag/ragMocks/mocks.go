// Package ragMocks holds function-field fakes of the rag collaborators.
package ragMocks

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/rag/generator"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
)

// MockLLM implements llm.Provider
type MockLLM struct {
	OnInvoke func(ctx context.Context, prompt string, opts llm.InvokeOptions) (llm.Response, error)

	mu      sync.Mutex
	Prompts []string
	Options []llm.InvokeOptions
}

func (m *MockLLM) Invoke(ctx context.Context, prompt string, opts llm.InvokeOptions) (llm.Response, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.Options = append(m.Options, opts)
	m.mu.Unlock()

	if m.OnInvoke != nil {
		return m.OnInvoke(ctx, prompt, opts)
	}
	return llm.Response{Content: `{"answer": "mocked llm response"}`}, nil
}

func (m *MockLLM) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

const mockDimension = 64

// MockEmbedder implements embedding.Embedder. Without overrides it hashes the
// words of a text into a fixed size vector, so equal texts get equal vectors
// and texts sharing words land close to each other.
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
	Model            string
}

func (m *MockEmbedder) ModelName() string {
	if m.Model == "" {
		return "mock-embedding"
	}
	return m.Model
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return BagOfWords(text), nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = BagOfWords(c)
	}
	return out, nil
}

func BagOfWords(text string) []float32 {
	v := make([]float32, mockDimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%mockDimension]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	n := float32(math.Sqrt(norm))
	for i := range v {
		v[i] /= n
	}
	return v
}

// MockClassifier implements classifier.Classifier
type MockClassifier struct {
	OnClassify func(ctx context.Context, query string) (commonModels.TaskKind, error)
	Task       commonModels.TaskKind
}

func (m *MockClassifier) Classify(ctx context.Context, query string) (commonModels.TaskKind, error) {
	if m.OnClassify != nil {
		return m.OnClassify(ctx, query)
	}
	return m.Task, nil
}

// MockRetriever implements retriever.Retriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, sessionId string, query string) (commonModels.RetrievalResult, error)
	Calls      int
}

func (m *MockRetriever) Retrieve(ctx context.Context, sessionId string, query string) (commonModels.RetrievalResult, error) {
	m.Calls++
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, sessionId, query)
	}
	return commonModels.RetrievalResult{
		Passages: []commonModels.Passage{},
		Groups:   []commonModels.DocumentGroup{},
	}, nil
}

// MockGenerator implements generator.Generator
type MockGenerator struct {
	OnGenerate func(ctx context.Context, task generator.TaskDescriptor, query string, retrieval commonModels.RetrievalResult) generator.Output
	Tasks      []commonModels.TaskKind
}

func (m *MockGenerator) Generate(ctx context.Context, task generator.TaskDescriptor, query string, retrieval commonModels.RetrievalResult) generator.Output {
	m.Tasks = append(m.Tasks, task.Kind)
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, task, query, retrieval)
	}
	return generator.Output{Answer: "mocked " + string(task.Kind) + " answer"}
}
