package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Output always carries an answer. Report is only ever set for tasks that
// ask for one.
type Output struct {
	Answer string
	Report *string
}

// Generator turns evidence into an answer for one task. It never fails:
// every error is absorbed into the task's fallback text.
type Generator interface {
	Generate(ctx context.Context, task TaskDescriptor, query string, retrieval commonModels.RetrievalResult) Output
}

type modelOutput struct {
	Answer string  `json:"answer" validate:"notblank"`
	Report *string `json:"report"`
}

type generator struct {
	provider  llm.Provider
	maxTokens int
	validate  *validator.Validate
	logger    *logger_i.Logger
}

var errInvalidOutput = errors.New("model output does not match the expected schema")

func New(provider llm.Provider, maxTokens int) Generator {
	if maxTokens <= 0 {
		maxTokens = config.DefaultMaxOutputTokens
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &generator{
		provider:  provider,
		maxTokens: maxTokens,
		validate:  v,
		logger:    logger_i.NewLogger("Generator"),
	}
}

func (g *generator) Generate(ctx context.Context, task TaskDescriptor, query string, retrieval commonModels.RetrievalResult) (out Output) {
	log := g.logger.ForContext(ctx).With("task", task.Kind)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("generate_"+string(task.Kind), time.Since(start)) }()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Generator panicked", "panic", r)
			metrics.IncrementGeneratorFallback(string(task.Kind), "panic")
			out = Output{Answer: GenericErrorText}
		}
	}()

	if retrieval.IsEmpty() {
		log.Info("No evidence retrieved, answering with fallback")
		metrics.IncrementGeneratorFallback(string(task.Kind), "no_evidence")
		return Output{Answer: task.NoEvidenceText}
	}

	resp, err := g.provider.Invoke(ctx, buildPrompt(task, query, retrieval), llm.InvokeOptions{
		Temperature:     task.Temperature,
		MaxOutputTokens: g.maxTokens,
		Schema:          task.Schema(),
	})
	if err != nil {
		log.Error("Model call failed", "error", err)
		metrics.IncrementGeneratorFallback(string(task.Kind), "model_error")
		return Output{Answer: GenericErrorText}
	}

	parsed, err := g.parse(resp.Content)
	if err != nil {
		log.Warn("Model output rejected", "error", err)
		metrics.IncrementGeneratorFallback(string(task.Kind), "invalid_output")
		return Output{Answer: task.InvalidOutputText}
	}

	out = Output{Answer: parsed.Answer}
	if task.WantsReport && parsed.Report != nil && strings.TrimSpace(*parsed.Report) != "" {
		out.Report = parsed.Report
	}
	return out
}

func (g *generator) parse(raw string) (modelOutput, error) {
	var parsed modelOutput
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return parsed, fmt.Errorf("%w: %v", errInvalidOutput, err)
	}
	if err := g.validate.Struct(parsed); err != nil {
		return parsed, fmt.Errorf("%w: %v", errInvalidOutput, err)
	}
	return parsed, nil
}

// some models wrap JSON in a markdown fence even when asked not to
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
