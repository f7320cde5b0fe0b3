package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

// Classifier routes a query to exactly one task. It never sees the documents.
// Anything it cannot route comes back as *agentErrors.TaskClassificationError.
type Classifier interface {
	Classify(ctx context.Context, query string) (commonModels.TaskKind, error)
}

const decisionMaxTokens = 16

const selectorPrompt = `SYSTEM INSTRUCTIONS:
You are a task router for a document research assistant. Read the user query and pick the ONE task that handles it.
You do not have the documents, decide from the query alone.

TASKS:
- summarize: the user wants an overview, briefing, digest or summary of the documents or part of them. Not a direct quote and not a specific question.
  e.g. "Summarize the main findings from the documents", "Give me a brief overview of chapter 2"
- qna: the user asks a specific factual question that the documents can answer.
  e.g. "What is the refund window?", "Who signed the agreement?"
- compare: the user asks, explicitly or implicitly, to contrast two or more documents, entities or data points.
  e.g. "Compare the two architecture models and say which one best suits our computational needs", "How does plan A differ from plan B?"
- extract: the user wants data pulled out as-is, a list extracted, or any report, document, downloadable or formatted output produced.
  e.g. "List all the dates mentioned", "Generate a report on the budget section"
- insight: the user wants an opinion, recommendation, interpretation or hypothetical reasoning beyond what the documents literally say.
  e.g. "What should we prioritise next year?", "What would happen if costs doubled?"

PRIORITY:
If more than one task could apply, choose by this order: qna > summarize > compare > extract > insight.

NO MATCH:
If none of the tasks applies, answer none. Do not guess.

OUTPUT:
Reply with exactly one word from: summarize, qna, compare, extract, insight, none.

USER QUERY:
%s
`

type llmClassifier struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

// NewLLMClassifier delegates the decision to a text generation model.
func NewLLMClassifier(provider llm.Provider) Classifier {
	return &llmClassifier{
		provider: provider,
		logger:   logger_i.NewLogger("Task Classifier"),
	}
}

func (c *llmClassifier) Classify(ctx context.Context, query string) (commonModels.TaskKind, error) {
	log := c.logger.ForContext(ctx)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("classify", time.Since(start)) }()

	resp, err := c.provider.Invoke(ctx, fmt.Sprintf(selectorPrompt, query), llm.InvokeOptions{
		Temperature:     config.DeterministicTemperature,
		MaxOutputTokens: decisionMaxTokens,
	})
	if err != nil {
		return commonModels.TaskUnclassifiable, fmt.Errorf("task classifier call failed: %w", err)
	}

	kind, err := ParseDecision(resp.Content)
	if err != nil {
		log.Warn("Query could not be routed", "raw", resp.Content)
		return commonModels.TaskUnclassifiable, err
	}
	log.Debug("Query routed", "task", kind)
	return kind, nil
}

// ParseDecision accepts a single task name, tolerating case, quotes and
// trailing punctuation. "none" and anything unknown are classification errors.
func ParseDecision(raw string) (commonModels.TaskKind, error) {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, " \t\r\n\"'`.,!:;*")

	if cleaned == "" || cleaned == string(commonModels.TaskUnclassifiable) {
		return commonModels.TaskUnclassifiable, &agentErrors.TaskClassificationError{
			Raw:    raw,
			Reason: "No tools available to handle the query",
		}
	}
	kind, ok := commonModels.ParseTaskKind(cleaned)
	if !ok {
		return commonModels.TaskUnclassifiable, &agentErrors.TaskClassificationError{
			Raw:    raw,
			Reason: "Invalid task decision from tool selector",
		}
	}
	return kind, nil
}
