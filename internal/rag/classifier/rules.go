package classifier

import (
	"context"
	"strings"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
)

var questionWords = map[string]bool{
	"what": true, "who": true, "whom": true, "whose": true, "when": true, "where": true,
	"which": true, "why": true, "how": true, "is": true, "are": true, "was": true,
	"were": true, "does": true, "do": true, "did": true,
}

var taskCues = map[commonModels.TaskKind][]string{
	commonModels.TaskSummarize: {
		"summarize", "summarise", "summary", "overview", "brief me", "briefing",
		"main findings", "key points", "key takeaways", "tl;dr", "gist",
	},
	commonModels.TaskCompare: {
		"compare", "comparison", "contrast", "versus", " vs ", " vs. ",
		"difference between", "differences", "differ ", "similarities",
	},
	commonModels.TaskExtract: {
		"extract", "list all", "list every", "pull out", "report", "export",
		"download", "as-is", "verbatim", "table of", "markdown",
	},
	commonModels.TaskInsight: {
		"recommend", "recommendation", "should we", "should i", "opinion",
		"interpret", "implication", "what if", "hypothetical", "suggest",
		"advice", "insight", "would happen",
	},
}

type ruleClassifier struct{}

// NewRuleClassifier is a deterministic keyword router. It applies the same
// priority order as the model prompt and rejects queries with no cue at all.
func NewRuleClassifier() Classifier {
	return ruleClassifier{}
}

func (ruleClassifier) Classify(_ context.Context, query string) (commonModels.TaskKind, error) {
	matched := matchCues(query)
	for _, kind := range commonModels.TaskPriority {
		if matched[kind] {
			return kind, nil
		}
	}
	return commonModels.TaskUnclassifiable, &agentErrors.TaskClassificationError{
		Raw:    string(commonModels.TaskUnclassifiable),
		Reason: "No tools available to handle the query",
	}
}

func matchCues(query string) map[commonModels.TaskKind]bool {
	normalized := " " + strings.ToLower(strings.TrimSpace(query)) + " "
	matched := make(map[commonModels.TaskKind]bool)

	for kind, cues := range taskCues {
		for _, cue := range cues {
			if strings.Contains(normalized, cue) {
				matched[kind] = true
				break
			}
		}
	}
	// a question asking to contrast or to reason beyond the text is not factual
	if isQuestion(normalized) && !matched[commonModels.TaskCompare] && !matched[commonModels.TaskInsight] {
		matched[commonModels.TaskQnA] = true
	}
	return matched
}

// a direct question: interrogative first word and a question mark
func isQuestion(normalized string) bool {
	fields := strings.Fields(normalized)
	if len(fields) == 0 || !strings.HasSuffix(fields[len(fields)-1], "?") {
		return false
	}
	return questionWords[strings.Trim(fields[0], "\"'")]
}
