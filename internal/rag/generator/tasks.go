package generator

import (
	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/rag/llm"
)

// GenericErrorText replaces the answer when the model call itself fails.
const GenericErrorText = "I encountered an error processing the documents."

// QnANotFoundText is what qna answers when the evidence does not contain the answer.
const QnANotFoundText = "I don't know. Couldn't figure it out from the context."

type EvidenceLayout int

const (
	// FlatEvidence lists passages in retrieval order.
	FlatEvidence EvidenceLayout = iota
	// GroupedEvidence lists passages under their document.
	GroupedEvidence
)

// TaskDescriptor is everything that makes one task different from another.
type TaskDescriptor struct {
	Kind         commonModels.TaskKind
	Instructions string
	Temperature  float32
	WantsReport  bool
	Evidence     EvidenceLayout

	// NoEvidenceText answers when retrieval found nothing.
	NoEvidenceText string
	// InvalidOutputText answers when the model output fails validation.
	InvalidOutputText string
}

func (t TaskDescriptor) Schema() *llm.OutputSchema {
	schema := &llm.OutputSchema{
		Name: string(t.Kind) + "_response",
		Fields: []llm.SchemaField{
			{Name: "answer", Description: "the answer shown to the user, with citations"},
		},
	}
	if t.WantsReport {
		schema.Fields = append(schema.Fields, llm.SchemaField{
			Name:        "report",
			Description: "a markdown research report, or null when none was requested or the context does not support one",
			Nullable:    true,
		})
	}
	return schema
}

const citationRule = `Cite every fact with its source as [source: document_name, page: page_number].
If a fact comes from several places, list every source in that format separated by commas, e.g. [source: Doc1.pdf, page: 2], [source: Doc2.pdf, page: 5].`

var registry = map[commonModels.TaskKind]TaskDescriptor{
	commonModels.TaskQnA: {
		Kind: commonModels.TaskQnA,
		Instructions: `You are a QnA assistant. Answer the user query using only the information in the context below.
If the context does not contain the answer, the answer must be exactly: "` + QnANotFoundText + `"
` + citationRule,
		Temperature:       config.DeterministicTemperature,
		Evidence:          FlatEvidence,
		NoEvidenceText:    QnANotFoundText,
		InvalidOutputText: "Couldn't generate an answer from the provided docs...",
	},
	commonModels.TaskSummarize: {
		Kind: commonModels.TaskSummarize,
		Instructions: `You are a summarization assistant. Summarize the context below with respect to the user query.
Write the summary as bullet points. Every bullet carries the citation of the passage it comes from.
Do not add anything that is not in the context.
` + citationRule,
		Temperature:       config.DeterministicTemperature,
		Evidence:          FlatEvidence,
		NoEvidenceText:    "Couldn't generate a summary from the provided docs...",
		InvalidOutputText: "Couldn't generate a summary from the provided docs...",
	},
	commonModels.TaskCompare: {
		Kind: commonModels.TaskCompare,
		Instructions: `You are a compare assistant. Compare and contrast the documents in the context below, based on the user query.
Return the comparison as a markdown table. The first column names the point of comparison, then one column per document.
Every cell ends with its source, e.g. "details (source: document_name, page: page_number)".
Never mix facts: a cell only holds what that document says. Write "not covered" when a document says nothing on a point.`,
		Temperature:       config.DeterministicTemperature,
		Evidence:          GroupedEvidence,
		NoEvidenceText:    "Couldn't generate a comparison from the provided docs...",
		InvalidOutputText: "Couldn't generate a comparison from the provided docs...",
	},
	commonModels.TaskExtract: {
		Kind: commonModels.TaskExtract,
		Instructions: `You are an info-extraction and report generation assistant.
Put the requested information, taken as-is from the context, in "answer".
If the user asks for a report, document or downloadable output, also write a markdown research report built only from the extracted information into "report". Otherwise "report" is null.
If the context has nothing to support a report, "report" is null and "answer" says so. Never invent content.
` + citationRule,
		Temperature:       config.DeterministicTemperature,
		WantsReport:       true,
		Evidence:          FlatEvidence,
		NoEvidenceText:    "Couldn't extract the requested information from the provided docs...",
		InvalidOutputText: "Couldn't extract the requested information from the provided docs...",
	},
	commonModels.TaskInsight: {
		Kind: commonModels.TaskInsight,
		Instructions: `You are an insight generation assistant. Analyze the context below with respect to the user query and give relevant, concise and clear insights and recommendations.
Ground every insight in the context.
If the context does not warrant any interpretation, the answer must be exactly: "Couldn't generate insights from the provided docs..."
` + citationRule,
		Temperature:       config.InsightTemperature,
		Evidence:          FlatEvidence,
		NoEvidenceText:    "Couldn't generate insights from the provided docs...",
		InvalidOutputText: "Couldn't generate insights from the provided docs...",
	},
}

// Lookup returns the descriptor registered for a task.
func Lookup(kind commonModels.TaskKind) (TaskDescriptor, bool) {
	d, ok := registry[kind]
	return d, ok
}

// Registry returns a copy of every registered descriptor.
func Registry() map[commonModels.TaskKind]TaskDescriptor {
	out := make(map[commonModels.TaskKind]TaskDescriptor, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}
