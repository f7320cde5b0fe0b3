package generator

import (
	"fmt"
	"strings"

	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
)

func buildPrompt(task TaskDescriptor, query string, retrieval commonModels.RetrievalResult) string {
	var b strings.Builder
	b.WriteString("SYSTEM INSTRUCTIONS:\n")
	b.WriteString(task.Instructions)
	b.WriteString("\n\nOUTPUT FORMAT:\n")
	b.WriteString(outputFormat(task))
	b.WriteString("\n\nCONTEXT:\n")
	b.WriteString(buildEvidence(task.Evidence, retrieval))
	b.WriteString("\nUSER QUERY:\n")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

func outputFormat(task TaskDescriptor) string {
	if task.WantsReport {
		return `Reply with one JSON object and nothing else: {"answer": "<string>", "report": "<markdown string>" or null}`
	}
	return `Reply with one JSON object and nothing else: {"answer": "<string>"}`
}

func buildEvidence(layout EvidenceLayout, retrieval commonModels.RetrievalResult) string {
	if layout == GroupedEvidence {
		return groupedEvidence(retrieval.Groups)
	}
	return flatEvidence(retrieval.Passages)
}

func flatEvidence(passages []commonModels.Passage) string {
	var b strings.Builder
	for _, p := range passages {
		fmt.Fprintf(&b, "Document: %s, Page: %s\n Page Content: %s\n\n", p.DocName, p.PageLabel(), p.Content)
	}
	return b.String()
}

func groupedEvidence(groups []commonModels.DocumentGroup) string {
	var b strings.Builder
	for _, g := range groups {
		if len(g.Entries) == 0 {
			continue
		}
		name := g.Entries[0].DocName
		fmt.Fprintf(&b, "Document Name: %s\nContext from %s:\n", name, name)
		for _, e := range g.Entries {
			fmt.Fprintf(&b, "- %s\n Page Number: %s\n", e.Content, e.PageNumber)
		}
		b.WriteString("\n")
	}
	return b.String()
}
