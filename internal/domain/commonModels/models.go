package commonModels

import (
	"fmt"
	"strconv"
)

type DocType string

var PDF DocType = "pdf"
var TXT DocType = "txt"
var ERR DocType = "ERROR"

// PageNotAvailable marks a passage whose source carried no page metadata.
const PageNotAvailable = "N/A"

type SourceDocument struct {
	Id   string  `json:"doc_id"`
	Name string  `json:"doc_name"`
	Kind DocType `json:"kind"`
}

// DocumentId is the per-session id of the n-th uploaded file.
func DocumentId(position int) string {
	return fmt.Sprintf("doc_%d", position)
}

// PageRecord is one page (or one whole text file) as read by the loader.
type PageRecord struct {
	Text       string `json:"text"`
	SourcePath string `json:"source"`
	DocId      string `json:"doc_id"`
	DocName    string `json:"doc_name"`
	Page       int    `json:"page"`
	SessionId  string `json:"session_id"`
}

type Passage struct {
	Content   string `json:"content"`
	DocId     string `json:"doc_id"`
	DocName   string `json:"doc_name"`
	Page      int    `json:"page,omitempty"` //0 when the source had no page metadata
	SessionId string `json:"session_id"`
}

func (p Passage) PageLabel() string {
	if p.Page <= 0 {
		return PageNotAvailable
	}
	return strconv.Itoa(p.Page)
}

type GroupEntry struct {
	Content    string `json:"content"`
	DocName    string `json:"doc_name"`
	PageNumber string `json:"page_number"`
}

type DocumentGroup struct {
	DocId   string       `json:"doc_id"`
	Entries []GroupEntry `json:"entries"`
}

type RetrievalResult struct {
	Passages []Passage       `json:"passages"`
	Groups   []DocumentGroup `json:"groups"`
}

func (r RetrievalResult) IsEmpty() bool {
	return len(r.Passages) == 0
}

// Group returns the entries of one document, nil when it was not retrieved.
func (r RetrievalResult) Group(docId string) []GroupEntry {
	for _, g := range r.Groups {
		if g.DocId == docId {
			return g.Entries
		}
	}
	return nil
}

type TaskKind string

const (
	TaskSummarize      TaskKind = "summarize"
	TaskQnA            TaskKind = "qna"
	TaskCompare        TaskKind = "compare"
	TaskExtract        TaskKind = "extract"
	TaskInsight        TaskKind = "insight"
	TaskUnclassifiable TaskKind = "none"
)

// TaskPriority is the tie-break order when several tasks could apply.
var TaskPriority = []TaskKind{TaskQnA, TaskSummarize, TaskCompare, TaskExtract, TaskInsight}

func ParseTaskKind(s string) (TaskKind, bool) {
	for _, k := range TaskPriority {
		if string(k) == s {
			return k, true
		}
	}
	return TaskUnclassifiable, false
}

// QueryState travels through the agent. Stages only ever fill fields in.
type QueryState struct {
	SessionId string
	Query     string
	Task      TaskKind
	Retrieval RetrievalResult
	Answer    *string
	Report    *string
}
