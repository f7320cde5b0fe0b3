package retriever

import (
	"context"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

type Retriever interface {
	Retrieve(ctx context.Context, sessionId string, query string) (commonModels.RetrievalResult, error)
}

type retriever struct {
	store  vectorDB.SessionStore
	topK   int
	logger *logger_i.Logger
}

// New returns a retriever asking the index for topK passages, 8 when topK <= 0.
func New(store vectorDB.SessionStore, topK int) Retriever {
	if topK <= 0 {
		topK = config.DefaultRetrievalTopK
	}
	return &retriever{
		store:  store,
		topK:   topK,
		logger: logger_i.NewLogger("Retriever"),
	}
}

func (r *retriever) Retrieve(ctx context.Context, sessionId string, query string) (commonModels.RetrievalResult, error) {
	log := r.logger.ForContext(ctx).With("sessionId", sessionId)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieve", time.Since(start)) }()

	index, err := r.store.Open(ctx, sessionId)
	if err != nil {
		return commonModels.RetrievalResult{}, &agentErrors.RetrievalError{SessionId: sessionId, Err: err}
	}

	size := 0
	if index.Loaded() {
		if size, err = index.Len(ctx); err != nil {
			return commonModels.RetrievalResult{}, &agentErrors.RetrievalError{SessionId: sessionId, Err: err}
		}
	}
	if size == 0 {
		log.Warn("Session index is empty, continuing without evidence")
		return emptyResult(), nil
	}

	passages, err := index.Search(ctx, query, r.topK)
	if err != nil {
		return commonModels.RetrievalResult{}, &agentErrors.RetrievalError{SessionId: sessionId, Err: err}
	}
	log.Debug("Retrieved passages", "count", len(passages), "k", r.topK)

	return commonModels.RetrievalResult{
		Passages: passages,
		Groups:   GroupByDocument(passages),
	}, nil
}

// GroupByDocument buckets passages by document id. Groups appear in order of
// first retrieval and each group keeps retrieval order.
func GroupByDocument(passages []commonModels.Passage) []commonModels.DocumentGroup {
	groups := make([]commonModels.DocumentGroup, 0)
	position := make(map[string]int)

	for _, p := range passages {
		entry := commonModels.GroupEntry{
			Content:    p.Content,
			DocName:    p.DocName,
			PageNumber: p.PageLabel(),
		}
		if at, ok := position[p.DocId]; ok {
			groups[at].Entries = append(groups[at].Entries, entry)
			continue
		}
		position[p.DocId] = len(groups)
		groups = append(groups, commonModels.DocumentGroup{
			DocId:   p.DocId,
			Entries: []commonModels.GroupEntry{entry},
		})
	}
	return groups
}

func emptyResult() commonModels.RetrievalResult {
	return commonModels.RetrievalResult{
		Passages: []commonModels.Passage{},
		Groups:   []commonModels.DocumentGroup{},
	}
}
