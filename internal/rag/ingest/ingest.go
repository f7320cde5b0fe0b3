package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

// ChunkPages splits every record on its own, so overlap never crosses from one
// page or document into the next.
func ChunkPages(records []commonModels.PageRecord) []commonModels.Passage {
	splitter := newTextSplitter(config.ChunkSize, config.ChunkOverlap)

	var passages []commonModels.Passage
	for _, record := range records {
		for _, text := range splitter.Split(record.Text) {
			passages = append(passages, commonModels.Passage{
				Content:   text,
				DocId:     record.DocId,
				DocName:   record.DocName,
				Page:      record.Page,
				SessionId: record.SessionId,
			})
		}
	}
	return passages
}

// Ingest loads the files of a session, chunks them and builds the session index
// from scratch. It returns the number of passages indexed.
func Ingest(ctx context.Context, store vectorDB.SessionStore, sessionId string, paths []string) (int, error) {
	log := logger_i.NewLogger("Document Ingestion").ForContext(ctx).With("sessionId", sessionId)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ingest", time.Since(start)) }()

	records, err := LoadDocuments(ctx, sessionId, paths)
	if err != nil {
		return 0, err
	}
	log.Debug("Processing documents", "files", len(paths), "pages", len(records))

	passages := ChunkPages(records)
	log.Debug("Processing documents", "passages", len(passages))

	index, err := store.Create(ctx, sessionId)
	if err != nil {
		return 0, fmt.Errorf("creating session index: %w", err)
	}
	if err := index.Add(ctx, passages); err != nil {
		log.Error("Error indexing passages", "error", err)
		return 0, fmt.Errorf("indexing passages: %w", err)
	}

	log.Info("Documents ingested", "passages", len(passages))
	return len(passages), nil
}
