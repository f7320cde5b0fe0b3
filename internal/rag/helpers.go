package rag

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/agent"
	"github.com/akolanti/ResearchAgent/internal/rag/ingest"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

func researchStatus(err error) string {
	var classification *agentErrors.TaskClassificationError
	var notFound *agentErrors.NotFoundError
	var unsupported *agentErrors.UnsupportedFormatError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &classification):
		return "unclassified"
	case errors.As(err, &notFound), errors.As(err, &unsupported):
		return "bad_input"
	default:
		return "error"
	}
}

func (s *service) executeUploadStep(ctx context.Context, log *logger_i.Logger, sessionId string, uploads []Upload) ([]string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("upload", time.Since(start)) }()

	paths := make([]string, 0, len(uploads))
	for i, u := range uploads {
		path, err := s.sessions.StoreUpload(ctx, sessionId, i, u.Name, u.Content)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	log.Debug("Uploads stored", "files", len(paths))
	return paths, nil
}

func (s *service) executeIngestStep(ctx context.Context, log *logger_i.Logger, sessionId string, paths []string) error {
	count, err := ingest.Ingest(ctx, s.store, sessionId, paths)
	if err != nil {
		log.Warn("Ingestion failed", "error", err)
		return err
	}
	log.Debug("Ingestion finished", "passages", count)
	return nil
}

func (s *service) executeAgentStep(ctx context.Context, log *logger_i.Logger, sessionId string, query string) (agent.Result, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("agent", time.Since(start)) }()

	out, err := s.agent.Run(ctx, sessionId, query)
	if err != nil {
		log.Warn("Agent failed", "error", err)
	}
	return out, err
}

func (s *service) executeReportStep(ctx context.Context, log *logger_i.Logger, sessionId string, markdown string) (string, error) {
	name, err := s.reports.Save(ctx, sessionId, markdown)
	if err == nil {
		log.Debug("Report stored", "file", name)
	}
	return name, err
}
