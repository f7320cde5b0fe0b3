package rag

import (
	"context"
	"io"
	"time"

	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/agent"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/internal/report"
	"github.com/akolanti/ResearchAgent/internal/session"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

/*
Service (public interface) is the only thing transports see.
service (private struct) holds the session manager, the index store, the agent
and the report store, so each of them can be swapped for a fake in tests.
*/

type Upload struct {
	Name    string
	Content io.Reader
}

type ResearchResult struct {
	SessionId  string
	Task       commonModels.TaskKind
	Answer     string
	ReportMd   *string
	ReportFile string
	ReportURL  string
}

// Service runs one research request end to end. Every request gets a fresh
// session which is torn down before Research returns, whatever the outcome.
type Service interface {
	Research(ctx context.Context, query string, uploads []Upload) (ResearchResult, error)
}

type service struct {
	sessions session.Manager
	store    vectorDB.SessionStore
	agent    agent.Agent
	reports  report.Store
	logger   *logger_i.Logger
}

func NewService(sessions session.Manager, store vectorDB.SessionStore, a agent.Agent, reports report.Store) Service {
	return &service{
		sessions: sessions,
		store:    store,
		agent:    a,
		reports:  reports,
		logger:   logger_i.NewLogger("Research Service"),
	}
}

func (s *service) Research(ctx context.Context, query string, uploads []Upload) (result ResearchResult, err error) {
	start := time.Now()
	defer func() {
		metrics.CaptureResearchMetrics(researchStatus(err), time.Since(start))
	}()

	sessionId, err := s.sessions.NewSession(ctx)
	if err != nil {
		return ResearchResult{}, err
	}
	log := s.logger.ForContext(ctx).With("sessionId", sessionId)
	// cleanup must still run when the caller went away
	defer s.sessions.Teardown(context.WithoutCancel(ctx), sessionId)

	result.SessionId = sessionId

	paths, err := s.executeUploadStep(ctx, log, sessionId, uploads)
	if err != nil {
		return result, err
	}

	if err = s.executeIngestStep(ctx, log, sessionId, paths); err != nil {
		return result, err
	}

	out, err := s.executeAgentStep(ctx, log, sessionId, query)
	if err != nil {
		return result, err
	}
	result.Task = out.Task
	result.Answer = out.Answer
	result.ReportMd = out.ReportMd

	if out.ReportMd != nil {
		name, saveErr := s.executeReportStep(ctx, log, sessionId, *out.ReportMd)
		if saveErr != nil {
			// the answer is still good, the report is just not downloadable
			log.Error("Could not persist report", "error", saveErr)
		} else {
			result.ReportFile = name
			result.ReportURL = s.reports.DownloadURL(name)
		}
	}

	log.Info("Research complete", "task", result.Task)
	return result, nil
}
