package adapter

import (
	"errors"
	"net/http"

	"github.com/akolanti/ResearchAgent/internal/api"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/rag"
	"github.com/akolanti/ResearchAgent/internal/report"
	"github.com/akolanti/ResearchAgent/internal/session"
)

func ToResearchResponse(result rag.ResearchResult) api.ResearchResponse {
	return api.ResearchResponse{
		SessionId: result.SessionId,
		Task:      string(result.Task),
		Answer:    result.Answer,
		ReportMd:  result.ReportMd,
		ReportURL: result.ReportURL,
	}
}

func BadRequest(traceId string, message string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Kind:    "bad_request",
		Message: message,
		TraceId: traceId,
	}
}

// ToErrorResponse maps the error taxonomy onto HTTP. Ingestion problems and
// unroutable queries are the caller's to fix, everything else is ours.
func ToErrorResponse(traceId string, err error) api.ErrorResponse {
	var notFound *agentErrors.NotFoundError
	var unsupported *agentErrors.UnsupportedFormatError
	var extraction *agentErrors.ExtractionError
	var classification *agentErrors.TaskClassificationError
	var retrieval *agentErrors.RetrievalError

	res := api.ErrorResponse{TraceId: traceId, Message: err.Error()}
	switch {
	case errors.As(err, &notFound):
		res.Code, res.Kind = http.StatusBadRequest, "document_not_found"
	case errors.As(err, &unsupported):
		res.Code, res.Kind = http.StatusBadRequest, "unsupported_format"
	case errors.As(err, &extraction):
		res.Code, res.Kind = http.StatusBadRequest, "unreadable_document"
	case errors.Is(err, session.ErrInvalidFileName):
		res.Code, res.Kind = http.StatusBadRequest, "invalid_file_name"
	case errors.As(err, &classification):
		res.Code, res.Kind = http.StatusUnprocessableEntity, "task_classification"
	case errors.As(err, &retrieval):
		res.Code, res.Kind, res.Message = http.StatusInternalServerError, "retrieval", "Internal Server Error"
	case errors.Is(err, report.ErrInvalidName):
		res.Code, res.Kind = http.StatusBadRequest, "invalid_report_name"
	case errors.Is(err, report.ErrNotFound):
		res.Code, res.Kind = http.StatusNotFound, "report_not_found"
	default:
		res.Code, res.Kind, res.Message = http.StatusInternalServerError, "internal", "Internal Server Error"
	}
	return res
}
