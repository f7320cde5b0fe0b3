package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akolanti/ResearchAgent/internal/adapter"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, traceId string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(traceId, error, httpCode))
}
