package handlers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/akolanti/ResearchAgent/internal/adapter"
	"github.com/akolanti/ResearchAgent/internal/adapter/utils"
	"github.com/akolanti/ResearchAgent/internal/api"
	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/rag"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

// GetHandler godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       / [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// PostResearchHandler godoc
// @Summary      Research a set of documents
// @Description  Uploads the documents into a fresh session, routes the query to one task and answers from the documents only. The session is removed before the response is sent.
// @Tags         Research
// @Accept       multipart/form-data
// @Produce      json
// @Param        query  query     string  true  "The research question or instruction"
// @Param        files  formData  file    true  "One or more .txt or .pdf documents"
// @Success      200  {object}  api.ResearchResponse
// @Failure      400  {object}  api.ErrorResponse  "Missing query or files, unknown or unsupported document"
// @Failure      422  {object}  api.ErrorResponse  "The query could not be routed to any task"
// @Failure      500  {object}  api.ErrorResponse
// @Router       /ai/ai-research [post]
func PostResearchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	traceId := logger_i.TraceId(r.Context())

	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		logRH.Warn("Bad research request", "traceId", traceId, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, traceId, "expected multipart/form-data with files")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logRH.Error("Couldn't remove multipart temp files", "error", err)
		}
	}()

	query := r.URL.Query().Get("query")
	if query == "" {
		query = r.FormValue("query")
	}
	headers := r.MultipartForm.File["files"]

	req := api.ResearchRequest{Query: query}
	for _, fh := range headers {
		req.Files = append(req.Files, fh.Filename)
	}
	if msg := req.Validate(); msg != "" {
		WriteErrorResponse(w, http.StatusBadRequest, traceId, msg)
		return
	}

	uploads, closeAll, err := openUploads(headers)
	defer closeAll()
	if err != nil {
		logRH.Error("Couldn't open upload", "traceId", traceId, "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, traceId, "could not read uploaded file")
		return
	}

	result, err := handlerInstance.service.Research(r.Context(), query, uploads)
	if err != nil {
		res := adapter.ToErrorResponse(traceId, err)
		logRH.Warn("Research failed", "traceId", traceId, "code", res.Code, "error", err)
		writeJsonResponse(w, res.Code, res)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToResearchResponse(result))
}

// DownloadReportHandler godoc
// @Summary      Download a generated report
// @Tags         Research
// @Produce      text/markdown
// @Param        fileName  path  string  true  "report_<session id>.md"
// @Success      200  {file}    file
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /ai/reports/download/{fileName} [get]
func DownloadReportHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	traceId := logger_i.TraceId(r.Context())
	fileName := utils.GetChiURLParam(r, "fileName")

	f, err := handlerInstance.reports.Open(fileName)
	if err != nil {
		res := adapter.ToErrorResponse(traceId, err)
		writeJsonResponse(w, res.Code, res)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, traceId, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(fileName)+"\"")
	http.ServeContent(w, r, fileName, info.ModTime(), f)
}

func openUploads(headers []*multipart.FileHeader) ([]rag.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	uploads := make([]rag.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("%s: %w", h.Filename, err)
		}
		files = append(files, f)
		uploads = append(uploads, rag.Upload{Name: h.Filename, Content: f})
	}
	return uploads, closeAll, nil
}
