// Command mcp serves the research agent as an MCP tool over stdio.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/akolanti/ResearchAgent/internal/api"
	"github.com/akolanti/ResearchAgent/internal/bootstrap"
	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/rag"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type researchInput struct {
	Query string   `json:"query" jsonschema:"the research question or instruction"`
	Files []string `json:"files" jsonschema:"absolute paths of the .txt or .pdf documents to research"`
}

type researchOutput struct {
	SessionId  string  `json:"session_id"`
	Task       string  `json:"task"`
	Answer     string  `json:"answer"`
	ReportMd   *string `json:"report_md"`
	ReportFile string  `json:"report_file,omitempty"`
}

func main() {
	settings, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load configuration:", err)
		os.Exit(1)
	}
	// stdout carries the protocol
	logger_i.Init(logger_i.Options{Level: settings.LogLevel, Format: "json", FilePath: settings.LogFile, UseStderr: true})
	logger := logger_i.NewLogger("mcp")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, settings, bootstrap.Components{})
	if err != nil {
		logger.Error("Could not build the research agent", "error", err)
		os.Exit(1)
	}

	server := mcp.NewServer(&mcp.Implementation{Name: "research-agent", Version: "1.0.0"}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "research",
		Description: "Answer a question, summarize, compare, extract from or give insights on local documents. Only the given documents are used.",
	}, researchTool(app.Service, settings.ReportStoreDir))

	logger.Info("MCP server listening on stdio")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}

func researchTool(service rag.Service, reportDir string) mcp.ToolHandlerFor[researchInput, researchOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in researchInput) (*mcp.CallToolResult, researchOutput, error) {
		if msg := (api.ResearchRequest{Query: in.Query, Files: in.Files}).Validate(); msg != "" {
			return nil, researchOutput{}, errors.New(msg)
		}
		uploads, closeAll, err := openFiles(in.Files)
		defer closeAll()
		if err != nil {
			return nil, researchOutput{}, err
		}

		result, err := service.Research(ctx, in.Query, uploads)
		if err != nil {
			return nil, researchOutput{}, err
		}

		out := researchOutput{
			SessionId: result.SessionId,
			Task:      string(result.Task),
			Answer:    result.Answer,
			ReportMd:  result.ReportMd,
		}
		if result.ReportFile != "" {
			out.ReportFile = filepath.Join(reportDir, result.ReportFile)
		}
		return nil, out, nil
	}
}

func openFiles(paths []string) ([]rag.Upload, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}
	if len(paths) == 0 {
		return nil, closeAll, errors.New("at least one file is required")
	}

	uploads := make([]rag.Upload, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, closeAll, &agentErrors.NotFoundError{Path: p}
		}
		files = append(files, f)
		uploads = append(uploads, rag.Upload{Name: filepath.Base(p), Content: f})
	}
	return uploads, closeAll, nil
}
