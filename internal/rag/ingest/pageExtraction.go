package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

func getDocType(docPath string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return commonModels.PDF
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// overridden in tests
var documentExtractTimeout = config.DocumentExtractTimeout

func extractText(ctx context.Context, path string, contentType commonModels.DocType, log *logger_i.Logger) ([]rawPage, error) {
	switch contentType {
	case commonModels.PDF:
		return extractPDF(ctx, path, log)
	case commonModels.TXT:
		return extractPlainText(path, log)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// extractPDF walks the page tree off the request goroutine. A malformed tree can
// keep the parser looping forever, so the caller stops waiting once the document
// timeout expires or ctx is done. The file is read up front so a stuck walk holds
// no descriptor into the session directory.
func extractPDF(ctx context.Context, path string, log *logger_i.Logger) ([]rawPage, error) {
	log.Debug("extractPDF", "attempting extraction", path)
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("failed reading of pdf file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read pdf: %w", err)
	}

	type result struct {
		pages []rawPage
		err   error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("malformed pdf: %v", r)}
			}
		}()
		pages, err := readPDFPages(ctx, data, log)
		resChan <- result{pages, err}
	}()

	timer := time.NewTimer(documentExtractTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.pages, r.err
	case <-timer.C:
		log.Error("pdf extraction timed out", "path", path, "timeout", documentExtractTimeout)
		return nil, errors.New("pdf extraction timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func readPDFPages(ctx context.Context, data []byte, log *logger_i.Logger) ([]rawPage, error) {
	f, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		log.Error("failed opening of pdf file", "error", err)
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	log.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			log.Debug("extractPDF", "skipping empty page", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// one unreadable page should not sink the whole document
			log.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i,
			Content: content,
		})
	}
	return pages, nil
}

// plain text has no pages, the whole file is page 1
func extractPlainText(path string, log *logger_i.Logger) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		log.Error("Error extracting content from text file", "path", path, "error", err)
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	return []rawPage{
		{
			Number:  1,
			Content: text,
		},
	}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("page extraction timed out")
	}
}
