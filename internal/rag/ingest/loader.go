package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

type sourceFile struct {
	doc  commonModels.SourceDocument
	path string
}

// LoadDocuments reads every file of a session into page records, in input order.
// Nothing is returned unless every path exists and has a supported extension.
func LoadDocuments(ctx context.Context, sessionId string, paths []string) ([]commonModels.PageRecord, error) {
	log := logger_i.NewLogger("Document Loader").ForContext(ctx).With("sessionId", sessionId)

	sources, err := resolveSources(paths)
	if err != nil {
		log.Warn("Rejected upload set", "error", err)
		return nil, err
	}

	var records []commonModels.PageRecord
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages, err := extractText(ctx, src.path, src.doc.Kind, log)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			log.Warn("Unreadable document", "docId", src.doc.Id, "name", src.doc.Name, "error", err)
			return nil, &agentErrors.ExtractionError{Name: src.doc.Name, Err: err}
		}
		log.Debug("Loaded document", "docId", src.doc.Id, "name", src.doc.Name, "pages", len(pages))

		for _, page := range pages {
			records = append(records, commonModels.PageRecord{
				Text:       page.Content,
				SourcePath: src.path,
				DocId:      src.doc.Id,
				DocName:    src.doc.Name,
				Page:       page.Number,
				SessionId:  sessionId,
			})
		}
	}
	return records, nil
}

func resolveSources(paths []string) ([]sourceFile, error) {
	sources := make([]sourceFile, 0, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}

		info, err := os.Stat(abs)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &agentErrors.NotFoundError{Path: p}
			}
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, &agentErrors.NotFoundError{Path: p}
		}

		kind := getDocType(abs)
		if kind == commonModels.ERR {
			return nil, &agentErrors.UnsupportedFormatError{Path: p, Extension: filepath.Ext(abs)}
		}

		sources = append(sources, sourceFile{
			doc: commonModels.SourceDocument{
				Id:   commonModels.DocumentId(i),
				Name: filepath.Base(abs),
				Kind: kind,
			},
			path: abs,
		})
	}
	return sources, nil
}
