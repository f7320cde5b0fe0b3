package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

var (
	ErrNotFound    = errors.New("report not found")
	ErrInvalidName = errors.New("invalid report name")
)

var reportName = regexp.MustCompile(`^report_[A-Za-z0-9-]+\.md$`)

// Store keeps generated reports. Reports outlive the session that made them.
type Store interface {
	Save(ctx context.Context, sessionId string, markdown string) (string, error)
	Open(fileName string) (*os.File, error)
	DownloadURL(fileName string) string
}

type fileStore struct {
	dir    string
	logger *logger_i.Logger
}

func NewStore(dir string) Store {
	return &fileStore{
		dir:    dir,
		logger: logger_i.NewLogger("Report Store"),
	}
}

func FileName(sessionId string) string {
	return fmt.Sprintf("report_%s.md", sessionId)
}

func (s *fileStore) Save(ctx context.Context, sessionId string, markdown string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("report_save", time.Since(start)) }()

	name := FileName(sessionId)
	if !reportName.MatchString(name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(markdown), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	s.logger.ForContext(ctx).Info("Report saved", "sessionId", sessionId, "file", name)
	return name, nil
}

func (s *fileStore) Open(fileName string) (*os.File, error) {
	if !reportName.MatchString(fileName) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, fileName)
	}
	f, err := os.Open(filepath.Join(s.dir, fileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileName)
	}
	return f, err
}

func (s *fileStore) DownloadURL(fileName string) string {
	return config.ReportDownloadRoute + fileName
}
