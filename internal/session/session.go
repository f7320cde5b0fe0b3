package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/google/uuid"
)

var ErrInvalidFileName = errors.New("invalid upload file name")

// Manager owns the lifetime of a session: its upload directory and its index.
type Manager interface {
	NewSession(ctx context.Context) (string, error)
	// StoreUpload writes one uploaded file and returns its absolute path.
	// position keeps files with the same name apart.
	StoreUpload(ctx context.Context, sessionId string, position int, name string, content io.Reader) (string, error)
	UploadDir(sessionId string) string
	// Teardown removes everything the session owns. Failures are logged only.
	Teardown(ctx context.Context, sessionId string)
}

type manager struct {
	uploadRoot string
	store      vectorDB.SessionStore
	logger     *logger_i.Logger
}

func NewManager(uploadRoot string, store vectorDB.SessionStore) (Manager, error) {
	abs, err := filepath.Abs(uploadRoot)
	if err != nil {
		return nil, err
	}
	return &manager{
		uploadRoot: abs,
		store:      store,
		logger:     logger_i.NewLogger("Session Manager"),
	}, nil
}

func (m *manager) NewSession(ctx context.Context) (string, error) {
	sessionId := uuid.New().String()
	if err := os.MkdirAll(m.UploadDir(sessionId), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	metrics.IncrementActiveSessions()
	m.logger.ForContext(ctx).Debug("Session created", "sessionId", sessionId)
	return sessionId, nil
}

func (m *manager) UploadDir(sessionId string) string {
	return filepath.Join(m.uploadRoot, sessionId)
}

func (m *manager) StoreUpload(ctx context.Context, sessionId string, position int, name string, content io.Reader) (string, error) {
	base, err := cleanFileName(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(m.UploadDir(sessionId), strconv.Itoa(position))
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, base)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	written, err := io.Copy(f, content)
	if err != nil {
		return "", fmt.Errorf("write upload %s: %w", base, err)
	}
	m.logger.ForContext(ctx).Debug("Upload stored", "sessionId", sessionId, "file", base, "bytes", written)
	return path, nil
}

func (m *manager) Teardown(ctx context.Context, sessionId string) {
	log := m.logger.ForContext(ctx).With("sessionId", sessionId)
	defer metrics.DecrementActiveSessions()

	if err := m.store.Delete(ctx, sessionId); err != nil {
		metrics.IncrementTeardownFailure()
		log.Error("Failed to delete session index", "error", err)
	}
	if err := os.RemoveAll(m.UploadDir(sessionId)); err != nil {
		metrics.IncrementTeardownFailure()
		log.Error("Failed to delete session uploads", "error", err)
	}
	log.Debug("Session torn down")
}

// the display name of a document is its file name, so keep it but drop any path
func cleanFileName(name string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileName, name)
	}
	return base, nil
}
