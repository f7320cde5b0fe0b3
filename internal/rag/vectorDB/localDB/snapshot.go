package localDB

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/data/redisStore"
)

// Persister stores the serialized index of a session under a key derived from
// the session id.
type Persister interface {
	Load(ctx context.Context, sessionId string) ([]byte, bool, error)
	Save(ctx context.Context, sessionId string, data []byte) error
	Delete(ctx context.Context, sessionId string) error
}

// fileSnapshot keeps one directory per session: <root>/<session>_vector_db/index.json
type fileSnapshot struct {
	root string
}

func NewFileSnapshot(root string) Persister {
	return &fileSnapshot{root: root}
}

func (f *fileSnapshot) sessionDir(sessionId string) string {
	return filepath.Join(f.root, sessionId+config.VectorDBDirSuffix)
}

func (f *fileSnapshot) Load(_ context.Context, sessionId string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(f.sessionDir(sessionId), config.VectorDBFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Save writes to a temp file first so a crash never leaves half an index behind.
func (f *fileSnapshot) Save(_ context.Context, sessionId string, data []byte) error {
	dir := f.sessionDir(sessionId)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("creating index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, config.VectorDBFileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, config.VectorDBFileName))
}

func (f *fileSnapshot) Delete(_ context.Context, sessionId string) error {
	return os.RemoveAll(f.sessionDir(sessionId))
}

// redisSnapshot keeps the index under vector_db:<session>. The ttl only matters
// if a teardown never ran.
type redisSnapshot struct {
	store *redisStore.Store
	ttl   time.Duration
}

func NewRedisSnapshot(store *redisStore.Store, ttl time.Duration) Persister {
	return &redisSnapshot{store: store, ttl: ttl}
}

func redisKey(sessionId string) string {
	return config.RedisIndexPrefix + sessionId
}

func (r *redisSnapshot) Load(ctx context.Context, sessionId string) ([]byte, bool, error) {
	data, err := r.store.GetBytes(ctx, redisKey(sessionId))
	if r.store.IsNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (r *redisSnapshot) Save(ctx context.Context, sessionId string, data []byte) error {
	return r.store.Set(ctx, redisKey(sessionId), data, r.ttl)
}

func (r *redisSnapshot) Delete(ctx context.Context, sessionId string) error {
	return r.store.Del(ctx, redisKey(sessionId))
}
