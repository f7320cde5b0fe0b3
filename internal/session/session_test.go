package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/rag/ragMocks"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB/localDB"
	"github.com/akolanti/ResearchAgent/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	vectorDB.SessionStore
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("index locked")
}

func newManager(t *testing.T) (session.Manager, vectorDB.SessionStore) {
	t.Helper()
	store := localDB.NewSessionStore(localDB.NewFileSnapshot(t.TempDir()), &ragMocks.MockEmbedder{})
	m, err := session.NewManager(t.TempDir(), store)
	require.NoError(t, err)
	return m, store
}

func TestNewSession(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	a, err := m.NewSession(ctx)
	require.NoError(t, err)
	b, err := m.NewSession(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.DirExists(t, m.UploadDir(a))
	assert.True(t, filepath.IsAbs(m.UploadDir(a)))
}

func TestStoreUpload(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()
	sid, err := m.NewSession(ctx)
	require.NoError(t, err)

	tests := []struct {
		name     string
		position int
		wantBase string
	}{
		{"policy.txt", 0, "policy.txt"},
		{"../../etc/passwd", 1, "passwd"},
		{`C:\Users\me\report.pdf`, 2, "report.pdf"},
		{"policy.txt", 3, "policy.txt"},
	}

	for _, tt := range tests {
		path, err := m.StoreUpload(ctx, sid, tt.position, tt.name, strings.NewReader("content of "+tt.name))
		require.NoError(t, err, tt.name)

		assert.Equal(t, tt.wantBase, filepath.Base(path))
		assert.True(t, strings.HasPrefix(path, m.UploadDir(sid)+string(filepath.Separator)), "upload escaped the session dir: %s", path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "content of "+tt.name, string(data))
	}

	for _, bad := range []string{"", "  ", "..", "/"} {
		_, err := m.StoreUpload(ctx, sid, 9, bad, strings.NewReader("x"))
		assert.True(t, errors.Is(err, session.ErrInvalidFileName), "name %q", bad)
	}
}

func TestTeardown(t *testing.T) {
	m, store := newManager(t)
	ctx := context.Background()
	sid, err := m.NewSession(ctx)
	require.NoError(t, err)

	_, err = m.StoreUpload(ctx, sid, 0, "policy.txt", strings.NewReader("The refund policy allows returns within 30 days."))
	require.NoError(t, err)
	index, err := store.Create(ctx, sid)
	require.NoError(t, err)
	require.NoError(t, index.Add(ctx, []commonModels.Passage{{Content: "The refund policy allows returns within 30 days.", DocId: "doc_0", DocName: "policy.txt", Page: 1, SessionId: sid}}))

	m.Teardown(ctx, sid)

	assert.NoDirExists(t, m.UploadDir(sid))
	reopened, err := store.Open(ctx, sid)
	require.NoError(t, err)
	assert.False(t, reopened.Loaded())

	// a second teardown finds nothing and must not fail
	m.Teardown(ctx, sid)
}

func TestTeardown_IndexFailureStillRemovesUploads(t *testing.T) {
	m, err := session.NewManager(t.TempDir(), brokenStore{})
	require.NoError(t, err)
	ctx := context.Background()

	sid, err := m.NewSession(ctx)
	require.NoError(t, err)
	_, err = m.StoreUpload(ctx, sid, 0, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	m.Teardown(ctx, sid)
	assert.NoDirExists(t, m.UploadDir(sid))
}
