package vectorDB

import (
	"context"

	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
)

// Index is the vector index of one session.
type Index interface {
	// Loaded is false until the index was found by Open or built by Create/Add.
	Loaded() bool
	Len(ctx context.Context) (int, error)

	// Add embeds the passages and appends them. An empty slice is a no-op.
	Add(ctx context.Context, passages []commonModels.Passage) error

	// Search returns the k nearest passages, nearest first.
	// It fails with agentErrors.IndexNotLoadedError while the index is not loaded.
	Search(ctx context.Context, query string, k int) ([]commonModels.Passage, error)
}

// SessionStore owns the mapping from session id to index. Callers guarantee a
// session id is never used by two requests at once.
type SessionStore interface {
	// Open loads the persisted index of a session. A missing index is not an
	// error, the returned index is simply not loaded.
	Open(ctx context.Context, sessionId string) (Index, error)

	// Create drops whatever the session had and returns an empty, loaded index.
	Create(ctx context.Context, sessionId string) (Index, error)

	// Delete removes the persisted index. Deleting a missing index succeeds.
	Delete(ctx context.Context, sessionId string) error
}
