package localDB_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/data/redisStore"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/rag/ragMocks"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB/localDB"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var corpus = []string{
	"The refund policy allows returns within 30 days.",
	"Shipping is free for orders above fifty dollars.",
	"Our support team answers email within two business days.",
	"Gift cards can not be exchanged for cash.",
	"Warranty claims need the original receipt.",
}

func passages() []commonModels.Passage {
	out := make([]commonModels.Passage, len(corpus))
	for i, c := range corpus {
		out[i] = commonModels.Passage{Content: c, DocId: "doc_0", DocName: "policy.txt", Page: i + 1, SessionId: "s1"}
	}
	return out
}

type backend struct {
	name      string
	persister func(t *testing.T) (localDB.Persister, func(sessionId string) bool)
}

func backends() []backend {
	return []backend{
		{
			name: "file",
			persister: func(t *testing.T) (localDB.Persister, func(string) bool) {
				root := t.TempDir()
				exists := func(sessionId string) bool {
					_, err := os.Stat(filepath.Join(root, sessionId+config.VectorDBDirSuffix, config.VectorDBFileName))
					return err == nil
				}
				return localDB.NewFileSnapshot(root), exists
			},
		},
		{
			name: "redis",
			persister: func(t *testing.T) (localDB.Persister, func(string) bool) {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = client.Close() })
				exists := func(sessionId string) bool {
					return mr.Exists(config.RedisIndexPrefix + sessionId)
				}
				return localDB.NewRedisSnapshot(redisStore.NewTestStore(client), config.RedisIndexTTL), exists
			},
		},
	}
}

func TestSessionStore(t *testing.T) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")

	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("Unbuilt index is not loaded", func(t *testing.T) {
				p, exists := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})

				index, err := store.Open(ctx, "fresh")
				require.NoError(t, err)
				assert.False(t, index.Loaded())
				assert.False(t, exists("fresh"))

				_, err = index.Search(ctx, "anything", 3)
				var notLoaded *agentErrors.IndexNotLoadedError
				assert.True(t, errors.As(err, &notLoaded))
			})

			t.Run("Adding nothing changes nothing", func(t *testing.T) {
				p, exists := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})

				index, err := store.Open(ctx, "s1")
				require.NoError(t, err)
				require.NoError(t, index.Add(ctx, nil))
				assert.False(t, exists("s1"), "an empty add must not persist anything")

				require.NoError(t, index.Add(ctx, passages()[:2]))
				before, _, err := p.Load(ctx, "s1")
				require.NoError(t, err)

				require.NoError(t, index.Add(ctx, []commonModels.Passage{}))
				after, _, err := p.Load(ctx, "s1")
				require.NoError(t, err)
				assert.Equal(t, before, after)

				n, _ := index.Len(ctx)
				assert.Equal(t, 2, n)
			})

			t.Run("Search ranks the identical passage first", func(t *testing.T) {
				p, _ := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})
				index := build(t, ctx, store, "s1")

				for _, k := range []int{1, 3, len(corpus)} {
					got, err := index.Search(ctx, corpus[2], k)
					require.NoError(t, err)
					require.Len(t, got, k)
					assert.Equal(t, corpus[2], got[0].Content)
					for _, g := range got {
						assert.Contains(t, corpus, g.Content)
					}
				}

				got, err := index.Search(ctx, corpus[0], 50)
				require.NoError(t, err)
				assert.Len(t, got, len(corpus), "k is clamped to the index size")
			})

			t.Run("Reopen keeps passages and provenance", func(t *testing.T) {
				p, _ := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})
				build(t, ctx, store, "s1")

				reopened, err := store.Open(ctx, "s1")
				require.NoError(t, err)
				assert.True(t, reopened.Loaded())

				got, err := reopened.Search(ctx, corpus[4], 1)
				require.NoError(t, err)
				require.Len(t, got, 1)
				assert.Equal(t, "policy.txt", got[0].DocName)
				assert.Equal(t, 5, got[0].Page)
			})

			t.Run("Delete removes the index", func(t *testing.T) {
				p, exists := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})
				build(t, ctx, store, "s1")
				require.True(t, exists("s1"))

				require.NoError(t, store.Delete(ctx, "s1"))
				assert.False(t, exists("s1"))
				require.NoError(t, store.Delete(ctx, "s1"), "deleting twice is fine")

				index, err := store.Open(ctx, "s1")
				require.NoError(t, err)
				assert.False(t, index.Loaded())
			})

			t.Run("Create starts empty", func(t *testing.T) {
				p, _ := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})
				build(t, ctx, store, "s1")

				index, err := store.Create(ctx, "s1")
				require.NoError(t, err)
				assert.True(t, index.Loaded())
				n, _ := index.Len(ctx)
				assert.Zero(t, n)

				got, err := index.Search(ctx, corpus[0], 3)
				require.NoError(t, err)
				assert.Empty(t, got)
			})

			t.Run("Different embedding model is rejected", func(t *testing.T) {
				p, _ := b.persister(t)
				build(t, ctx, localDB.NewSessionStore(p, &ragMocks.MockEmbedder{Model: "a"}), "s1")

				_, err := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{Model: "b"}).Open(ctx, "s1")
				assert.Error(t, err)
			})

			t.Run("Sessions do not share an index", func(t *testing.T) {
				p, _ := b.persister(t)
				store := localDB.NewSessionStore(p, &ragMocks.MockEmbedder{})
				build(t, ctx, store, "s1")

				other, err := store.Open(ctx, "s2")
				require.NoError(t, err)
				assert.False(t, other.Loaded())
			})
		})
	}
}

func TestAdd_EmbeddingFailureLeavesIndexUntouched(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	emb := &ragMocks.MockEmbedder{}
	store := localDB.NewSessionStore(localDB.NewFileSnapshot(root), emb)
	index := build(t, ctx, store, "s1")

	emb.OnBatchEmbedding = func(ctx context.Context, chunks []string) ([][]float32, error) {
		return nil, errors.New("rate limited")
	}
	assert.Error(t, index.Add(ctx, passages()))

	n, _ := index.Len(ctx)
	assert.Equal(t, len(corpus), n)
}

func TestRedisSnapshot_SetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := localDB.NewSessionStore(localDB.NewRedisSnapshot(redisStore.NewTestStore(client), config.RedisIndexTTL), &ragMocks.MockEmbedder{})
	build(t, context.Background(), store, "s1")

	assert.Equal(t, config.RedisIndexTTL, mr.TTL(config.RedisIndexPrefix+"s1"))
}

func build(t *testing.T, ctx context.Context, store vectorDB.SessionStore, sessionId string) vectorDB.Index {
	t.Helper()
	index, err := store.Create(ctx, sessionId)
	require.NoError(t, err)
	require.NoError(t, index.Add(ctx, passages()))
	return index
}
