package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logger_i.Logger
var quadrantInstance *qdrant.Client
var once sync.Once

// GetQuadrantClient returns nil when qdrant is not reachable.
func GetQuadrantClient(ctx context.Context, host string, port int) *qdrant.Client {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(ctx, host, port)
		if res != nil {
			quadrantInstance = res
			go closeQdrant(ctx, quadrantInstance)
		}
	})
	return quadrantInstance
}

func newClient(ctx context.Context, host string, port int) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.HealthCheck(pingCtx); err != nil {
		logger.Error("qdrant is offline", "host", host, "port", port, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

// sessionStore gives every session its own collection.
type sessionStore struct {
	client   *qdrant.Client
	embedder embedding.Embedder
}

func NewSessionStore(client *qdrant.Client, e embedding.Embedder) vectorDB.SessionStore {
	return &sessionStore{client: client, embedder: e}
}

func collectionName(sessionId string) string {
	return config.QdrantSessionPrefix + sessionId
}

func (s *sessionStore) Open(ctx context.Context, sessionId string) (vectorDB.Index, error) {
	exists, err := s.client.CollectionExists(ctx, collectionName(sessionId))
	if err != nil {
		return nil, fmt.Errorf("looking up collection of session %s: %w", sessionId, err)
	}
	idx := &index{store: s, sessionId: sessionId, loaded: exists, hasCollection: exists}
	if exists {
		// later passages continue the insertion order of the stored ones
		count, err := idx.Len(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting passages of session %s: %w", sessionId, err)
		}
		idx.nextOrder = count
	}
	return idx, nil
}

func (s *sessionStore) Create(ctx context.Context, sessionId string) (vectorDB.Index, error) {
	if err := s.Delete(ctx, sessionId); err != nil {
		return nil, err
	}
	return &index{store: s, sessionId: sessionId, loaded: true}, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionId string) error {
	name := collectionName(sessionId)
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("looking up collection %s: %w", name, err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", name, err)
	}
	return nil
}

type index struct {
	store     *sessionStore
	sessionId string

	mu            sync.Mutex
	loaded        bool
	hasCollection bool
	nextOrder     int
}

func (i *index) Loaded() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.loaded
}

func (i *index) Len(ctx context.Context) (int, error) {
	i.mu.Lock()
	hasCollection := i.hasCollection
	i.mu.Unlock()
	if !hasCollection {
		return 0, nil
	}
	count, err := i.store.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName(i.sessionId),
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (i *index) Add(ctx context.Context, passages []commonModels.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	texts := make([]string, len(passages))
	for j, p := range passages {
		texts[j] = p.Content
	}
	vectors, err := i.store.embedder.BatchEmbedding(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding passages: %w", err)
	}
	if len(vectors) != len(passages) {
		return fmt.Errorf("mismatch: got %d passages but %d vectors", len(passages), len(vectors))
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	name := collectionName(i.sessionId)
	if !i.hasCollection {
		if err := createCollection(ctx, i.store.client, name, uint64(len(vectors[0]))); err != nil {
			return fmt.Errorf("creating collection %s: %w", name, err)
		}
		i.hasCollection = true
	}

	points := make([]*qdrant.PointStruct, len(passages))
	for j, p := range passages {
		points[j] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.New().String()),
			Vectors: qdrant.NewVectors(vectors[j]...),
			Payload: qdrant.NewValueMap(toPayload(p, i.nextOrder+j)),
		}
	}

	start := time.Now()
	_, err = i.store.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	metrics.CaptureExecutionMetrics("qdrant_upsert", time.Since(start))
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	i.nextOrder += len(passages)
	i.loaded = true
	return nil
}

func (i *index) Search(ctx context.Context, query string, k int) ([]commonModels.Passage, error) {
	i.mu.Lock()
	loaded, hasCollection := i.loaded, i.hasCollection
	i.mu.Unlock()

	if !loaded {
		return nil, &agentErrors.IndexNotLoadedError{SessionId: i.sessionId}
	}
	if !hasCollection || k <= 0 {
		return []commonModels.Passage{}, nil
	}

	q, err := i.store.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	hits, err := i.store.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName(i.sessionId),
		Query:          qdrant.NewQuery(q...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	return rankHits(hits), nil
}

// rankHits orders by score, equal scores keep insertion order.
func rankHits(hits []*qdrant.ScoredPoint) []commonModels.Passage {
	sorted := make([]*qdrant.ScoredPoint, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(a, b int) bool {
		if sorted[a].GetScore() != sorted[b].GetScore() {
			return sorted[a].GetScore() > sorted[b].GetScore()
		}
		return sorted[a].GetPayload()["order"].GetIntegerValue() < sorted[b].GetPayload()["order"].GetIntegerValue()
	})

	out := make([]commonModels.Passage, 0, len(sorted))
	for _, hit := range sorted {
		out = append(out, fromPayload(hit.GetPayload()))
	}
	return out
}

func createCollection(ctx context.Context, client *qdrant.Client, name string, dimension uint64) error {
	if name == "" {
		return errors.New("empty collection name")
	}
	if dimension == 0 {
		return errors.New("empty embedding vector")
	}
	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func toPayload(p commonModels.Passage, order int) map[string]any {
	return map[string]any{
		"content":    p.Content,
		"doc_id":     p.DocId,
		"doc_name":   p.DocName,
		"page":       p.Page,
		"session_id": p.SessionId,
		"order":      order,
	}
}

func fromPayload(payload map[string]*qdrant.Value) commonModels.Passage {
	return commonModels.Passage{
		Content:   payload["content"].GetStringValue(),
		DocId:     payload["doc_id"].GetStringValue(),
		DocName:   payload["doc_name"].GetStringValue(),
		Page:      int(payload["page"].GetIntegerValue()),
		SessionId: payload["session_id"].GetStringValue(),
	}
}
