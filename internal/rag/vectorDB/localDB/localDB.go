package localDB

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/akolanti/ResearchAgent/internal/domain/agentErrors"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/akolanti/ResearchAgent/internal/metrics"
	"github.com/akolanti/ResearchAgent/internal/rag/embedding"
	"github.com/akolanti/ResearchAgent/internal/rag/vectorDB"
	"github.com/akolanti/ResearchAgent/pkg/logger_i"
)

type entry struct {
	Passage commonModels.Passage `json:"passage"`
	Vector  []float32            `json:"vector"`
}

type snapshot struct {
	Model   string  `json:"model"`
	Entries []entry `json:"entries"`
}

type sessionStore struct {
	persister Persister
	embedder  embedding.Embedder
	logger    *logger_i.Logger
}

// NewSessionStore keeps every session index in memory for the length of a
// request and persists it through p after each add.
func NewSessionStore(p Persister, e embedding.Embedder) vectorDB.SessionStore {
	return &sessionStore{
		persister: p,
		embedder:  e,
		logger:    logger_i.NewLogger("local_vector_db"),
	}
}

func (s *sessionStore) Open(ctx context.Context, sessionId string) (vectorDB.Index, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("index_load", time.Since(start)) }()

	idx := &index{sessionId: sessionId, store: s}

	data, found, err := s.persister.Load(ctx, sessionId)
	if err != nil {
		return nil, fmt.Errorf("loading index of session %s: %w", sessionId, err)
	}
	if !found {
		s.logger.ForContext(ctx).Debug("No index persisted yet", "sessionId", sessionId)
		return idx, nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding index of session %s: %w", sessionId, err)
	}
	if snap.Model != s.embedder.ModelName() {
		return nil, fmt.Errorf("index of session %s was built with %q, embedder is %q", sessionId, snap.Model, s.embedder.ModelName())
	}
	idx.entries = snap.Entries
	idx.loaded = true
	return idx, nil
}

func (s *sessionStore) Create(ctx context.Context, sessionId string) (vectorDB.Index, error) {
	if err := s.Delete(ctx, sessionId); err != nil {
		return nil, err
	}
	return &index{sessionId: sessionId, store: s, loaded: true}, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionId string) error {
	if err := s.persister.Delete(ctx, sessionId); err != nil {
		return fmt.Errorf("deleting index of session %s: %w", sessionId, err)
	}
	return nil
}

type index struct {
	sessionId string
	store     *sessionStore

	mu      sync.RWMutex
	loaded  bool
	entries []entry
}

func (i *index) Loaded() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.loaded
}

func (i *index) Len(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries), nil
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

	next := make([]entry, 0, len(i.entries)+len(passages))
	next = append(next, i.entries...)
	for j, p := range passages {
		next = append(next, entry{Passage: p, Vector: vectors[j]})
	}

	data, err := json.Marshal(snapshot{Model: i.store.embedder.ModelName(), Entries: next})
	if err != nil {
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := i.store.persister.Save(ctx, i.sessionId, data); err != nil {
		return fmt.Errorf("persisting index of session %s: %w", i.sessionId, err)
	}

	i.entries = next
	i.loaded = true
	i.store.logger.ForContext(ctx).Debug("Index updated", "sessionId", i.sessionId, "added", len(passages), "total", len(next))
	return nil
}

func (i *index) Search(ctx context.Context, query string, k int) ([]commonModels.Passage, error) {
	if !i.Loaded() {
		return nil, &agentErrors.IndexNotLoadedError{SessionId: i.sessionId}
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	q, err := i.store.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	scores := make([]float64, len(i.entries))
	for j, e := range i.entries {
		scores[j] = cosine(q, e.Vector)
	}

	order := argsortDesc(scores)
	if k > len(order) {
		k = len(order)
	}
	if k < 0 {
		k = 0
	}

	out := make([]commonModels.Passage, 0, k)
	for _, j := range order[:k] {
		out = append(out, i.entries[j].Passage)
	}
	return out, nil
}

// argsortDesc orders indexes by score, ties keep insertion order.
func argsortDesc(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
