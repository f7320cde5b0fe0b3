package qdrantDB

import (
	"testing"

	"github.com/akolanti/ResearchAgent/internal/config"
	"github.com/akolanti/ResearchAgent/internal/domain/commonModels"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestPayloadRoundTrip(t *testing.T) {
	tests := []commonModels.Passage{
		{Content: "The refund policy allows returns within 30 days.", DocId: "doc_0", DocName: "policy.txt", Page: 1, SessionId: "s1"},
		{Content: "no page metadata", DocId: "doc_3", DocName: "notes.pdf", SessionId: "s1"},
	}

	for _, p := range tests {
		payload := qdrant.NewValueMap(toPayload(p, 7))

		assert.Equal(t, int64(7), payload["order"].GetIntegerValue())
		assert.Equal(t, p, fromPayload(payload))
	}
}

func TestFromPayload_MissingFields(t *testing.T) {
	got := fromPayload(map[string]*qdrant.Value{})
	assert.Equal(t, commonModels.Passage{}, got)
	assert.Equal(t, commonModels.PageNotAvailable, got.PageLabel())
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, config.QdrantSessionPrefix+"abc", collectionName("abc"))
	assert.NotEqual(t, collectionName("a"), collectionName("b"))
}

func TestRankHits(t *testing.T) {
	hit := func(content string, score float32, order int) *qdrant.ScoredPoint {
		return &qdrant.ScoredPoint{
			Score:   score,
			Payload: qdrant.NewValueMap(toPayload(commonModels.Passage{Content: content, DocId: "doc_0", SessionId: "s1"}, order)),
		}
	}

	got := rankHits([]*qdrant.ScoredPoint{
		hit("late tie", 0.5, 9),
		hit("best", 0.9, 4),
		hit("early tie", 0.5, 2),
		hit("worst", 0.1, 0),
	})

	var contents []string
	for _, p := range got {
		contents = append(contents, p.Content)
	}
	assert.Equal(t, []string{"best", "early tie", "late tie", "worst"}, contents)
	assert.Empty(t, rankHits(nil))
}
