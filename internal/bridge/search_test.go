package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No-Smoke/tos-bridge/internal/embedding"
	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/vector"
)

func newTestSearcher() (*Searcher, *embedding.MockEmbedder, *vector.MockIndex, *graph.MockClient) {
	embedder := embedding.NewMockEmbedder()
	index := vector.NewMockIndex()
	graphClient := graph.NewMockClient()
	s := NewSearcher(embedder, index, graphClient, nil)
	return s, embedder, index, graphClient
}

func seedHits(index *vector.MockIndex, hits ...vector.Hit) {
	index.SetQueryHits(hits)
}

func TestSearcher_EmptyVectorHitsShortCircuit(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()
	seedHits(index) // no hits

	result := s.Search(ctx, DefaultSearchRequest("anything", "notes"))

	require.Equal(t, StatusSuccess, result.Status)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, result.Total)
	// The graph store is never contacted.
	assert.Empty(t, graphClient.Calls())
}

func TestSearcher_EmbeddingFailureAborts(t *testing.T) {
	ctx := context.Background()
	s, embedder, index, _ := newTestSearcher()
	embedder.FailWith(errors.New("upstream down"), -1)

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Error, "upstream down")
	assert.Equal(t, 0, index.QueryCalls())
}

func TestSearcher_GraphDiscoveredScoring(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index,
		vector.Hit{ID: "seed-1", Score: 0.8, Payload: map[string]string{"title": "Seed"}},
	)
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": []any{"Kafka"}},
	))
	graphClient.StubResult("NOT d.external_id IN $exclude_ids", graph.Records(
		map[string]any{
			"external_id":     "graph-1",
			"title":           "Discovered",
			"summary":         "found via graph",
			"shared_entities": []any{"Kafka", "Streams", "Topics", "Brokers"},
			"entity_count":    int64(4),
		},
	))

	result := s.Search(ctx, DefaultSearchRequest("kafka", "notes"))
	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 2)
	assert.True(t, result.GraphExpanded)

	var discovered SearchCandidate
	for _, c := range result.Results {
		if c.DiscoveredViaGraph {
			discovered = c
		}
	}
	require.Equal(t, "graph-1", discovered.ExternalID)

	// rawScore = min(0.9, 0.5 + 0.1*4) = 0.9, boosted = 0.9 + 0.2.
	assert.Equal(t, 0.9, discovered.Score)
	assert.Equal(t, 1.1, discovered.BoostedScore)
	assert.Equal(t, []string{"Kafka", "Streams", "Topics", "Brokers"}, discovered.ConnectedEntities)
}

func TestSearcher_GraphScoreClampHolds(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.5})
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": []any{"E"}},
	))
	graphClient.StubResult("NOT d.external_id IN $exclude_ids", graph.Records(
		map[string]any{
			"external_id":     "graph-1",
			"shared_entities": []any{"a", "b", "c", "d", "e", "f", "g", "h", "i"},
			"entity_count":    int64(9),
		},
	))

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))
	require.Equal(t, StatusSuccess, result.Status)

	for _, c := range result.Results {
		if c.DiscoveredViaGraph {
			// More shared entities never push rawScore above the ceiling.
			assert.Equal(t, 0.9, c.Score)
			assert.Equal(t, 1.1, c.BoostedScore)
		}
	}
}

func TestSearcher_SeededBoostSaturates(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	entities := make([]any, 10)
	for i := range entities {
		entities[i] = string(rune('a' + i))
	}
	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.6})
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": entities},
	))

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))
	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 1)

	// 10 entities x 0.05 would be 0.5; the boost saturates at 0.2.
	assert.Equal(t, 0.6, result.Results[0].Score)
	assert.Equal(t, 0.8, result.Results[0].BoostedScore)
	assert.False(t, result.Results[0].DiscoveredViaGraph)
}

func TestSearcher_SmallSeededBoostIsProportional(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.6})
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": []any{"only", "two"}},
	))

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))
	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 0.7, result.Results[0].BoostedScore)
}

func TestSearcher_RanksByBoostedScoreWithStableTieBreak(t *testing.T) {
	ctx := context.Background()
	s, _, index, _ := newTestSearcher()

	seedHits(index,
		vector.Hit{ID: "b-doc", Score: 0.7},
		vector.Hit{ID: "a-doc", Score: 0.7},
		vector.Hit{ID: "c-doc", Score: 0.9},
	)

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))
	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 3)

	assert.Equal(t, "c-doc", result.Results[0].ExternalID)
	// Equal scores order by externalId ascending.
	assert.Equal(t, "a-doc", result.Results[1].ExternalID)
	assert.Equal(t, "b-doc", result.Results[2].ExternalID)
}

func TestSearcher_TruncatesToLimit(t *testing.T) {
	ctx := context.Background()
	s, _, index, _ := newTestSearcher()

	hits := make([]vector.Hit, 6)
	for i := range hits {
		hits[i] = vector.Hit{ID: string(rune('a' + i)), Score: float32(0.9) - float32(i)*0.1}
	}
	seedHits(index, hits...)

	req := DefaultSearchRequest("q", "notes")
	req.Limit = 3
	result := s.Search(ctx, req)

	require.Equal(t, StatusSuccess, result.Status)
	assert.Len(t, result.Results, 3)
	assert.Equal(t, 3, result.Total)
}

func TestSearcher_GraphFailureFailsWholeCall(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.8})
	graphClient.SetDefaultError(errors.New("graph unreachable"))

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))

	// Never a partially-merged result mixing a failed graph phase with
	// successful vector hits.
	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Error, "graph unreachable")
	assert.Empty(t, result.Results)
}

func TestSearcher_ExcludesGraphContextWhenDisabled(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.8})
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": []any{"E1", "E2"}},
	))

	req := DefaultSearchRequest("q", "notes")
	req.IncludeGraphContext = false
	result := s.Search(ctx, req)

	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 1)
	assert.Nil(t, result.Results[0].ConnectedEntities)
}

func TestSearcher_RoundsEmittedScores(t *testing.T) {
	ctx := context.Background()
	s, _, index, graphClient := newTestSearcher()

	seedHits(index, vector.Hit{ID: "seed-1", Score: 0.123456789})
	graphClient.StubResult("collect(DISTINCT e.name) AS entities", graph.Records(
		map[string]any{"doc_id": "seed-1", "entities": []any{"E"}},
	))

	result := s.Search(ctx, DefaultSearchRequest("q", "notes"))
	require.Equal(t, StatusSuccess, result.Status)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 0.1235, result.Results[0].Score)
	assert.Equal(t, 0.1735, result.Results[0].BoostedScore)
}
