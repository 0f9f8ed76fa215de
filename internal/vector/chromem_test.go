package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromemIndex_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)
	defer idx.Close()

	points := []Point{
		{ID: "doc-1", Embedding: []float32{1, 0, 0}, Payload: map[string]string{"title": "alpha", "summary": "first doc"}},
		{ID: "doc-2", Embedding: []float32{0, 1, 0}, Payload: map[string]string{"title": "beta"}},
		{ID: "doc-3", Embedding: []float32{0.9, 0.1, 0}, Payload: map[string]string{"title": "gamma"}},
	}
	require.NoError(t, idx.UpsertBatch(ctx, "notes", points))

	hits, err := idx.Query(ctx, "notes", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// Nearest neighbor of (1,0,0) is doc-1, then doc-3.
	assert.Equal(t, "doc-1", hits[0].ID)
	assert.Equal(t, "doc-3", hits[1].ID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
	assert.Equal(t, "alpha", hits[0].Payload["title"])
}

func TestChromemIndex_QueryClampsLimitToCollectionSize(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx, "notes", Point{ID: "only", Embedding: []float32{1, 0}}))

	hits, err := idx.Query(ctx, "notes", []float32{1, 0}, 20)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestChromemIndex_QueryEmptyCollection(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)

	hits, err := idx.Query(ctx, "empty", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestChromemIndex_CollectionIsolation(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx, "a", Point{ID: "p1", Embedding: []float32{1, 0}}))
	require.NoError(t, idx.Upsert(ctx, "b", Point{ID: "p2", Embedding: []float32{0, 1}}))

	countA, err := idx.Count(ctx, "a")
	require.NoError(t, err)
	countB, err := idx.Count(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, countA)
	assert.Equal(t, 1, countB)

	names, err := idx.Collections(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestChromemIndex_UpsertReplacesPoint(t *testing.T) {
	ctx := context.Background()
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)

	require.NoError(t, idx.Upsert(ctx, "notes", Point{
		ID: "doc-1", Embedding: []float32{1, 0}, Payload: map[string]string{"title": "old"},
	}))
	require.NoError(t, idx.Upsert(ctx, "notes", Point{
		ID: "doc-1", Embedding: []float32{1, 0}, Payload: map[string]string{"title": "new"},
	}))

	count, err := idx.Count(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	hits, err := idx.Query(ctx, "notes", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Payload["title"])
}

func TestPoint_Validate(t *testing.T) {
	assert.Error(t, Point{Embedding: []float32{1}}.Validate())
	assert.Error(t, Point{ID: "x"}.Validate())
	assert.NoError(t, Point{ID: "x", Embedding: []float32{1}}.Validate())
}

func TestChromemIndex_Health(t *testing.T) {
	idx, err := NewChromemIndex(DefaultConfig())
	require.NoError(t, err)
	assert.True(t, idx.Health(context.Background()).IsHealthy())
}
