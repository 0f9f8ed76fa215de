package vector

import (
	"context"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Index provides nearest-neighbor similarity search over embeddings with an
// attached payload per point. Implementations must be thread-safe for
// concurrent access.
type Index interface {
	// Upsert stores or replaces a point in the named collection.
	Upsert(ctx context.Context, collection string, point Point) error

	// UpsertBatch stores multiple points in the named collection.
	UpsertBatch(ctx context.Context, collection string, points []Point) error

	// Query returns up to limit nearest neighbors of the query vector in the
	// named collection, most similar first. Scores are store-native similarity
	// (higher = more similar).
	Query(ctx context.Context, collection string, queryVector []float32, limit int) ([]Hit, error)

	// Count returns the number of points in the named collection.
	Count(ctx context.Context, collection string) (int, error)

	// Collections lists the known collection names.
	Collections(ctx context.Context) ([]string, error)

	// Health returns the health status of the vector index.
	Health(ctx context.Context) types.HealthStatus

	// Close releases all resources held by the index.
	Close() error
}

// Point is a stored vector with its payload.
type Point struct {
	ID        string            `json:"id"`
	Embedding []float32         `json:"embedding"`
	Payload   map[string]string `json:"payload,omitempty"`
}

// Validate ensures the Point has valid fields.
func (p Point) Validate() error {
	if p.ID == "" {
		return types.NewError(types.VECTOR_STORE_FAILED, "point ID cannot be empty")
	}
	if len(p.Embedding) == 0 {
		return types.NewError(types.VECTOR_STORE_FAILED, "point embedding cannot be empty")
	}
	return nil
}

// Hit is a nearest-neighbor search result.
type Hit struct {
	ID      string            `json:"id"`
	Score   float32           `json:"score"`
	Payload map[string]string `json:"payload,omitempty"`
}
