package vector

import (
	"context"
	"fmt"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Config holds configuration for the embedded vector index.
type Config struct {
	// Path is where the index is persisted. Empty keeps everything in memory.
	Path string `yaml:"path" json:"path" mapstructure:"path"`

	// Compress enables gzip compression of persisted collections.
	Compress bool `yaml:"compress" json:"compress" mapstructure:"compress"`
}

// DefaultConfig returns an in-memory index configuration.
func DefaultConfig() Config {
	return Config{}
}

// ChromemIndex implements Index on chromem-go, a pure Go embedded vector
// database with cosine similarity search.
type ChromemIndex struct {
	db *chromem.DB

	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// NewChromemIndex creates an index, persistent when cfg.Path is set.
func NewChromemIndex(cfg Config) (*ChromemIndex, error) {
	var db *chromem.DB
	if cfg.Path != "" {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, types.WrapError(types.VECTOR_STORE_FAILED,
				"failed to open persistent vector index", err)
		}
	} else {
		db = chromem.NewDB()
	}

	return &ChromemIndex{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// getOrCreateCollection returns the chromem collection for a logical namespace.
func (x *ChromemIndex) getOrCreateCollection(name string) (*chromem.Collection, error) {
	x.mu.RLock()
	col, exists := x.collections[name]
	x.mu.RUnlock()
	if exists {
		return col, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if col, exists := x.collections[name]; exists {
		return col, nil
	}

	// Embeddings are always supplied by the caller, so no embedding func and
	// the default cosine distance.
	col, err := x.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, types.WrapError(types.VECTOR_STORE_FAILED,
			fmt.Sprintf("failed to create collection %q", name), err)
	}
	x.collections[name] = col
	return col, nil
}

// Upsert stores or replaces a point in the named collection.
func (x *ChromemIndex) Upsert(ctx context.Context, collection string, point Point) error {
	if err := point.Validate(); err != nil {
		return err
	}

	col, err := x.getOrCreateCollection(collection)
	if err != nil {
		return err
	}

	doc := chromem.Document{
		ID:        point.ID,
		Embedding: point.Embedding,
		Metadata:  point.Payload,
	}
	// chromem requires non-empty content; mirror the ID when the payload
	// carries no text of its own.
	if summary, ok := point.Payload["summary"]; ok && summary != "" {
		doc.Content = summary
	} else {
		doc.Content = point.ID
	}

	if err := col.AddDocument(ctx, doc); err != nil {
		return types.WrapError(types.VECTOR_STORE_FAILED,
			fmt.Sprintf("failed to upsert point %s", point.ID), err)
	}
	return nil
}

// UpsertBatch stores multiple points in the named collection.
func (x *ChromemIndex) UpsertBatch(ctx context.Context, collection string, points []Point) error {
	for _, point := range points {
		if err := x.Upsert(ctx, collection, point); err != nil {
			return err
		}
	}
	return nil
}

// Query returns up to limit nearest neighbors, most similar first.
func (x *ChromemIndex) Query(ctx context.Context, collection string, queryVector []float32, limit int) ([]Hit, error) {
	if limit <= 0 {
		return nil, types.NewError(types.INVALID_REQUEST, "query limit must be positive")
	}

	col, err := x.getOrCreateCollection(collection)
	if err != nil {
		return nil, err
	}

	// chromem rejects nResults larger than the collection, so clamp.
	count := col.Count()
	if count == 0 {
		return []Hit{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := col.QueryEmbedding(ctx, queryVector, limit, nil, nil)
	if err != nil {
		return nil, types.WrapError(types.VECTOR_STORE_FAILED,
			fmt.Sprintf("vector query in collection %q failed", collection), err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, Hit{
			ID:      r.ID,
			Score:   r.Similarity,
			Payload: r.Metadata,
		})
	}
	return hits, nil
}

// Count returns the number of points in the named collection.
func (x *ChromemIndex) Count(ctx context.Context, collection string) (int, error) {
	col, err := x.getOrCreateCollection(collection)
	if err != nil {
		return 0, err
	}
	return col.Count(), nil
}

// Collections lists the known collection names.
func (x *ChromemIndex) Collections(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	for name := range x.db.ListCollections() {
		names = append(names, name)
	}
	return names, nil
}

// Health reports healthy with the collection count; chromem is in-process so
// the only failure mode is a broken persistence directory, surfaced on writes.
func (x *ChromemIndex) Health(ctx context.Context) types.HealthStatus {
	start := time.Now()
	n := len(x.db.ListCollections())
	return types.Healthy(fmt.Sprintf("%d collections", n)).WithLatency(time.Since(start))
}

// Close releases resources. chromem holds everything in memory or flushed
// files, so there is nothing to tear down.
func (x *ChromemIndex) Close() error {
	return nil
}
