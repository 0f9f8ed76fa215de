// Package pattern synchronizes reusable knowledge patterns into both stores
// in batches, so agents can retrieve them alongside regular documents.
package pattern

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/No-Smoke/tos-bridge/internal/embedding"
	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/vector"
)

const mergePatternsCypher = `
UNWIND $patterns AS p
MERGE (n:Pattern {pattern_id: p.pattern_id})
ON CREATE SET n.created_at = datetime()
SET n.name = p.name,
    n.description = p.description,
    n.category = p.category,
    n.confidence = p.confidence,
    n.updated_at = datetime()
RETURN count(n) AS merged`

// Pattern is a reusable piece of operational knowledge to be mirrored into
// both stores.
type Pattern struct {
	ID          string
	Name        string
	Description string
	Category    string
	Confidence  float64
}

// Result reports the outcome of one synchronization run.
type Result struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	Synced    int    `json:"synced"`
	Failed    int    `json:"failed"`
	Batches   int    `json:"batches"`
	Timestamp string `json:"timestamp"`
}

// Syncer pushes pattern batches into the vector index and the knowledge
// graph. Batches are independent: a failed batch is counted and the run
// continues.
type Syncer struct {
	embedder   embedding.Embedder
	index      vector.Index
	graph      graph.Client
	collection string
	batchSize  int
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewSyncer creates a pattern synchronizer writing into the named vector
// collection.
func NewSyncer(embedder embedding.Embedder, index vector.Index, graphClient graph.Client, collection string, batchSize int, logger *slog.Logger) *Syncer {
	if collection == "" {
		collection = "patterns"
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		embedder:   embedder,
		index:      index,
		graph:      graphClient,
		collection: collection,
		batchSize:  batchSize,
		logger:     logger.With("component", "pattern-syncer"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Sync mirrors the given patterns into both stores. Patterns without an ID
// are assigned one, patterns without a name are rejected up front.
func (s *Syncer) Sync(ctx context.Context, patterns []Pattern) Result {
	if len(patterns) == 0 {
		return s.errorResult("no patterns to sync")
	}
	for i := range patterns {
		if strings.TrimSpace(patterns[i].Name) == "" {
			return s.errorResult(fmt.Sprintf("pattern %d has no name", i))
		}
		if patterns[i].ID == "" {
			patterns[i].ID = s.newID()
		}
		if patterns[i].Confidence < 0 {
			patterns[i].Confidence = 0
		} else if patterns[i].Confidence > 1 {
			patterns[i].Confidence = 1
		}
	}

	result := Result{Status: "success"}
	for start := 0; start < len(patterns); start += s.batchSize {
		end := start + s.batchSize
		if end > len(patterns) {
			end = len(patterns)
		}
		batch := patterns[start:end]
		result.Batches++

		if err := s.syncBatch(ctx, batch); err != nil {
			s.logger.Error("pattern batch failed",
				"batch", result.Batches,
				"size", len(batch),
				"error", err)
			result.Failed += len(batch)
			continue
		}
		result.Synced += len(batch)
	}

	if result.Synced == 0 {
		result.Status = "error"
		result.Error = "all pattern batches failed"
	}
	result.Timestamp = s.now().UTC().Format(time.RFC3339)
	return result
}

func (s *Syncer) syncBatch(ctx context.Context, batch []Pattern) error {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = embeddingText(p)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}

	points := make([]vector.Point, len(batch))
	for i, p := range batch {
		points[i] = vector.Point{
			ID:        p.ID,
			Embedding: vectors[i],
			Payload: map[string]string{
				"type":       "pattern",
				"name":       p.Name,
				"summary":    p.Description,
				"category":   p.Category,
				"confidence": fmt.Sprintf("%.2f", p.Confidence),
			},
		}
	}
	if err := s.index.UpsertBatch(ctx, s.collection, points); err != nil {
		return fmt.Errorf("vector upsert: %w", err)
	}

	rows := make([]map[string]any, len(batch))
	for i, p := range batch {
		rows[i] = map[string]any{
			"pattern_id":  p.ID,
			"name":        p.Name,
			"description": p.Description,
			"category":    p.Category,
			"confidence":  p.Confidence,
		}
	}
	if _, err := s.graph.Write(ctx, mergePatternsCypher, map[string]any{
		"patterns": rows,
	}); err != nil {
		return fmt.Errorf("graph merge: %w", err)
	}
	return nil
}

// embeddingText builds the text embedded for a pattern. Name and description
// together give the vector enough signal for short patterns.
func embeddingText(p Pattern) string {
	if p.Description == "" {
		return p.Name
	}
	return p.Name + ": " + p.Description
}

func (s *Syncer) errorResult(message string) Result {
	return Result{
		Status:    "error",
		Error:     message,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}
