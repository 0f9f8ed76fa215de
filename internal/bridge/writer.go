package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/No-Smoke/tos-bridge/internal/embedding"
	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/types"
	"github.com/No-Smoke/tos-bridge/internal/vector"
)

// summaryPrefixLength bounds the default summary taken from the document text.
const summaryPrefixLength = 200

const createDocumentCypher = `
CREATE (d:Document {
    external_id: $external_id,
    collection: $collection,
    title: $title,
    path: $path,
    summary: $summary,
    created_at: datetime(),
    updated_at: datetime()
})
RETURN elementId(d) AS node_id`

const mergeEntityCypher = `
MATCH (d:Document {external_id: $external_id})
MERGE (e:Entity {name: $entity_name})
ON CREATE SET e.type = $entity_type, e.created_at = datetime()
MERGE (d)-[r:MENTIONS]->(e)
SET r.importance = $importance, r.created_at = datetime()`

// mergeRelationCypherFmt takes the sanitized relation type; edge types cannot
// be parameterized in Cypher, which is why sanitization happens first.
const mergeRelationCypherFmt = `
MATCH (d:Document {external_id: $external_id})
MERGE (t:Entity {name: $target})
ON CREATE SET t.created_at = datetime()
MERGE (d)-[r:` + "%s" + `]->(t)
SET r.context = $context, r.created_at = datetime()`

// Writer coordinates a document's dual write: the vector point and the graph
// subgraph commit as one logical operation with saga semantics. Embedding and
// the Document node are structural preconditions and abort the call; each
// entity and relationship write commits independently with no rollback, and
// the result reports exactly which steps succeeded.
type Writer struct {
	embedder embedding.Embedder
	index    vector.Index
	graph    graph.Client
	logger   *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewWriter creates a dual-store write coordinator.
func NewWriter(embedder embedding.Embedder, index vector.Index, graphClient graph.Client, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		embedder: embedder,
		index:    index,
		graph:    graphClient,
		logger:   logger.With("component", "writer"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// StoreDocument embeds text and writes the document to both stores.
//
// Order matters: the embedding is generated before either store is touched, so
// an embedding failure leaves no partial write anywhere. The vector point
// commits before the graph subgraph; a graph failure after that point is
// reported, not rolled back.
func (w *Writer) StoreDocument(ctx context.Context, req StoreRequest) StoreResult {
	if req.Text == "" || req.Collection == "" || req.Title == "" {
		return w.errorResult("text, collection and title are required")
	}

	vec, err := w.embedder.Embed(ctx, req.Text)
	if err != nil {
		w.logger.Error("embedding failed, aborting store", "error", err)
		return w.errorResult(err.Error())
	}

	externalID := w.newID()
	summary := req.Summary
	if summary == "" {
		summary = prefixRunes(req.Text, summaryPrefixLength)
	}

	entities := dedupeEntities(req.Entities)
	entityNames := make([]string, 0, len(entities))
	for _, e := range entities {
		entityNames = append(entityNames, e.Name)
	}

	payload := map[string]string{
		"title":     req.Title,
		"path":      req.Path,
		"summary":   summary,
		"entities":  encodeNames(entityNames),
		"synced_at": timestamp(w.now),
	}
	// Caller metadata merges last: caller keys shadow built-ins.
	for k, v := range req.Metadata {
		payload[k] = v
	}

	err = w.index.Upsert(ctx, req.Collection, vector.Point{
		ID:        externalID,
		Embedding: vec,
		Payload:   payload,
	})
	if err != nil {
		w.logger.Error("vector upsert failed", "external_id", externalID, "error", err)
		return w.errorResult(err.Error())
	}

	docResult, err := w.graph.Write(ctx, createDocumentCypher, map[string]any{
		"external_id": externalID,
		"collection":  req.Collection,
		"title":       req.Title,
		"path":        req.Path,
		"summary":     summary,
	})
	if err != nil {
		// The vector point is already committed; the stores reconcile through
		// the external_id correlation key.
		w.logger.Error("document node creation failed after vector commit",
			"external_id", externalID, "error", err)
		return w.errorResult(
			types.WrapError(types.GRAPH_STORE_FAILED,
				"document node creation failed (vector point committed)", err).Error())
	}

	result := StoreResult{
		Status:     StatusSuccess,
		ExternalID: externalID,
		Collection: req.Collection,
		Timestamp:  timestamp(w.now),
	}
	if record, ok := docResult.Single(); ok {
		result.GraphNodeID = asString(record["node_id"])
	}

	for _, entity := range entities {
		importance := entity.Importance
		if importance <= 0 {
			importance = 0.5
		} else if importance > 1 {
			importance = 1
		}
		entityType := entity.Type
		if entityType == "" {
			entityType = "concept"
		}

		_, err := w.graph.Write(ctx, mergeEntityCypher, map[string]any{
			"external_id": externalID,
			"entity_name": entity.Name,
			"entity_type": entityType,
			"importance":  importance,
		})
		if err != nil {
			w.logger.Warn("entity write failed, continuing",
				"external_id", externalID, "entity", entity.Name, "error", err)
			result.EntitiesFailed++
			continue
		}
		result.EntitiesCreated++
	}

	for _, rel := range req.Relations {
		relType, err := SanitizeRelationType(rel.Type)
		if err != nil {
			w.logger.Warn("relationship type rejected",
				"external_id", externalID, "type", rel.Type, "error", err)
			result.RelationshipsFailed++
			continue
		}
		if rel.Target == "" {
			result.RelationshipsFailed++
			continue
		}

		cypher := relationCypher(relType)
		_, err = w.graph.Write(ctx, cypher, map[string]any{
			"external_id": externalID,
			"target":      rel.Target,
			"context":     rel.Context,
		})
		if err != nil {
			w.logger.Warn("relationship write failed, continuing",
				"external_id", externalID, "target", rel.Target, "error", err)
			result.RelationshipsFailed++
			continue
		}
		result.RelationshipsCreated++
	}

	result.Partial = result.EntitiesFailed > 0 || result.RelationshipsFailed > 0
	return result
}

func (w *Writer) errorResult(message string) StoreResult {
	return StoreResult{
		Status:    StatusError,
		Error:     message,
		Timestamp: timestamp(w.now),
	}
}

// dedupeEntities keeps the first occurrence of each entity name, preserving
// order. The graph MERGE is idempotent anyway; deduplication keeps the
// reported entities_created equal to the number of distinct names.
func dedupeEntities(entities []EntityInput) []EntityInput {
	seen := make(map[string]struct{}, len(entities))
	out := make([]EntityInput, 0, len(entities))
	for _, e := range entities {
		if e.Name == "" {
			continue
		}
		if _, dup := seen[e.Name]; dup {
			continue
		}
		seen[e.Name] = struct{}{}
		out = append(out, e)
	}
	return out
}

// prefixRunes returns a rune-safe prefix of s.
func prefixRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// encodeNames serializes entity names as a JSON array for the string-valued
// vector payload.
func encodeNames(names []string) string {
	data, err := json.Marshal(names)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// relationCypher builds the typed-edge merge query. sanitizedType passed the
// allow-list; this is the only place a caller-influenced string reaches query
// text.
func relationCypher(sanitizedType string) string {
	return fmt.Sprintf(mergeRelationCypherFmt, sanitizedType)
}
