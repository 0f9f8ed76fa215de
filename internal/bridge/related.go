package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/types"
)

const sourceLookupCypher = `
MATCH (d:Document {external_id: $external_id})
RETURN d.title AS title, d.collection AS collection`

// traversalCypherFmt takes the sanitized edge-type filter and the graph hop
// bound. Depth is counted in document hops: one document hop is a two-edge
// Document-Entity-Document step, so maxDepth documents away means 2*maxDepth
// graph hops.
const traversalCypherFmt = `
MATCH path = (source:Document {external_id: $external_id})
      -[:%s*2..%d]-(related:Document)
WHERE source <> related
WITH related, path,
     [node IN nodes(path) WHERE node:Entity | node.name] AS shared_entities,
     [rel IN relationships(path) | type(rel)] AS rel_types
RETURN related.external_id AS external_id,
       related.title AS title,
       related.summary AS summary,
       related.collection AS collection,
       related.path AS path,
       shared_entities,
       rel_types,
       length(path) AS hops
ORDER BY hops, size(shared_entities) DESC
LIMIT $scan_limit`

// Traverser finds documents structurally related to a known document through
// a bounded-depth graph walk. It depends only on the graph store.
type Traverser struct {
	graph  graph.Client
	logger *slog.Logger

	now func() time.Time
}

// NewTraverser creates a related-document traversal engine.
func NewTraverser(graphClient graph.Client, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Traverser{
		graph:  graphClient,
		logger: logger.With("component", "traverser"),
		now:    time.Now,
	}
}

// FindRelated walks from the source document through entity-sharing paths to
// other documents. The source must exist; a missing document fails with a
// not-found message before any traversal query runs.
func (t *Traverser) FindRelated(ctx context.Context, req RelatedRequest) RelatedResult {
	if req.ExternalID == "" {
		return t.errorResult("external_id is required")
	}

	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 2
	} else if maxDepth > 3 {
		maxDepth = 3
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	relFilter, err := sanitizeRelationFilter(req.RelationshipTypes)
	if err != nil {
		return t.errorResult(err.Error())
	}

	sourceResult, err := t.graph.Read(ctx, sourceLookupCypher, map[string]any{
		"external_id": req.ExternalID,
	})
	if err != nil {
		return t.errorResult(err.Error())
	}
	sourceRecord, ok := sourceResult.Single()
	if !ok {
		notFound := types.NewError(types.DOCUMENT_NOT_FOUND,
			fmt.Sprintf("document not found: %s", req.ExternalID))
		return t.errorResult(notFound.Message)
	}

	source := &SourceDocument{
		ExternalID: req.ExternalID,
		Title:      asString(sourceRecord["title"]),
		Collection: asString(sourceRecord["collection"]),
	}

	cypher := fmt.Sprintf(traversalCypherFmt, relFilter, 2*maxDepth)
	// Scan wider than the response limit: multiple paths to the same target
	// produce multiple rows, deduplicated below.
	traversal, err := t.graph.Read(ctx, cypher, map[string]any{
		"external_id": req.ExternalID,
		"scan_limit":  limit * 4,
	})
	if err != nil {
		return t.errorResult(err.Error())
	}

	// Rows arrive ordered by hop count then shared-entity count; keep the
	// best row per target document.
	seen := make(map[string]struct{})
	related := make([]RelatedDocument, 0, limit)
	for _, record := range traversal.Records {
		externalID := asString(record["external_id"])
		if externalID == "" || externalID == req.ExternalID {
			continue
		}
		if _, dup := seen[externalID]; dup {
			continue
		}
		seen[externalID] = struct{}{}

		hops := asInt(record["hops"])
		doc := RelatedDocument{
			ExternalID:     externalID,
			Title:          asString(record["title"]),
			Summary:        asString(record["summary"]),
			Collection:     asString(record["collection"]),
			Path:           asString(record["path"]),
			Distance:       (hops + 1) / 2,
			SharedEntities: asStringSlice(record["shared_entities"]),
		}
		if req.IncludePaths {
			doc.RelationshipTypes = asStringSlice(record["rel_types"])
		}
		related = append(related, doc)

		if len(related) == limit {
			break
		}
	}

	// Re-assert ordering locally so truncation and deduplication cannot
	// disturb it: distance ascending, then shared-entity count descending.
	sort.SliceStable(related, func(i, j int) bool {
		if related[i].Distance != related[j].Distance {
			return related[i].Distance < related[j].Distance
		}
		return len(related[i].SharedEntities) > len(related[j].SharedEntities)
	})

	return RelatedResult{
		Status:    StatusSuccess,
		Source:    source,
		Related:   related,
		Total:     len(related),
		MaxDepth:  maxDepth,
		Timestamp: timestamp(t.now),
	}
}

func (t *Traverser) errorResult(message string) RelatedResult {
	return RelatedResult{
		Status:    StatusError,
		Error:     message,
		Related:   []RelatedDocument{},
		Timestamp: timestamp(t.now),
	}
}
