package bridge

import (
	"time"
)

// Status is the outcome field carried by every public operation result.
// The boundary contract is "always returns a result object": callers inspect
// Status rather than catching errors.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// EntityInput names a concept a document mentions. Entity identity is the
// case-sensitive name; re-referencing the same name merges onto the existing
// node rather than duplicating it.
type EntityInput struct {
	Name string `json:"name"`

	// Type defaults to "concept" when empty.
	Type string `json:"type,omitempty"`

	// Importance weights the MENTIONS edge in [0,1]. Values <= 0 fall back
	// to the default 0.5.
	Importance float64 `json:"importance,omitempty"`
}

// RelationshipInput is a typed edge from the stored document to a target
// entity. Type is caller-supplied and passes through strict sanitization
// before reaching any query; it defaults to "REFERENCES" when empty.
type RelationshipInput struct {
	Target  string `json:"target"`
	Type    string `json:"type,omitempty"`
	Context string `json:"context,omitempty"`
}

// StoreRequest describes a document to persist in both stores.
type StoreRequest struct {
	Text       string              `json:"text"`
	Collection string              `json:"collection"`
	Title      string              `json:"title"`
	Path       string              `json:"path,omitempty"`
	Summary    string              `json:"summary,omitempty"`
	Metadata   map[string]string   `json:"metadata,omitempty"`
	Entities   []EntityInput       `json:"entities,omitempty"`
	Relations  []RelationshipInput `json:"relationships,omitempty"`
}

// StoreResult reports the outcome of a dual-store write. The write is a saga:
// entity and relationship sub-writes commit independently, so the counts
// describe exactly which steps succeeded.
type StoreResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	ExternalID  string `json:"external_id,omitempty"`
	GraphNodeID string `json:"graph_node_id,omitempty"`
	Collection  string `json:"collection,omitempty"`

	EntitiesCreated      int `json:"entities_created"`
	RelationshipsCreated int `json:"relationships_created"`
	EntitiesFailed       int `json:"entities_failed,omitempty"`
	RelationshipsFailed  int `json:"relationships_failed,omitempty"`

	// Partial is true when some but not all sub-writes succeeded.
	Partial bool `json:"partial,omitempty"`

	Timestamp string `json:"timestamp"`
}

// SearchRequest describes a hybrid retrieval query.
type SearchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`

	// Limit is the maximum number of results; defaults to 10.
	Limit int `json:"limit,omitempty"`

	// RelationshipBoost is the score boost for graph-connected documents.
	RelationshipBoost float64 `json:"relationship_boost,omitempty"`

	// MaxDepth is accepted for forward compatibility; hybrid search expands
	// through depth-1 entity sharing only. Deeper traversal belongs to
	// FindRelated.
	MaxDepth int `json:"max_depth,omitempty"`

	// IncludeGraphContext attaches connected entity names to each result.
	IncludeGraphContext bool `json:"include_graph_context,omitempty"`
}

// DefaultSearchRequest returns a SearchRequest with the stock defaults
// (limit 10, relationship boost 0.2, depth 2, graph context on).
func DefaultSearchRequest(query, collection string) SearchRequest {
	return SearchRequest{
		Query:               query,
		Collection:          collection,
		Limit:               10,
		RelationshipBoost:   0.2,
		MaxDepth:            2,
		IncludeGraphContext: true,
	}
}

// SearchCandidate is one ranked hybrid search result. Candidates are
// constructed per search call and never persisted.
type SearchCandidate struct {
	ExternalID string `json:"external_id"`

	// Score is the raw evidence score: store-native vector similarity for
	// seeded candidates, a synthetic bounded score for graph-discovered ones.
	Score float64 `json:"score"`

	// BoostedScore is Score plus the graph-derived boost; results are ranked
	// by it.
	BoostedScore float64 `json:"boosted_score"`

	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`

	// ConnectedEntities are entity names shared with the query context.
	ConnectedEntities []string `json:"connected_entities,omitempty"`

	// DiscoveredViaGraph is true when the candidate entered the result set
	// only through graph expansion and never appeared in the raw vector hits.
	DiscoveredViaGraph bool `json:"discovered_via_graph"`
}

// SearchResult is the envelope returned by hybrid search.
type SearchResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	Query      string            `json:"query,omitempty"`
	Collection string            `json:"collection,omitempty"`
	Results    []SearchCandidate `json:"results"`
	Total      int               `json:"total"`

	// GraphExpanded is true when any returned candidate was graph-discovered.
	GraphExpanded bool `json:"graph_expanded"`

	Timestamp string `json:"timestamp"`
}

// RelatedRequest describes a bounded graph walk from a known document.
type RelatedRequest struct {
	ExternalID string `json:"external_id"`

	// RelationshipTypes filters the traversed edge types; empty traverses
	// MENTIONS and REFERENCES.
	RelationshipTypes []string `json:"relationship_types,omitempty"`

	// MaxDepth is the traversal depth in document hops, bounded to [1,3];
	// defaults to 2.
	MaxDepth int `json:"max_depth,omitempty"`

	// Limit is the maximum number of related documents; defaults to 10.
	Limit int `json:"limit,omitempty"`

	// IncludePaths attaches the traversed relationship-type sequence.
	IncludePaths bool `json:"include_paths,omitempty"`
}

// SourceDocument identifies the traversal origin.
type SourceDocument struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// RelatedDocument is one structurally related document found by traversal.
type RelatedDocument struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
	Summary    string `json:"summary,omitempty"`
	Collection string `json:"collection,omitempty"`
	Path       string `json:"path,omitempty"`

	// Distance is the document hop count: 1 means one shared entity away.
	Distance int `json:"distance"`

	SharedEntities []string `json:"shared_entities,omitempty"`

	// RelationshipTypes is the traversed edge-type sequence, present when
	// the request asked for paths.
	RelationshipTypes []string `json:"relationship_types,omitempty"`
}

// RelatedResult is the envelope returned by related-document traversal.
type RelatedResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	Source   *SourceDocument   `json:"source,omitempty"`
	Related  []RelatedDocument `json:"related_documents"`
	Total    int               `json:"total"`
	MaxDepth int               `json:"max_depth,omitempty"`

	Timestamp string `json:"timestamp"`
}

func timestamp(now func() time.Time) string {
	return now().UTC().Format(time.RFC3339)
}
