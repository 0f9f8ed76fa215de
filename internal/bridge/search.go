package bridge

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/embedding"
	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/vector"
)

// graphScoreCeiling caps the synthetic score of graph-only candidates below
// the maximum attainable vector similarity.
const graphScoreCeiling = 0.9

// perEntityBoost is the seeded-candidate boost contributed by each connected
// entity, saturating at the request's relationship boost.
const perEntityBoost = 0.05

const connectedEntitiesCypher = `
MATCH (d:Document)-[r:MENTIONS|REFERENCES]->(e:Entity)
WHERE d.external_id IN $external_ids
RETURN d.external_id AS doc_id,
       collect(DISTINCT e.name) AS entities`

const graphExpansionCypher = `
MATCH (d:Document)-[r:MENTIONS|REFERENCES]->(e:Entity)
WHERE e.name IN $entity_names
  AND d.collection = $collection
  AND NOT d.external_id IN $exclude_ids
WITH d, collect(DISTINCT e.name) AS shared_entities,
     count(DISTINCT e) AS entity_count
ORDER BY entity_count DESC
LIMIT $limit
RETURN d.external_id AS external_id,
       d.title AS title,
       d.summary AS summary,
       shared_entities,
       entity_count`

// Searcher fuses vector-similarity evidence with graph-connectivity evidence
// into a single ranked result list, including graph-only expansion beyond the
// vector index's top-K.
type Searcher struct {
	embedder embedding.Embedder
	index    vector.Index
	graph    graph.Client
	logger   *slog.Logger

	now func() time.Time
}

// NewSearcher creates a hybrid retrieval engine.
func NewSearcher(embedder embedding.Embedder, index vector.Index, graphClient graph.Client, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{
		embedder: embedder,
		index:    index,
		graph:    graphClient,
		logger:   logger.With("component", "searcher"),
		now:      time.Now,
	}
}

// Search embeds the query, merges vector hits with graph-derived candidates,
// and reranks. A failure in either store fails the whole call: the engine
// never mixes a failed graph phase with a successful vector phase.
func (s *Searcher) Search(ctx context.Context, req SearchRequest) SearchResult {
	if req.Query == "" || req.Collection == "" {
		return s.errorResult("query and collection are required")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	boost := req.RelationshipBoost
	if boost < 0 {
		boost = 0
	}

	queryVec, err := s.embedder.Embed(ctx, req.Query)
	if err != nil {
		return s.errorResult(err.Error())
	}

	// Oversample 2x so graph boosting can reorder without starving the list.
	hits, err := s.index.Query(ctx, req.Collection, queryVec, 2*limit)
	if err != nil {
		return s.errorResult(err.Error())
	}

	if len(hits) == 0 {
		return SearchResult{
			Status:     StatusSuccess,
			Query:      req.Query,
			Collection: req.Collection,
			Results:    []SearchCandidate{},
			Total:      0,
			Timestamp:  timestamp(s.now),
		}
	}

	candidates := make(map[string]*SearchCandidate, len(hits))
	seededIDs := make([]string, 0, len(hits))
	for _, hit := range hits {
		candidates[hit.ID] = &SearchCandidate{
			ExternalID:   hit.ID,
			Score:        float64(hit.Score),
			BoostedScore: float64(hit.Score),
			Title:        hit.Payload["title"],
			Summary:      hit.Payload["summary"],
		}
		seededIDs = append(seededIDs, hit.ID)
	}

	// One batched lookup for all seeded documents' entity connections.
	entityResult, err := s.graph.Read(ctx, connectedEntitiesCypher, map[string]any{
		"external_ids": seededIDs,
	})
	if err != nil {
		return s.errorResult(err.Error())
	}

	docEntities := make(map[string][]string)
	entityUnion := make(map[string]struct{})
	for _, record := range entityResult.Records {
		docID := asString(record["doc_id"])
		entities := asStringSlice(record["entities"])
		docEntities[docID] = entities
		for _, name := range entities {
			entityUnion[name] = struct{}{}
		}
	}

	if len(entityUnion) > 0 {
		entityNames := make([]string, 0, len(entityUnion))
		for name := range entityUnion {
			entityNames = append(entityNames, name)
		}
		sort.Strings(entityNames)

		expansion, err := s.graph.Read(ctx, graphExpansionCypher, map[string]any{
			"entity_names": entityNames,
			"collection":   req.Collection,
			"exclude_ids":  seededIDs,
			"limit":        limit,
		})
		if err != nil {
			return s.errorResult(err.Error())
		}

		for _, record := range expansion.Records {
			externalID := asString(record["external_id"])
			if externalID == "" {
				continue
			}
			sharedCount := asInt(record["entity_count"])
			rawScore := math.Min(graphScoreCeiling, 0.5+0.1*float64(sharedCount))

			candidates[externalID] = &SearchCandidate{
				ExternalID:         externalID,
				Score:              rawScore,
				BoostedScore:       rawScore + boost,
				Title:              asString(record["title"]),
				Summary:            asString(record["summary"]),
				ConnectedEntities:  asStringSlice(record["shared_entities"]),
				DiscoveredViaGraph: true,
			}
		}
	}

	// Connectivity boost for the seeded candidates; it never lowers a
	// vector-sourced score and saturates at the relationship boost.
	for docID, entities := range docEntities {
		if candidate, ok := candidates[docID]; ok && !candidate.DiscoveredViaGraph {
			candidate.BoostedScore += math.Min(boost, perEntityBoost*float64(len(entities)))
			candidate.ConnectedEntities = entities
		}
	}

	ranked := make([]SearchCandidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, *c)
	}
	// Boosted score descending; externalId ascending keeps equal scores
	// deterministic.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].BoostedScore != ranked[j].BoostedScore {
			return ranked[i].BoostedScore > ranked[j].BoostedScore
		}
		return ranked[i].ExternalID < ranked[j].ExternalID
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	expandedInFinal := false
	for i := range ranked {
		ranked[i].Score = round4(ranked[i].Score)
		ranked[i].BoostedScore = round4(ranked[i].BoostedScore)
		if !req.IncludeGraphContext {
			ranked[i].ConnectedEntities = nil
		}
		if ranked[i].DiscoveredViaGraph {
			expandedInFinal = true
		}
	}

	return SearchResult{
		Status:        StatusSuccess,
		Query:         req.Query,
		Collection:    req.Collection,
		Results:       ranked,
		Total:         len(ranked),
		GraphExpanded: expandedInFinal,
		Timestamp:     timestamp(s.now),
	}
}

func (s *Searcher) errorResult(message string) SearchResult {
	return SearchResult{
		Status:    StatusError,
		Error:     message,
		Results:   []SearchCandidate{},
		Timestamp: timestamp(s.now),
	}
}
