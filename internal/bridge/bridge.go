package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/config"
	"github.com/No-Smoke/tos-bridge/internal/embedding"
	"github.com/No-Smoke/tos-bridge/internal/graph"
	"github.com/No-Smoke/tos-bridge/internal/health"
	"github.com/No-Smoke/tos-bridge/internal/pattern"
	"github.com/No-Smoke/tos-bridge/internal/vector"
)

// Service wires the embedding gateway, both stores, and every engine built
// on top of them into one ready-to-use unit.
type Service struct {
	Embedder  *embedding.Gateway
	Index     vector.Index
	Graph     graph.Client
	Writer    *Writer
	Searcher  *Searcher
	Traverser *Traverser
	Syncer    *pattern.Syncer
	Health    *health.Checker

	Search config.SearchConfig

	logger *slog.Logger
}

// NewService assembles a Service from configuration and connects the graph
// store. The embedding provider is probed lazily on first use.
func NewService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	embCfg := embedding.Config{
		ServerURL:        cfg.Embedding.ServerURL,
		Model:            cfg.Embedding.Model,
		Dimensions:       cfg.Embedding.Dimensions,
		Timeout:          cfg.Embedding.Timeout,
		MaxRetries:       cfg.Embedding.MaxRetries,
		FailureThreshold: cfg.Embedding.FailureThreshold,
		ResetTimeout:     cfg.Embedding.ResetTimeout,
		CacheTTL:         cfg.Embedding.CacheTTL,
	}
	upstream, err := embedding.NewOllamaEmbedder(embCfg)
	if err != nil {
		return nil, err
	}
	breaker := embedding.NewCircuitBreaker(embCfg.FailureThreshold, embCfg.ResetTimeout)
	gateway := embedding.NewGateway(upstream, breaker, embCfg, logger)

	index, err := vector.NewChromemIndex(vector.Config{
		Path:     cfg.Vector.Path,
		Compress: cfg.Vector.Compress,
	})
	if err != nil {
		return nil, err
	}

	graphClient, err := graph.NewNeo4jClient(graph.Config{
		URI:                     cfg.Graph.URI,
		Username:                cfg.Graph.Username,
		Password:                cfg.Graph.Password,
		Database:                cfg.Graph.Database,
		MaxConnectionPoolSize:   cfg.Graph.MaxPoolSize,
		ConnectionTimeout:       cfg.Graph.ConnectTimeout,
		MaxTransactionRetryTime: cfg.Graph.QueryTimeout,
	})
	if err != nil {
		return nil, err
	}
	if err := graphClient.Connect(ctx); err != nil {
		return nil, err
	}

	checker := health.NewChecker(10*time.Second, logger)
	checker.Register("embedder", gateway)
	checker.Register("vector", index)
	checker.Register("graph", graphClient)

	return &Service{
		Embedder:  gateway,
		Index:     index,
		Graph:     graphClient,
		Writer:    NewWriter(gateway, index, graphClient, logger),
		Searcher:  NewSearcher(gateway, index, graphClient, logger),
		Traverser: NewTraverser(graphClient, logger),
		Syncer:    pattern.NewSyncer(gateway, index, graphClient, cfg.Sync.Collection, cfg.Sync.BatchSize, logger),
		Health:    checker,
		Search:    cfg.Search,
		logger:    logger.With("component", "bridge"),
	}, nil
}

// NewSearchRequest applies the configured retrieval defaults to a query.
func (s *Service) NewSearchRequest(query, collection string) SearchRequest {
	req := DefaultSearchRequest(query, collection)
	if s.Search.DefaultLimit > 0 {
		req.Limit = s.Search.DefaultLimit
	}
	if s.Search.RelationshipBoost > 0 {
		req.RelationshipBoost = s.Search.RelationshipBoost
	}
	return req
}

// Close releases both store connections. Errors are logged, not returned:
// shutdown keeps going.
func (s *Service) Close(ctx context.Context) {
	if err := s.Graph.Close(ctx); err != nil {
		s.logger.Warn("closing graph store", "error", err)
	}
	if err := s.Index.Close(); err != nil {
		s.logger.Warn("closing vector index", "error", err)
	}
}
