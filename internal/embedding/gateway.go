package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Gateway is the resilient embedding client used by every component that needs
// a vector. It layers retry with exponential backoff outside a shared circuit
// breaker, and optionally caches computed embeddings by (model, text).
//
// Each retry attempt passes through the breaker, so an open breaker is retried
// against. That can spend an attempt on a CIRCUIT_OPEN fast-fail, but it is
// what lets a retry loop probe the half-open transition without a background
// timer.
type Gateway struct {
	upstream   Embedder
	breaker    *CircuitBreaker
	maxRetries int
	cache      *gocache.Cache
	logger     *slog.Logger

	// sleep is injectable for tests; it must honor context cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewGateway wraps upstream with the given shared breaker and the retry policy
// from cfg. The breaker is owned by the composition root so all gateways in the
// process observe the same state.
func NewGateway(upstream Embedder, breaker *CircuitBreaker, cfg Config, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}

	var cache *gocache.Cache
	if cfg.CacheTTL > 0 {
		cache = gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	}

	return &Gateway{
		upstream:   upstream,
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		cache:      cache,
		logger:     logger.With("component", "embedding-gateway"),
		sleep:      sleepCtx,
	}
}

// Embed generates an embedding for text, retrying up to maxRetries attempts
// with exponential backoff (1s, 2s, 4s). On exhaustion the underlying error is
// surfaced as EMBEDDING_UNAVAILABLE with the attempt count.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := g.upstream.Model() + "\x00" + text
	if g.cache != nil {
		if cached, ok := g.cache.Get(cacheKey); ok {
			return cached.([]float32), nil
		}
	}

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		vec, err := g.breaker.Call(ctx, func(ctx context.Context) ([]float32, error) {
			return g.upstream.Embed(ctx, text)
		})
		if err == nil {
			if attempt > 0 {
				g.logger.Info("embedding succeeded on retry", "attempt", attempt)
			}
			if g.cache != nil {
				g.cache.SetDefault(cacheKey, vec)
			}
			return vec, nil
		}
		lastErr = err

		if attempt == g.maxRetries-1 {
			break
		}

		// Exponential backoff: 1s, 2s, 4s. The wait holds no locks, so
		// concurrent callers proceed independently.
		wait := time.Duration(1<<uint(attempt)) * time.Second
		g.logger.Warn("embedding attempt failed, retrying",
			"attempt", attempt+1, "wait", wait, "error", err)
		if sleepErr := g.sleep(ctx, wait); sleepErr != nil {
			return nil, types.WrapError(types.EMBEDDING_UNAVAILABLE,
				"embedding cancelled during backoff", sleepErr)
		}
	}

	g.logger.Error("embedding failed after all attempts",
		"attempts", g.maxRetries, "error", lastErr)
	return nil, types.WrapError(types.EMBEDDING_UNAVAILABLE,
		fmt.Sprintf("embedding failed after %d attempts", g.maxRetries), lastErr)
}

// EmbedBatch embeds texts sequentially through Embed. A failure aborts the
// batch at that item, returning the vectors computed so far plus the failure.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := g.Embed(ctx, text)
		if err != nil {
			return vectors, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// Dimensions returns the upstream vector width.
func (g *Gateway) Dimensions() int {
	return g.upstream.Dimensions()
}

// Model returns the upstream model name.
func (g *Gateway) Model() string {
	return g.upstream.Model()
}

// Health reports degraded while the breaker is open, otherwise defers to the upstream.
func (g *Gateway) Health(ctx context.Context) types.HealthStatus {
	if g.breaker.State() == BreakerOpen {
		return types.Degraded("embedding circuit breaker open")
	}
	return g.upstream.Health(ctx)
}

// BreakerState exposes the shared breaker state for observability.
func (g *Gateway) BreakerState() BreakerState {
	return g.breaker.State()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
