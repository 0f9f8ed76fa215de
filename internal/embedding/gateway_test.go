package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

func newTestGateway(upstream Embedder, cfg Config) (*Gateway, *[]time.Duration) {
	breaker := NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	gw := NewGateway(upstream, breaker, cfg, nil)

	sleeps := &[]time.Duration{}
	gw.sleep = func(ctx context.Context, d time.Duration) error {
		*sleeps = append(*sleeps, d)
		return nil
	}
	return gw, sleeps
}

func TestGateway_SucceedsOnThirdAttempt(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder()
	mock.SetEmbedding("hello", []float32{0.5, 0.6, 0.7})
	mock.FailWith(errUpstream, 2)

	cfg := DefaultConfig()
	gw, sleeps := newTestGateway(mock, cfg)

	vec, err := gw.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.6, 0.7}, vec)
	assert.Equal(t, 3, mock.CallCount())

	// Backoff between attempts is 2^attemptIndex seconds: 1s then 2s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *sleeps)
}

func TestGateway_ExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder()
	mock.FailWith(errUpstream, -1)

	cfg := DefaultConfig()
	gw, sleeps := newTestGateway(mock, cfg)

	_, err := gw.Embed(ctx, "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.EMBEDDING_UNAVAILABLE, "")))
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.ErrorIs(t, err, errUpstream)

	// Exactly maxRetries attempts, with sleeps only between them.
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, *sleeps, 2)
}

func TestGateway_OpenBreakerShortCircuitsUpstream(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder()
	mock.FailWith(errUpstream, -1)

	cfg := DefaultConfig()
	gw, _ := newTestGateway(mock, cfg)

	// First call burns 3 attempts and opens the breaker.
	_, err := gw.Embed(ctx, "first")
	require.Error(t, err)
	require.Equal(t, BreakerOpen, gw.BreakerState())
	require.Equal(t, 3, mock.CallCount())

	// With the breaker open, retries are against the breaker itself: the
	// upstream is never contacted again.
	_, err = gw.Embed(ctx, "second")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.EMBEDDING_UNAVAILABLE, "")))
	assert.True(t, errors.Is(err, types.NewError(types.CIRCUIT_OPEN, "")))
	assert.Equal(t, 3, mock.CallCount())
}

func TestGateway_EmbedBatchAbortsAtFailure(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder()
	mock.SetEmbedding("a", []float32{1, 0, 0})
	mock.SetEmbedding("b", []float32{0, 1, 0})

	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	gw, _ := newTestGateway(mock, cfg)

	// Succeed for a and b, then fail forever.
	vecs, err := gw.EmbedBatch(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)

	mock.FailWith(errUpstream, -1)
	vecs, err = gw.EmbedBatch(ctx, []string{"c", "d"})
	require.Error(t, err)
	assert.Empty(t, vecs)
}

func TestGateway_EmbedBatchReturnsPartialVectors(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.MaxRetries = 1

	// Succeed twice, then fail: the two computed vectors come back
	// alongside the error.
	count := 0
	seq := &funcEmbedder{
		embed: func(ctx context.Context, text string) ([]float32, error) {
			count++
			if count > 2 {
				return nil, errUpstream
			}
			return []float32{float32(count)}, nil
		},
		dims:  1,
		model: "seq",
	}

	gw, _ := newTestGateway(seq, cfg)
	results, err := gw.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.Error(t, err)
	assert.Equal(t, [][]float32{{1}, {2}}, results)
}

func TestGateway_CacheSkipsUpstream(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEmbedder()

	cfg := DefaultConfig()
	cfg.CacheTTL = time.Minute
	gw, _ := newTestGateway(mock, cfg)

	_, err := gw.Embed(ctx, "cached text")
	require.NoError(t, err)
	_, err = gw.Embed(ctx, "cached text")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.CallCount())
}

func TestGateway_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := NewMockEmbedder()
	mock.FailWith(errUpstream, -1)

	cfg := DefaultConfig()
	breaker := NewCircuitBreaker(cfg.FailureThreshold, cfg.ResetTimeout)
	gw := NewGateway(mock, breaker, cfg, nil)
	gw.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := gw.Embed(ctx, "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.NewError(types.EMBEDDING_UNAVAILABLE, "")))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

// funcEmbedder adapts a bare function to the Embedder interface for scripting
// per-call behavior in tests.
type funcEmbedder struct {
	embed func(ctx context.Context, text string) ([]float32, error)
	dims  int
	model string
}

func (f *funcEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embed(ctx, text)
}

func (f *funcEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := f.embed(ctx, text)
		if err != nil {
			return vectors, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

func (f *funcEmbedder) Dimensions() int { return f.dims }
func (f *funcEmbedder) Model() string   { return f.model }
func (f *funcEmbedder) Health(ctx context.Context) types.HealthStatus {
	return types.Healthy("func embedder")
}
