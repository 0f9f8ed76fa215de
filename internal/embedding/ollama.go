package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// OllamaEmbedder generates embeddings through a local or remote Ollama server.
// It carries no resilience logic of its own; wrap it in a Gateway for breaker
// and retry behavior.
type OllamaEmbedder struct {
	client     *ollama.LLM
	model      string
	dimensions int
	timeout    time.Duration
}

// NewOllamaEmbedder creates an embedder backed by the Ollama embeddings API.
func NewOllamaEmbedder(cfg Config) (*OllamaEmbedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, types.WrapError(types.INVALID_CONFIG,
			"failed to create ollama client", err)
	}

	return &OllamaEmbedder{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		timeout:    cfg.Timeout,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vectors, err := e.client.CreateEmbedding(callCtx, []string{text})
	if err != nil {
		return nil, types.WrapError(types.EMBEDDING_FAILED,
			"ollama embedding request failed", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, types.NewError(types.EMBEDDING_FAILED,
			"ollama returned an empty embedding")
	}
	if len(vectors[0]) != e.dimensions {
		return nil, types.NewError(types.EMBEDDING_FAILED,
			fmt.Sprintf("embedding dimension mismatch: expected %d, got %d",
				e.dimensions, len(vectors[0])))
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings sequentially; see Embedder for the abort contract.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return vectors, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// Dimensions returns the configured vector width.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name.
func (e *OllamaEmbedder) Model() string {
	return e.model
}

// Health probes the upstream by embedding a trivial text.
func (e *OllamaEmbedder) Health(ctx context.Context) types.HealthStatus {
	start := time.Now()
	if _, err := e.Embed(ctx, "ping"); err != nil {
		return types.Unhealthy(err.Error()).WithLatency(time.Since(start))
	}
	return types.Healthy(fmt.Sprintf("ollama model %s reachable", e.model)).
		WithLatency(time.Since(start))
}
