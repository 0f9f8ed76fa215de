package embedding

import (
	"context"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Embedder generates embedding vectors from text content.
// Implementations must be thread-safe for concurrent access.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts sequentially.
	// The upstream provider has no native batching, so a failure on any item
	// aborts the batch at that item, returning the vectors computed so far
	// together with the failure.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of embedding vectors.
	Dimensions() int

	// Model returns the name of the embedding model being used.
	Model() string

	// Health returns the health status of the embedder.
	Health(ctx context.Context) types.HealthStatus
}

// Config holds configuration for the embedding gateway and its upstream provider.
type Config struct {
	// ServerURL is the base URL of the Ollama server.
	ServerURL string `yaml:"server_url" json:"server_url" mapstructure:"server_url" validate:"required,url"`

	// Model is the embedding model to use, e.g. "mxbai-embed-large" (1024 dims).
	Model string `yaml:"model" json:"model" mapstructure:"model" validate:"required"`

	// Dimensions is the vector width produced by Model. It must stay consistent
	// per collection; mixing widths corrupts nearest-neighbor search.
	Dimensions int `yaml:"dimensions" json:"dimensions" mapstructure:"dimensions" validate:"gt=0"`

	// Timeout is the per-request timeout for upstream calls.
	Timeout time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// MaxRetries is the maximum number of attempts per logical Embed call.
	MaxRetries int `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries" validate:"gte=1"`

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold int `yaml:"failure_threshold" json:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=1"`

	// ResetTimeout is how long the breaker stays open before a half-open probe.
	ResetTimeout time.Duration `yaml:"reset_timeout" json:"reset_timeout" mapstructure:"reset_timeout"`

	// CacheTTL bounds how long computed embeddings are reused. Zero disables the cache.
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl" mapstructure:"cache_ttl"`
}

// DefaultConfig returns an embedding configuration with the stock local-Ollama defaults.
func DefaultConfig() Config {
	return Config{
		ServerURL:        "http://localhost:11434",
		Model:            "mxbai-embed-large",
		Dimensions:       1024,
		Timeout:          30 * time.Second,
		MaxRetries:       3,
		FailureThreshold: 3,
		ResetTimeout:     30 * time.Second,
		CacheTTL:         0,
	}
}

// Validate checks if the Config is valid.
func (c Config) Validate() error {
	if c.ServerURL == "" {
		return types.NewError(types.INVALID_CONFIG, "embedding server_url cannot be empty")
	}
	if c.Model == "" {
		return types.NewError(types.INVALID_CONFIG, "embedding model cannot be empty")
	}
	if c.Dimensions <= 0 {
		return types.NewError(types.INVALID_CONFIG, "embedding dimensions must be positive")
	}
	if c.MaxRetries < 1 {
		return types.NewError(types.INVALID_CONFIG, "embedding max_retries must be at least 1")
	}
	if c.FailureThreshold < 1 {
		return types.NewError(types.INVALID_CONFIG, "embedding failure_threshold must be at least 1")
	}
	if c.Timeout <= 0 {
		return types.NewError(types.INVALID_CONFIG, "embedding timeout must be positive")
	}
	if c.ResetTimeout <= 0 {
		return types.NewError(types.INVALID_CONFIG, "embedding reset_timeout must be positive")
	}
	return nil
}
