package config

import (
	"time"
)

// Config is the root configuration for the bridge.
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding" validate:"required"`
	Vector    VectorConfig    `mapstructure:"vector" yaml:"vector"`
	Graph     GraphConfig     `mapstructure:"graph" yaml:"graph" validate:"required"`
	Search    SearchConfig    `mapstructure:"search" yaml:"search"`
	Sync      SyncConfig      `mapstructure:"sync" yaml:"sync"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// EmbeddingConfig configures the embedding provider and the resilience layer
// wrapped around it.
type EmbeddingConfig struct {
	ServerURL  string        `mapstructure:"server_url" yaml:"server_url" validate:"required,url"`
	Model      string        `mapstructure:"model" yaml:"model" validate:"required"`
	Dimensions int           `mapstructure:"dimensions" yaml:"dimensions" validate:"min=1,max=8192"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`

	MaxRetries       int           `mapstructure:"max_retries" yaml:"max_retries" validate:"min=1,max=10"`
	FailureThreshold int           `mapstructure:"failure_threshold" yaml:"failure_threshold" validate:"min=1,max=20"`
	ResetTimeout     time.Duration `mapstructure:"reset_timeout" yaml:"reset_timeout" validate:"min=1s"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// VectorConfig configures the vector index. An empty path keeps the index
// in memory.
type VectorConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Compress bool   `mapstructure:"compress" yaml:"compress"`
}

// GraphConfig configures the Neo4j connection.
type GraphConfig struct {
	URI            string        `mapstructure:"uri" yaml:"uri" validate:"required"`
	Username       string        `mapstructure:"username" yaml:"username"`
	Password       string        `mapstructure:"password" yaml:"password"`
	Database       string        `mapstructure:"database" yaml:"database"`
	MaxPoolSize    int           `mapstructure:"max_pool_size" yaml:"max_pool_size" validate:"min=1,max=500"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout" validate:"min=1s"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" yaml:"query_timeout" validate:"min=1s"`
}

// SearchConfig carries retrieval defaults applied when a request leaves them
// unset.
type SearchConfig struct {
	DefaultLimit      int     `mapstructure:"default_limit" yaml:"default_limit" validate:"min=1,max=100"`
	RelationshipBoost float64 `mapstructure:"relationship_boost" yaml:"relationship_boost" validate:"min=0,max=1"`
	MaxDepth          int     `mapstructure:"max_depth" yaml:"max_depth" validate:"min=1,max=3"`
}

// SyncConfig configures batch pattern synchronization.
type SyncConfig struct {
	Collection string `mapstructure:"collection" yaml:"collection"`
	BatchSize  int    `mapstructure:"batch_size" yaml:"batch_size" validate:"min=1,max=1000"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}
