package config

import "time"

// DefaultConfig returns a configuration suitable for a local development
// stack: Ollama on its standard port, an in-memory vector index, and a local
// Neo4j instance.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			ServerURL:        "http://localhost:11434",
			Model:            "mxbai-embed-large",
			Dimensions:       1024,
			Timeout:          30 * time.Second,
			MaxRetries:       3,
			FailureThreshold: 3,
			ResetTimeout:     30 * time.Second,
			CacheTTL:         5 * time.Minute,
		},
		Vector: VectorConfig{
			Path:     "",
			Compress: false,
		},
		Graph: GraphConfig{
			URI:            "bolt://localhost:7687",
			Username:       "neo4j",
			Password:       "",
			Database:       "neo4j",
			MaxPoolSize:    50,
			ConnectTimeout: 30 * time.Second,
			QueryTimeout:   30 * time.Second,
		},
		Search: SearchConfig{
			DefaultLimit:      10,
			RelationshipBoost: 0.2,
			MaxDepth:          2,
		},
		Sync: SyncConfig{
			Collection: "patterns",
			BatchSize:  100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
