package graph

import (
	"context"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Client provides an interface for graph database operations.
// Implementations must be thread-safe for concurrent access.
//
// Every call opens its own session, so no operation holds graph-store
// resources across other store calls.
type Client interface {
	// Connect establishes a connection to the graph database.
	Connect(ctx context.Context) error

	// Close releases all resources and closes the database connection.
	Close(ctx context.Context) error

	// Health returns the current health status of the graph database connection.
	Health(ctx context.Context) types.HealthStatus

	// Read executes a Cypher query in a read transaction.
	Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)

	// Write executes a Cypher query in a write transaction.
	Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error)
}

// QueryResult represents the result of a Cypher query execution.
type QueryResult struct {
	// Records contains the result rows as maps of column name to value.
	Records []map[string]any

	// Columns contains the names of the columns in the result set.
	Columns []string

	// Summary contains metadata about the query execution.
	Summary QuerySummary
}

// Single returns the only record of the result, or false when the result is
// empty or has more than one row.
func (r QueryResult) Single() (map[string]any, bool) {
	if len(r.Records) != 1 {
		return nil, false
	}
	return r.Records[0], true
}

// QuerySummary provides metadata about query execution.
type QuerySummary struct {
	// ExecutionTime is the duration of query execution.
	ExecutionTime time.Duration

	// NodesCreated is the number of nodes created by the query.
	NodesCreated int

	// NodesDeleted is the number of nodes deleted by the query.
	NodesDeleted int

	// RelationshipsCreated is the number of relationships created.
	RelationshipsCreated int

	// RelationshipsDeleted is the number of relationships deleted.
	RelationshipsDeleted int

	// PropertiesSet is the number of properties set.
	PropertiesSet int
}

// Config contains configuration options for graph database clients.
type Config struct {
	// URI is the connection URI for the graph database.
	// For Neo4j, use:
	//   - "bolt://host:port" for unencrypted connections
	//   - "bolt+s://host:port" for TLS encrypted connections
	//   - "neo4j://" or "neo4j+s://" for routing
	URI string `yaml:"uri" json:"uri" mapstructure:"uri" validate:"required"`

	// Username for authentication. Empty disables auth entirely.
	Username string `yaml:"username" json:"username" mapstructure:"username"`

	// Password for authentication.
	Password string `yaml:"password" json:"password" mapstructure:"password" validate:"required"`

	// Database name to connect to. Empty string uses the default database.
	Database string `yaml:"database" json:"database" mapstructure:"database"`

	// MaxConnectionPoolSize limits the number of connections in the pool.
	// Zero or negative values use the driver default.
	MaxConnectionPoolSize int `yaml:"pool_size" json:"pool_size" mapstructure:"pool_size"`

	// ConnectionTimeout is the maximum time to wait for a connection.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout" mapstructure:"connection_timeout"`

	// MaxTransactionRetryTime is the maximum time to retry failed transactions.
	MaxTransactionRetryTime time.Duration `yaml:"max_transaction_retry_time" json:"max_transaction_retry_time" mapstructure:"max_transaction_retry_time"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URI:                     "bolt://localhost:7687",
		Username:                "neo4j",
		Password:                "",
		Database:                "",
		MaxConnectionPoolSize:   50,
		ConnectionTimeout:       30 * time.Second,
		MaxTransactionRetryTime: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.URI == "" {
		return types.NewError(types.INVALID_CONFIG, "graph URI cannot be empty")
	}
	if c.Username == "" && c.Password != "" {
		return types.NewError(types.INVALID_CONFIG, "graph password set without username")
	}
	if c.ConnectionTimeout <= 0 {
		return types.NewError(types.INVALID_CONFIG, "graph connection_timeout must be positive")
	}
	if c.MaxTransactionRetryTime <= 0 {
		return types.NewError(types.INVALID_CONFIG, "graph max_transaction_retry_time must be positive")
	}
	return nil
}
