package graph

import (
	"context"
	"strings"
	"sync"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// RecordedQuery is a query captured by the mock client for verification.
type RecordedQuery struct {
	Kind   string // "read" or "write"
	Cypher string
	Params map[string]any
}

// queryStub pairs a Cypher fragment with a scripted response.
type queryStub struct {
	fragment string
	result   QueryResult
	err      error
}

// MockClient is a scriptable Client for testing. Responses are configured by
// Cypher fragment: the first stub whose fragment appears in the executed query
// wins. All executed queries are recorded for verification.
type MockClient struct {
	mu sync.Mutex

	connected bool
	stubs     []queryStub
	calls     []RecordedQuery

	connectErr error
	defaultErr error
}

// NewMockClient creates a connected mock graph client.
func NewMockClient() *MockClient {
	return &MockClient{connected: true}
}

// StubResult scripts the result for queries containing fragment.
func (m *MockClient) StubResult(fragment string, result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, queryStub{fragment: fragment, result: result})
}

// StubError scripts a failure for queries containing fragment.
func (m *MockClient) StubError(fragment string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stubs = append(m.stubs, queryStub{fragment: fragment, err: err})
}

// SetDefaultError makes every unstubbed query fail with err.
func (m *MockClient) SetDefaultError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultErr = err
}

// Calls returns all recorded queries.
func (m *MockClient) Calls() []RecordedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedQuery, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsContaining returns the recorded queries whose Cypher contains fragment.
func (m *MockClient) CallsContaining(fragment string) []RecordedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []RecordedQuery
	for _, c := range m.calls {
		if strings.Contains(c.Cypher, fragment) {
			out = append(out, c)
		}
	}
	return out
}

// Connect implements Client.
func (m *MockClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = true
	return nil
}

// Close implements Client.
func (m *MockClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// Health implements Client.
func (m *MockClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return types.Unhealthy("not connected")
	}
	if m.defaultErr != nil {
		return types.Unhealthy(m.defaultErr.Error())
	}
	return types.Healthy("mock graph client")
}

// Read implements Client.
func (m *MockClient) Read(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.run("read", cypher, params)
}

// Write implements Client.
func (m *MockClient) Write(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	return m.run("write", cypher, params)
}

func (m *MockClient) run(kind, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, RecordedQuery{Kind: kind, Cypher: cypher, Params: params})

	for _, stub := range m.stubs {
		if strings.Contains(cypher, stub.fragment) {
			if stub.err != nil {
				return QueryResult{}, stub.err
			}
			return stub.result, nil
		}
	}

	if m.defaultErr != nil {
		return QueryResult{}, m.defaultErr
	}
	return QueryResult{}, nil
}

// Records builds a QueryResult from row maps, for stubbing.
func Records(rows ...map[string]any) QueryResult {
	result := QueryResult{Records: rows}
	if len(rows) > 0 {
		for key := range rows[0] {
			result.Columns = append(result.Columns, key)
		}
	}
	return result
}
