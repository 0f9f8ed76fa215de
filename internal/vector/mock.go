package vector

import (
	"context"
	"sync"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// MockIndex is a scriptable Index for testing. It records upserted points,
// returns configured query hits, and can be forced to fail.
type MockIndex struct {
	mu sync.Mutex

	points map[string]map[string]Point // collection -> id -> point

	queryHits  []Hit
	queryErr   error
	upsertErr  error
	queryCalls int
}

// NewMockIndex creates an empty mock index.
func NewMockIndex() *MockIndex {
	return &MockIndex{
		points: make(map[string]map[string]Point),
	}
}

// SetQueryHits configures the hits returned by Query.
func (m *MockIndex) SetQueryHits(hits []Hit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryHits = hits
}

// SetQueryError forces Query to fail.
func (m *MockIndex) SetQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErr = err
}

// SetUpsertError forces Upsert to fail.
func (m *MockIndex) SetUpsertError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertErr = err
}

// QueryCalls reports how many times Query was invoked.
func (m *MockIndex) QueryCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queryCalls
}

// StoredPoint returns a stored point by collection and id.
func (m *MockIndex) StoredPoint(collection, id string) (Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	col, ok := m.points[collection]
	if !ok {
		return Point{}, false
	}
	p, ok := col[id]
	return p, ok
}

// StoredCount returns the number of points stored in a collection.
func (m *MockIndex) StoredCount(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points[collection])
}

// Upsert implements Index.
func (m *MockIndex) Upsert(ctx context.Context, collection string, point Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if m.points[collection] == nil {
		m.points[collection] = make(map[string]Point)
	}
	m.points[collection][point.ID] = point
	return nil
}

// UpsertBatch implements Index.
func (m *MockIndex) UpsertBatch(ctx context.Context, collection string, points []Point) error {
	for _, p := range points {
		if err := m.Upsert(ctx, collection, p); err != nil {
			return err
		}
	}
	return nil
}

// Query implements Index, returning the configured hits truncated to limit.
func (m *MockIndex) Query(ctx context.Context, collection string, queryVector []float32, limit int) ([]Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryCalls++
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	hits := m.queryHits
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count implements Index.
func (m *MockIndex) Count(ctx context.Context, collection string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points[collection]), nil
}

// Collections implements Index.
func (m *MockIndex) Collections(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.points))
	for name := range m.points {
		names = append(names, name)
	}
	return names, nil
}

// Health implements Index.
func (m *MockIndex) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil || m.upsertErr != nil {
		return types.Unhealthy("mock index failing")
	}
	return types.Healthy("mock index")
}

// Close implements Index.
func (m *MockIndex) Close() error {
	return nil
}
