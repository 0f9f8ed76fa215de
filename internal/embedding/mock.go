package embedding

import (
	"context"
	"sync"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// MockEmbedder is a scriptable Embedder for testing. It returns configured
// vectors per text, can fail a fixed number of times before succeeding, and
// tracks how often the upstream was actually invoked.
type MockEmbedder struct {
	mu sync.Mutex

	embeddings map[string][]float32
	defaultVec []float32
	dimensions int
	model      string

	// err is returned on every call until failuresLeft reaches zero.
	// A negative failuresLeft fails forever.
	err          error
	failuresLeft int

	callCount int
}

// NewMockEmbedder creates a mock that returns a fixed small vector for any text.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		embeddings: make(map[string][]float32),
		defaultVec: []float32{0.1, 0.2, 0.3},
		dimensions: 3,
		model:      "mock-embed",
	}
}

// SetEmbedding configures the vector returned for a specific text.
func (m *MockEmbedder) SetEmbedding(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embeddings[text] = vec
}

// FailWith makes the next `times` calls fail with err. Pass a negative count
// to fail indefinitely.
func (m *MockEmbedder) FailWith(err error, times int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	m.failuresLeft = times
}

// CallCount reports how many times Embed reached the mock upstream.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Embed implements Embedder.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++

	if m.err != nil && m.failuresLeft != 0 {
		if m.failuresLeft > 0 {
			m.failuresLeft--
		}
		return nil, m.err
	}

	if vec, ok := m.embeddings[text]; ok {
		return vec, nil
	}
	return m.defaultVec, nil
}

// EmbedBatch implements Embedder with the sequential abort contract.
func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return vectors, err
		}
		vectors = append(vectors, vec)
	}
	return vectors, nil
}

// Dimensions implements Embedder.
func (m *MockEmbedder) Dimensions() int {
	return m.dimensions
}

// Model implements Embedder.
func (m *MockEmbedder) Model() string {
	return m.model
}

// Health implements Embedder.
func (m *MockEmbedder) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil && m.failuresLeft != 0 {
		return types.Unhealthy(m.err.Error())
	}
	return types.Healthy("mock embedder")
}
