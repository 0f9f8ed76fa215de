package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBridgeError_Error(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := NewError(DOCUMENT_NOT_FOUND, "document missing")
		assert.Equal(t, "[DOCUMENT_NOT_FOUND] document missing", err.Error())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapError(GRAPH_STORE_FAILED, "query failed", cause)
		assert.Equal(t, "[GRAPH_STORE_FAILED] query failed: connection refused", err.Error())
	})
}

func TestBridgeError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := WrapError(EMBEDDING_UNAVAILABLE, "embed failed", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestBridgeError_Is_MatchesByCode(t *testing.T) {
	err := WrapError(CIRCUIT_OPEN, "breaker open", errors.New("upstream down"))

	assert.True(t, errors.Is(err, NewError(CIRCUIT_OPEN, "different message")))
	assert.False(t, errors.Is(err, NewError(EMBEDDING_FAILED, "breaker open")))
}

func TestBridgeError_Is_ThroughWrapping(t *testing.T) {
	inner := NewError(DOCUMENT_NOT_FOUND, "missing")
	outer := fmt.Errorf("lookup: %w", inner)

	assert.True(t, errors.Is(outer, NewError(DOCUMENT_NOT_FOUND, "")))
}

func TestNewRetryableError(t *testing.T) {
	err := NewRetryableError(UPSTREAM_STORE_ERROR, "transient")
	assert.True(t, err.Retryable)

	err = NewError(UPSTREAM_STORE_ERROR, "permanent")
	assert.False(t, err.Retryable)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CIRCUIT_OPEN, CodeOf(NewError(CIRCUIT_OPEN, "open")))
	assert.Equal(t, PARTIAL_WRITE, CodeOf(fmt.Errorf("wrapped: %w", NewError(PARTIAL_WRITE, "partial"))))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}
