package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for bridge errors.
type ErrorCode string

// Embedding error codes
const (
	EMBEDDING_UNAVAILABLE ErrorCode = "EMBEDDING_UNAVAILABLE"
	CIRCUIT_OPEN          ErrorCode = "CIRCUIT_OPEN"
	EMBEDDING_FAILED      ErrorCode = "EMBEDDING_FAILED"
)

// Store error codes
const (
	VECTOR_STORE_FAILED  ErrorCode = "VECTOR_STORE_FAILED"
	GRAPH_STORE_FAILED   ErrorCode = "GRAPH_STORE_FAILED"
	DOCUMENT_NOT_FOUND   ErrorCode = "DOCUMENT_NOT_FOUND"
	PARTIAL_WRITE        ErrorCode = "PARTIAL_WRITE"
	UPSTREAM_STORE_ERROR ErrorCode = "UPSTREAM_STORE_ERROR"
)

// Validation error codes
const (
	INVALID_RELATIONSHIP_TYPE ErrorCode = "INVALID_RELATIONSHIP_TYPE"
	INVALID_CONFIG            ErrorCode = "INVALID_CONFIG"
	INVALID_REQUEST           ErrorCode = "INVALID_REQUEST"
)

// BridgeError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type BridgeError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *BridgeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *BridgeError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a BridgeError with the same Code.
func (e *BridgeError) Is(target error) bool {
	var bridgeErr *BridgeError
	if errors.As(target, &bridgeErr) {
		return e.Code == bridgeErr.Code
	}
	return false
}

// NewError creates a new non-retryable BridgeError with the given code and message.
func NewError(code ErrorCode, message string) *BridgeError {
	return &BridgeError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable BridgeError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *BridgeError {
	return &BridgeError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable BridgeError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *BridgeError {
	return &BridgeError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns an empty code if the chain contains no BridgeError.
func CodeOf(err error) ErrorCode {
	var bridgeErr *BridgeError
	if errors.As(err, &bridgeErr) {
		return bridgeErr.Code
	}
	return ""
}
