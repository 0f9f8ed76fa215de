package embedding

import (
	"context"
	"sync"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// BreakerState is the circuit breaker state.
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// CircuitBreaker fails fast after repeated upstream failures and periodically
// probes recovery. It is shared by every caller in the process: the composition
// root constructs one breaker and hands it to each gateway.
//
// Only the bookkeeping is serialized; the wrapped call itself runs outside the
// lock so concurrent callers issue upstream requests independently.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	mu           sync.Mutex
	state        BreakerState
	failureCount int
	openedAt     time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewCircuitBreaker creates a closed breaker with the given thresholds.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            BreakerClosed,
		now:              time.Now,
	}
}

// Call runs fn under breaker supervision.
//
// Transitions:
//   - open, resetTimeout not elapsed: fail immediately with CIRCUIT_OPEN,
//     fn is never invoked.
//   - open, resetTimeout elapsed: move to half-open and run fn as the trial call.
//     There is no background timer; the transition happens lazily here.
//   - half-open trial success: close and reset the failure counter.
//   - half-open trial failure: reopen and restart the open-since clock.
//   - closed failures accumulate; crossing failureThreshold opens the breaker.
//     Successes while closed do not reset the counter.
func (b *CircuitBreaker) Call(ctx context.Context, fn func(ctx context.Context) ([]float32, error)) ([]float32, error) {
	b.mu.Lock()
	if b.state == BreakerOpen {
		if b.now().Sub(b.openedAt) > b.resetTimeout {
			b.state = BreakerHalfOpen
		} else {
			b.mu.Unlock()
			return nil, types.NewRetryableError(types.CIRCUIT_OPEN,
				"embedding circuit breaker open - too many failures")
		}
	}
	b.mu.Unlock()

	result, err := fn(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failureCount++
		b.openedAt = b.now()
		if b.state == BreakerHalfOpen || b.failureCount >= b.failureThreshold {
			b.state = BreakerOpen
		}
		return nil, err
	}

	if b.state == BreakerHalfOpen {
		b.state = BreakerClosed
		b.failureCount = 0
	}
	return result, nil
}

// State reports the current breaker state without side effects.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount reports the accumulated consecutive failure count.
func (b *CircuitBreaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}
