// Package health aggregates liveness probes across the bridge's upstream
// dependencies into a single report.
package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

// Probe is any component that can report its own health.
type Probe interface {
	Health(ctx context.Context) types.HealthStatus
}

// ProbeFunc adapts a function to the Probe interface.
type ProbeFunc func(ctx context.Context) types.HealthStatus

func (f ProbeFunc) Health(ctx context.Context) types.HealthStatus {
	return f(ctx)
}

// Report is the aggregate health of the bridge and each of its dependencies.
type Report struct {
	Status     string                        `json:"status"`
	Overall    types.HealthState             `json:"overall"`
	Components map[string]types.HealthStatus `json:"components"`
	Timestamp  string                        `json:"timestamp"`
}

// Checker runs registered probes and folds their results into a Report.
type Checker struct {
	mu     sync.Mutex
	probes map[string]Probe

	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewChecker creates a Checker. Each probe is bounded by timeout; zero means
// 10 seconds.
func NewChecker(timeout time.Duration, logger *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		probes:  make(map[string]Probe),
		timeout: timeout,
		logger:  logger.With("component", "health"),
		now:     time.Now,
	}
}

// Register adds a named probe. Re-registering a name replaces the probe.
func (c *Checker) Register(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
}

// Check runs all probes concurrently and aggregates the verdict. The overall
// state is unhealthy if any dependency is unhealthy, degraded if any is
// degraded, healthy otherwise.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.Lock()
	probes := make(map[string]Probe, len(c.probes))
	for name, probe := range c.probes {
		probes[name] = probe
	}
	c.mu.Unlock()

	components := make(map[string]types.HealthStatus, len(probes))
	var (
		wg      sync.WaitGroup
		resultM sync.Mutex
	)
	for name, probe := range probes {
		wg.Add(1)
		go func(name string, probe Probe) {
			defer wg.Done()
			status := c.runProbe(ctx, name, probe)
			resultM.Lock()
			components[name] = status
			resultM.Unlock()
		}(name, probe)
	}
	wg.Wait()

	overall := types.HealthStateHealthy
	for _, status := range components {
		switch status.State {
		case types.HealthStateUnhealthy:
			overall = types.HealthStateUnhealthy
		case types.HealthStateDegraded:
			if overall == types.HealthStateHealthy {
				overall = types.HealthStateDegraded
			}
		}
	}

	status := "success"
	if overall == types.HealthStateUnhealthy {
		status = "error"
	}

	return Report{
		Status:     status,
		Overall:    overall,
		Components: components,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
	}
}

func (c *Checker) runProbe(ctx context.Context, name string, probe Probe) types.HealthStatus {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := c.now()
	done := make(chan types.HealthStatus, 1)
	go func() {
		done <- probe.Health(probeCtx)
	}()

	select {
	case status := <-done:
		status = status.WithLatency(c.now().Sub(start))
		if status.IsUnhealthy() {
			c.logger.Warn("dependency unhealthy", "name", name, "message", status.Message)
		}
		return status
	case <-probeCtx.Done():
		c.logger.Warn("health probe timed out", "name", name)
		return types.Unhealthy("health probe timed out").WithLatency(c.now().Sub(start))
	}
}
