package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No-Smoke/tos-bridge/internal/types"
)

func staticProbe(status types.HealthStatus) Probe {
	return ProbeFunc(func(ctx context.Context) types.HealthStatus {
		return status
	})
}

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("embedder", staticProbe(types.Healthy("ok")))
	c.Register("vector", staticProbe(types.Healthy("ok")))
	c.Register("graph", staticProbe(types.Healthy("ok")))

	report := c.Check(context.Background())

	assert.Equal(t, "success", report.Status)
	assert.Equal(t, types.HealthStateHealthy, report.Overall)
	require.Len(t, report.Components, 3)
	assert.NotEmpty(t, report.Timestamp)
}

func TestChecker_DegradedDependencyDegradesOverall(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("embedder", staticProbe(types.Degraded("circuit open")))
	c.Register("graph", staticProbe(types.Healthy("ok")))

	report := c.Check(context.Background())

	assert.Equal(t, "success", report.Status)
	assert.Equal(t, types.HealthStateDegraded, report.Overall)
	assert.Equal(t, "circuit open", report.Components["embedder"].Message)
}

func TestChecker_UnhealthyDependencyWins(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("embedder", staticProbe(types.Degraded("slow")))
	c.Register("graph", staticProbe(types.Unhealthy("connection refused")))

	report := c.Check(context.Background())

	assert.Equal(t, "error", report.Status)
	assert.Equal(t, types.HealthStateUnhealthy, report.Overall)
}

func TestChecker_ProbeTimeout(t *testing.T) {
	c := NewChecker(20*time.Millisecond, nil)
	c.Register("graph", ProbeFunc(func(ctx context.Context) types.HealthStatus {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return types.Healthy("too late")
	}))

	report := c.Check(context.Background())

	assert.Equal(t, types.HealthStateUnhealthy, report.Overall)
	assert.Contains(t, report.Components["graph"].Message, "timed out")
}

func TestChecker_RecordsLatency(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("vector", ProbeFunc(func(ctx context.Context) types.HealthStatus {
		time.Sleep(10 * time.Millisecond)
		return types.Healthy("ok")
	}))

	report := c.Check(context.Background())
	assert.GreaterOrEqual(t, report.Components["vector"].Latency, 10*time.Millisecond)
}

func TestChecker_NoProbes(t *testing.T) {
	c := NewChecker(time.Second, nil)
	report := c.Check(context.Background())
	assert.Equal(t, types.HealthStateHealthy, report.Overall)
	assert.Empty(t, report.Components)
}

func TestChecker_ReplacesProbeOnReRegister(t *testing.T) {
	c := NewChecker(time.Second, nil)
	c.Register("graph", staticProbe(types.Unhealthy("down")))
	c.Register("graph", staticProbe(types.Healthy("recovered")))

	report := c.Check(context.Background())
	assert.Equal(t, types.HealthStateHealthy, report.Overall)
}
