package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthStatus_Constructors(t *testing.T) {
	h := Healthy("ok")
	assert.Equal(t, HealthStateHealthy, h.State)
	assert.True(t, h.IsHealthy())
	assert.False(t, h.IsUnhealthy())
	assert.WithinDuration(t, time.Now(), h.CheckedAt, time.Second)

	d := Degraded("slow")
	assert.Equal(t, HealthStateDegraded, d.State)
	assert.False(t, d.IsHealthy())

	u := Unhealthy("down")
	assert.Equal(t, HealthStateUnhealthy, u.State)
	assert.True(t, u.IsUnhealthy())
	assert.Equal(t, "down", u.Message)
}

func TestHealthState_IsValid(t *testing.T) {
	assert.True(t, HealthStateHealthy.IsValid())
	assert.True(t, HealthStateDegraded.IsValid())
	assert.True(t, HealthStateUnhealthy.IsValid())
	assert.False(t, HealthState("unknown").IsValid())
}

func TestHealthStatus_WithLatency(t *testing.T) {
	h := Healthy("ok").WithLatency(42 * time.Millisecond)
	assert.Equal(t, 42*time.Millisecond, h.Latency)
}
