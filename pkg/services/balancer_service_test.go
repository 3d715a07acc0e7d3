package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

func TestBalancerChoosesFastestHealthy(t *testing.T) {
	a := newTestBackend(t, nil)
	b := newTestBackend(t, nil)
	c := newTestBackend(t, nil)
	c.setHealth(http.StatusServiceUnavailable, 0)

	health := NewHealthService()
	candidates := []string{a.URL, b.URL, c.URL}
	health.CheckMultipleEndpoints(context.Background(), candidates)

	balancer := NewBalancerService(health)
	choice, ok := balancer.Choose(candidates)

	require.True(t, ok)
	assert.Equal(t, types.ReasonBestPerformance, choice.Reason)
	assert.Contains(t, []string{a.URL, b.URL}, choice.URL)
	require.NotNil(t, choice.ResponseTimeMs)
	assert.Equal(t, 1, choice.HealthyAlternatives)
}

func TestBalancerFallsBackToFirstCandidate(t *testing.T) {
	balancer := NewBalancerService(NewHealthService())

	choice, ok := balancer.Choose([]string{"http://a.test", "http://b.test"})

	require.True(t, ok)
	assert.Equal(t, "http://a.test", choice.URL)
	assert.Equal(t, types.ReasonFallbackOnlyOption, choice.Reason)
	assert.Nil(t, choice.ResponseTimeMs)

	_, ok = balancer.Choose(nil)
	assert.False(t, ok)

	stats := balancer.GetStats()
	assert.Equal(t, int64(1), stats["selections"])
	assert.Equal(t, int64(1), stats["fallbacks"])
}

func TestBalancerFailoverRotates(t *testing.T) {
	balancer := NewBalancerService(NewHealthService())
	pool := types.NewEndpointPool([]string{"http://a.test", "http://b.test", "http://c.test"})
	pool.SetCurrent("http://c.test")

	next, previous := balancer.Failover(pool)

	assert.Equal(t, "http://a.test", next)
	assert.Equal(t, "http://c.test", previous)
	assert.Equal(t, int64(1), balancer.GetStats()["failovers"])

	balancer.ResetStats()
	assert.Equal(t, int64(0), balancer.GetStats()["failovers"])
	assert.NotEmpty(t, balancer.GetStats()["since"])
}
