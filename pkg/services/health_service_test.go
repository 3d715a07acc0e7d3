package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

const testEndpoint = "https://api.example.test"

func TestCircuitOpensAfterThreeConsecutiveFailures(t *testing.T) {
	h := NewHealthService()

	h.UpdateCircuitBreaker(testEndpoint, false, 10)
	h.UpdateCircuitBreaker(testEndpoint, false, 10)

	circuit, ok := h.GetCircuitBreaker(testEndpoint)
	require.True(t, ok)
	assert.Equal(t, types.CircuitClosed, circuit.State)
	assert.Equal(t, 2, circuit.Failures)
	assert.False(t, h.IsCircuitOpen(testEndpoint))

	h.UpdateCircuitBreaker(testEndpoint, false, 10)

	circuit, _ = h.GetCircuitBreaker(testEndpoint)
	assert.Equal(t, types.CircuitOpen, circuit.State)
	assert.True(t, h.IsCircuitOpen(testEndpoint))
}

func TestCircuitSuccessResetsFailures(t *testing.T) {
	h := NewHealthService()

	h.UpdateCircuitBreaker(testEndpoint, false, 10)
	h.UpdateCircuitBreaker(testEndpoint, false, 10)
	h.UpdateCircuitBreaker(testEndpoint, true, 40)
	h.UpdateCircuitBreaker(testEndpoint, false, 10)
	h.UpdateCircuitBreaker(testEndpoint, false, 10)

	circuit, ok := h.GetCircuitBreaker(testEndpoint)
	require.True(t, ok)
	assert.Equal(t, types.CircuitClosed, circuit.State)
	assert.Equal(t, 2, circuit.Failures)
	assert.Equal(t, 1, circuit.Successes)
	assert.Equal(t, 5, circuit.TotalChecks)
	assert.InDelta(t, 40, circuit.AvgResponseTimeMs, 0.001)
	require.NotNil(t, circuit.LastSuccess)
	require.NotNil(t, circuit.LastFailure)
}

func TestCircuitHalfOpensAfterRecoveryTimeout(t *testing.T) {
	clock := newFakeClock()
	h := NewHealthService(WithHealthClock(clock.Now))

	for i := 0; i < 3; i++ {
		h.UpdateCircuitBreaker(testEndpoint, false, 10)
	}
	require.True(t, h.IsCircuitOpen(testEndpoint))

	clock.Advance(59 * time.Second)
	assert.True(t, h.IsCircuitOpen(testEndpoint))

	clock.Advance(time.Second)
	assert.False(t, h.IsCircuitOpen(testEndpoint))
	circuit, _ := h.GetCircuitBreaker(testEndpoint)
	assert.Equal(t, types.CircuitHalfOpen, circuit.State)

	// HALF_OPEN에서의 실패는 다시 열지 않습니다
	h.UpdateCircuitBreaker(testEndpoint, false, 10)
	circuit, _ = h.GetCircuitBreaker(testEndpoint)
	assert.Equal(t, types.CircuitHalfOpen, circuit.State)
	assert.Equal(t, 4, circuit.Failures)
	assert.False(t, h.IsCircuitOpen(testEndpoint))

	h.UpdateCircuitBreaker(testEndpoint, true, 20)
	circuit, _ = h.GetCircuitBreaker(testEndpoint)
	assert.Equal(t, types.CircuitClosed, circuit.State)
	assert.Zero(t, circuit.Failures)
}

func TestResetCircuitBreaker(t *testing.T) {
	h := NewHealthService()
	for i := 0; i < 3; i++ {
		h.UpdateCircuitBreaker(testEndpoint, false, 10)
	}
	require.True(t, h.IsCircuitOpen(testEndpoint))

	h.ResetCircuitBreaker(testEndpoint)

	assert.False(t, h.IsCircuitOpen(testEndpoint))
	circuit, _ := h.GetCircuitBreaker(testEndpoint)
	assert.Equal(t, types.CircuitClosed, circuit.State)
	assert.Zero(t, circuit.Failures)
}

func TestUnknownEndpointCircuitIsClosed(t *testing.T) {
	h := NewHealthService()

	assert.False(t, h.IsCircuitOpen("https://never-seen.example.test"))
	_, ok := h.GetCircuitBreaker("https://never-seen.example.test")
	assert.False(t, ok)
}

func TestCheckEndpointHealthy(t *testing.T) {
	headers := make(chan http.Header, 1)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		headers <- r.Header.Clone()
		writeJSON(w, http.StatusOK, `{"status":"ok","db":"up"}`)
	}))
	t.Cleanup(backend.Close)

	h := NewHealthService()
	result := h.CheckEndpoint(context.Background(), backend.URL)

	assert.True(t, result.Healthy)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Empty(t, result.Error)
	assert.Equal(t, "ok", result.HealthData["status"])
	assert.Equal(t, "up", result.HealthData["db"])
	assert.NotZero(t, result.Timestamp)

	probeHeaders := <-headers
	assert.Equal(t, "application/json", probeHeaders.Get("Accept"))
	assert.Equal(t, "no-cache", probeHeaders.Get("Cache-Control"))
	assert.Equal(t, "true", probeHeaders.Get("X-Health-Check"))

	stored, ok := h.GetEndpointHealth(backend.URL)
	require.True(t, ok)
	assert.True(t, stored.Healthy)

	circuit, _ := h.GetCircuitBreaker(backend.URL)
	assert.Equal(t, 1, circuit.Successes)
}

func TestCheckEndpointNonJSONBody(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(backend.Close)

	result := NewHealthService().CheckEndpoint(context.Background(), backend.URL)

	assert.True(t, result.Healthy)
	assert.Equal(t, "healthy", result.HealthData["status"])
}

func TestCheckEndpointUnhealthyStatus(t *testing.T) {
	backend := newTestBackend(t, nil)
	backend.setHealth(http.StatusServiceUnavailable, 0)

	h := NewHealthService()
	result := h.CheckEndpoint(context.Background(), backend.URL)

	assert.False(t, result.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	assert.Empty(t, result.Error)

	circuit, _ := h.GetCircuitBreaker(backend.URL)
	assert.Equal(t, 1, circuit.Failures)
}

func TestCheckEndpointTimeout(t *testing.T) {
	backend := newTestBackend(t, nil)
	backend.setHealth(http.StatusOK, time.Second)

	h := NewHealthService(WithProbeTimeout(50 * time.Millisecond))
	start := time.Now()
	result := h.CheckEndpoint(context.Background(), backend.URL)

	assert.Less(t, time.Since(start), 900*time.Millisecond)
	assert.False(t, result.Healthy)
	assert.Contains(t, result.Error, "timed out")
	assert.Equal(t, "error", result.HealthData["status"])
}

func TestCheckEndpointUnreachable(t *testing.T) {
	url := closedURL(t)

	result := NewHealthService().CheckEndpoint(context.Background(), url)

	assert.False(t, result.Healthy)
	assert.Zero(t, result.StatusCode)
	assert.NotEmpty(t, result.Error)
}

func TestCheckMultipleEndpointsKeepsInputOrder(t *testing.T) {
	slow := newTestBackend(t, nil)
	slow.setHealth(http.StatusOK, 100*time.Millisecond)
	fast := newTestBackend(t, nil)
	down := newTestBackend(t, nil)
	down.setHealth(http.StatusInternalServerError, 0)

	results := NewHealthService().CheckMultipleEndpoints(context.Background(), []string{slow.URL, fast.URL, down.URL})

	require.Len(t, results, 3)
	assert.Equal(t, slow.URL, results[0].URL)
	assert.Equal(t, fast.URL, results[1].URL)
	assert.Equal(t, down.URL, results[2].URL)
	assert.True(t, results[0].Healthy)
	assert.True(t, results[1].Healthy)
	assert.False(t, results[2].Healthy)
}

func TestGetHealthyEndpointsOrdersByLatency(t *testing.T) {
	a := newTestBackend(t, nil)
	a.setHealth(http.StatusOK, 150*time.Millisecond)
	b := newTestBackend(t, nil)
	b.setHealth(http.StatusOK, 20*time.Millisecond)
	c := newTestBackend(t, nil)
	c.setHealth(http.StatusServiceUnavailable, 0)

	h := NewHealthService()
	urls := []string{a.URL, b.URL, c.URL}
	h.CheckMultipleEndpoints(context.Background(), urls)

	healthy := h.GetHealthyEndpoints(urls)
	require.Len(t, healthy, 2)
	assert.Equal(t, b.URL, healthy[0].URL)
	assert.Equal(t, a.URL, healthy[1].URL)

	best, ok := h.GetBestEndpoint(urls)
	require.True(t, ok)
	assert.Equal(t, b.URL, best.URL)

	// 서킷이 열린 엔드포인트는 제외
	for i := 0; i < 3; i++ {
		h.UpdateCircuitBreaker(b.URL, false, 0)
	}
	healthy = h.GetHealthyEndpoints(urls)
	require.Len(t, healthy, 1)
	assert.Equal(t, a.URL, healthy[0].URL)

	// 빈 목록이면 알려진 모든 엔드포인트 대상
	assert.Len(t, h.GetHealthyEndpoints(nil), 1)
}

func TestGetBestEndpointNoneHealthy(t *testing.T) {
	h := NewHealthService()

	_, ok := h.GetBestEndpoint([]string{testEndpoint})
	assert.False(t, ok)
}

func TestHealthStatsUptime(t *testing.T) {
	backend := newTestBackend(t, nil)
	h := NewHealthService()
	ctx := context.Background()

	h.CheckEndpoint(ctx, backend.URL)
	h.CheckEndpoint(ctx, backend.URL)
	backend.setHealth(http.StatusBadGateway, 0)
	h.CheckEndpoint(ctx, backend.URL)
	h.CheckEndpoint(ctx, backend.URL)

	stats, ok := h.GetHealthStats(backend.URL)
	require.True(t, ok)
	assert.Equal(t, 50.0, stats.Uptime)
	assert.Equal(t, "unhealthy", stats.CurrentStatus)
	assert.Equal(t, types.CircuitClosed, stats.CircuitState)
	assert.Equal(t, 4, stats.TotalChecks)
	assert.Equal(t, 2, stats.Failures)

	all := h.GetAllHealthStats()
	assert.Contains(t, all, backend.URL)

	h.ClearHealthData()
	_, ok = h.GetHealthStats(backend.URL)
	assert.False(t, ok)
}

func TestMonitoringPauseAndResume(t *testing.T) {
	backend := newTestBackend(t, nil)
	h := NewHealthService(WithCheckInterval(20 * time.Millisecond))
	totalChecks := func() int {
		circuit, _ := h.GetCircuitBreaker(backend.URL)
		return circuit.TotalChecks
	}

	h.StartMonitoring([]string{backend.URL})
	t.Cleanup(h.StopMonitoring)
	require.True(t, h.IsMonitoring())

	require.Eventually(t, func() bool { return totalChecks() >= 2 }, 2*time.Second, 5*time.Millisecond)

	h.PauseMonitoring()
	require.True(t, h.IsPaused())
	time.Sleep(60 * time.Millisecond)
	paused := totalChecks()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, paused, totalChecks())

	h.ResumeMonitoring()
	assert.False(t, h.IsPaused())
	require.Eventually(t, func() bool { return totalChecks() > paused }, 2*time.Second, 5*time.Millisecond)

	h.StopMonitoring()
	assert.False(t, h.IsMonitoring())
	assert.False(t, h.IsPaused())
}

func TestStartMonitoringWithoutURLs(t *testing.T) {
	h := NewHealthService()

	h.StartMonitoring(nil)

	assert.False(t, h.IsMonitoring())
	h.PauseMonitoring()
	assert.False(t, h.IsPaused())
}

func TestHealthHistoryIsBounded(t *testing.T) {
	backend := newTestBackend(t, nil)
	h := NewHealthService(WithProbeTimeout(time.Second))

	for i := 0; i < 130; i++ {
		h.CheckEndpoint(context.Background(), backend.URL)
	}

	impl := h.(*healthServiceImpl)
	impl.mutex.RLock()
	history := len(impl.history[backend.URL])
	impl.mutex.RUnlock()
	assert.Equal(t, 100, history)

	stats, ok := h.GetHealthStats(backend.URL)
	require.True(t, ok)
	assert.Equal(t, 100.0, stats.Uptime)
}

func TestCancelledCheckIsNotRecorded(t *testing.T) {
	backend := newTestBackend(t, nil)
	backend.setHealth(http.StatusOK, 2*time.Second)
	h := NewHealthService(WithProbeTimeout(5 * time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	status := h.CheckEndpoint(ctx, backend.URL)

	assert.False(t, status.Healthy)
	_, ok := h.GetEndpointHealth(backend.URL)
	assert.False(t, ok)
	_, ok = h.GetCircuitBreaker(backend.URL)
	assert.False(t, ok)
}

func TestStopMonitoringDoesNotCountInterruptedChecks(t *testing.T) {
	backend := newTestBackend(t, nil)
	backend.setHealth(http.StatusOK, 2*time.Second)
	h := NewHealthService(WithCheckInterval(time.Hour), WithProbeTimeout(5*time.Second))

	h.StartMonitoring([]string{backend.URL})
	time.Sleep(50 * time.Millisecond)
	h.StopMonitoring()
	time.Sleep(100 * time.Millisecond)

	_, ok := h.GetCircuitBreaker(backend.URL)
	assert.False(t, ok)
	assert.False(t, h.IsCircuitOpen(backend.URL))
}
