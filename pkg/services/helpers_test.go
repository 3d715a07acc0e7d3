package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

// fakeClock 테스트에서 시간을 직접 진행시키는 시계
type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

// testBackend /health와 일반 API 경로를 흉내 내는 백엔드
type testBackend struct {
	*httptest.Server
	handler      http.HandlerFunc
	healthDelay  atomic.Int64
	healthStatus atomic.Int64
	hits         atomic.Int64
	lastAuth     atomic.Value
	lastHeaders  atomic.Value
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *testBackend {
	t.Helper()

	b := &testBackend{handler: handler}
	b.healthStatus.Store(http.StatusOK)
	b.lastAuth.Store("")
	b.lastHeaders.Store(http.Header{})
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)
	return b
}

func (b *testBackend) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		if !sleepOrDone(r, time.Duration(b.healthDelay.Load())) {
			return
		}
		writeJSON(w, int(b.healthStatus.Load()), `{"status":"ok","version":"test"}`)
		return
	}

	b.hits.Add(1)
	b.lastAuth.Store(r.Header.Get("Authorization"))
	b.lastHeaders.Store(r.Header.Clone())
	if b.handler == nil {
		writeJSON(w, http.StatusOK, `{"ok":true}`)
		return
	}
	b.handler(w, r)
}

func (b *testBackend) setHealth(status int, delay time.Duration) {
	b.healthStatus.Store(int64(status))
	b.healthDelay.Store(int64(delay))
}

func (b *testBackend) auth() string {
	return b.lastAuth.Load().(string)
}

func (b *testBackend) headers() http.Header {
	return b.lastHeaders.Load().(http.Header)
}

// sleepOrDone 지연 중 클라이언트가 끊으면 false
func sleepOrDone(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-r.Context().Done():
		return false
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	}
}

// closedURL 연결이 거부되는 주소
func closedURL(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	return url
}

func developmentProfiles(backends ...string) map[types.EnvironmentType]types.EnvironmentProfile {
	profiles := configs.DefaultEnvironmentProfiles()
	dev := profiles[types.EnvDevelopment]
	dev.Backends = backends
	profiles[types.EnvDevelopment] = dev
	return profiles
}

type clientFixture struct {
	client   ApiClient
	health   HealthService
	registry ConfigRegistry
}

func newClientFixture(t *testing.T, backends []string, opts ...ApiClientOption) *clientFixture {
	t.Helper()

	detector := NewEnvironmentDetector(types.RuntimeSignals{ForceEnvironment: "development"}, developmentProfiles(backends...))
	health := NewHealthService(WithCheckInterval(time.Hour), WithProbeTimeout(time.Second))
	registry := NewConfigRegistry(NewMemoryStorage("client_test", 0), WithSweepInterval(time.Hour))

	opts = append([]ApiClientOption{WithRetryDelay(0), WithSelectionInterval(time.Hour)}, opts...)
	client := NewApiClient(ApiClientDeps{
		Detector: detector,
		Health:   health,
		Registry: registry,
		Metrics:  NewMetricsService(),
	}, opts...)

	t.Cleanup(func() {
		client.Shutdown()
		_ = registry.Close()
	})
	return &clientFixture{client: client, health: health, registry: registry}
}

// initAndSettle 초기화 후 모니터링의 첫 프로브까지 끝나기를 기다립니다
func (f *clientFixture) initAndSettle(t *testing.T, urls ...string) {
	t.Helper()

	require.NoError(t, f.client.Init(context.Background()))
	for _, url := range urls {
		require.Eventually(t, func() bool {
			circuit, ok := f.health.GetCircuitBreaker(url)
			return ok && circuit.TotalChecks >= 2
		}, 3*time.Second, 10*time.Millisecond, "probes for %s", url)
	}
}
