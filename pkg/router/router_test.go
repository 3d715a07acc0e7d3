package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"authorization": r.Header.Get("Authorization")})
	}))
	t.Cleanup(server.Close)
	return server
}

func loadTestConfig(t *testing.T, backendURL string) *configs.EnvConfig {
	t.Helper()

	dir := t.TempDir()
	catalog := filepath.Join(dir, "backends.yaml")
	content := "environments:\n  development:\n    backends:\n      - " + backendURL + "\n"
	require.NoError(t, os.WriteFile(catalog, []byte(content), 0o600))

	t.Setenv("FORCE_ENVIRONMENT", "development")
	t.Setenv("BACKENDS_FILE", catalog)
	t.Setenv("STORAGE_DRIVER", configs.StorageBolt)
	t.Setenv("BOLT_PATH", filepath.Join(dir, "resolver.db"))
	t.Setenv("API_TOKEN", "seed-token")
	t.Setenv("JWT_SECRET", "router-secret")
	t.Setenv("RETRY_DELAY", "0s")

	config, err := configs.LoadConfig()
	require.NoError(t, err)
	return config
}

func startWithoutListener(t *testing.T, rs *ResolverService) {
	t.Helper()

	require.NoError(t, rs.Build(context.Background()))
	require.NoError(t, rs.client.Init(context.Background()))
	require.NoError(t, rs.setupRoutes())
}

func TestResolverServiceServesRoutes(t *testing.T) {
	backend := newBackend(t)
	rs := NewResolverService(loadTestConfig(t, backend.URL), "test")
	startWithoutListener(t, rs)
	t.Cleanup(func() { _ = rs.Shutdown(context.Background()) })

	env, ok := rs.Detector().Current()
	require.True(t, ok)
	assert.Equal(t, types.EnvDevelopment, env.Type)
	assert.Equal(t, backend.URL, rs.Client().CurrentEndpoint())
	assert.True(t, rs.Health().IsMonitoring())

	resp, err := rs.App().Test(httptest.NewRequest(http.MethodGet, "/api/profile", nil), 5000)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Bearer seed-token")
}

func TestResolverServiceRestoresPersistedState(t *testing.T) {
	backend := newBackend(t)
	config := loadTestConfig(t, backend.URL)

	first := NewResolverService(config, "test")
	startWithoutListener(t, first)
	first.Client().SetTokens("rotated-token", "refresh-token")
	require.NoError(t, first.Shutdown(context.Background()))

	second := NewResolverService(config, "test")
	require.NoError(t, second.Build(context.Background()))
	t.Cleanup(func() { _ = second.Shutdown(context.Background()) })

	// 저장된 토큰이 있으면 API_TOKEN으로 덮어쓰지 않음
	assert.Equal(t, "rotated-token", second.registry.AccessToken())
	assert.Equal(t, "refresh-token", second.registry.RefreshToken())
	assert.Equal(t, backend.URL, second.registry.ActiveEndpoint())
}

func TestResolverServiceBuildFailsOnMissingCatalog(t *testing.T) {
	config := loadTestConfig(t, "http://a.test")
	config.Detection.BackendsFile = filepath.Join(t.TempDir(), "missing.yaml")

	err := NewResolverService(config, "test").Build(context.Background())

	assert.Error(t, err)
}

func TestShutdownWithoutStart(t *testing.T) {
	rs := NewResolverService(loadTestConfig(t, "http://a.test"), "test")

	assert.NoError(t, rs.Shutdown(context.Background()))
}
