package utils

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("s3cret", "operator", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAndValidateAdminToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)
	assert.Equal(t, AdminScope, claims.Scope)
}

func TestAdminTokenRejections(t *testing.T) {
	valid, err := GenerateAdminToken("s3cret", "operator", time.Hour)
	require.NoError(t, err)
	expired, err := GenerateAdminToken("s3cret", "operator", -time.Minute)
	require.NoError(t, err)

	wrongScope, err := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		Scope: "shop:read",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "s3cret", expired},
		{"wrong scope", "s3cret", wrongScope},
		{"garbage", "s3cret", "not-a-token"},
		{"empty secret", "", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAndValidateAdminToken(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}

	_, err = GenerateAdminToken("", "operator", time.Hour)
	assert.Error(t, err)
}

func TestCalculateUptime(t *testing.T) {
	history := []types.HealthRecord{
		{Healthy: true, ResponseTimeMs: 100},
		{Healthy: true, ResponseTimeMs: 201},
		{Healthy: false},
	}

	assert.Equal(t, 66.67, CalculateUptime(history))
	assert.Equal(t, 151.0, AverageResponseTime(history))
	assert.Zero(t, CalculateUptime(nil))
	assert.Zero(t, AverageResponseTime(nil))
}

func TestCircuitStateValue(t *testing.T) {
	assert.Equal(t, 0.0, CircuitStateValue(types.CircuitClosed))
	assert.Equal(t, 1.0, CircuitStateValue(types.CircuitHalfOpen))
	assert.Equal(t, 2.0, CircuitStateValue(types.CircuitOpen))
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"http://a.test/", "/api/products", "http://a.test/api/products"},
		{"http://a.test", "api/products", "http://a.test/api/products"},
		{"http://a.test/", "", "http://a.test"},
		{"http://a.test", "https://b.test/x", "https://b.test/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinURL(tt.base, tt.path))
	}
}

func TestIsInternalPath(t *testing.T) {
	path := NewPath(map[string]bool{"/status": true, "/internal": true})

	assert.True(t, path.IsInternalPath("/status"))
	assert.True(t, path.IsInternalPath("/internal/endpoint/force"))
	assert.False(t, path.IsInternalPath("/statusboard"))
	assert.False(t, path.IsInternalPath("/api/products"))
}

func TestSseManagerBroadcast(t *testing.T) {
	manager := NewSseManager()
	first := make(chan string, 1)
	blocked := make(chan string)

	manager.Register("first", first)
	manager.Register("blocked", blocked)
	require.Equal(t, 2, manager.Count())

	manager.Broadcast("hello")

	assert.Equal(t, "hello", <-first)
	assert.Equal(t, 1, manager.Count())

	_, open := <-blocked
	assert.False(t, open)

	manager.Deregister("first")
	assert.Zero(t, manager.Count())
	manager.Deregister("first")
}

func TestSendSseEvent(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, SendSseEvent(w, map[string]string{"type": "heartbeat"}))

	assert.Equal(t, "data: {\"type\":\"heartbeat\"}\n\n", buf.String())
}

func TestInitLoggerWritesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "resolver.log")
	InitLogger(LevelDebug, file)
	t.Cleanup(func() { InitLogger(LevelInfo, "") })

	Infof("엔드포인트 선택: %s", "http://a.test")
	_ = Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://a.test")
}

func TestGenerateRequestId(t *testing.T) {
	first := NewGenerate().GenerateRequestId()
	second := GenerateRequestId()

	assert.Len(t, first, 36)
	assert.NotEqual(t, first, second)
}
