package interfaces

import (
	"context"
	"encoding/json"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

// ApiClient 컨트롤러와 미들웨어가 사용하는 API 클라이언트 인터페이스
type ApiClient interface {
	// 요청
	Request(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool) (json.RawMessage, error)

	// 엔드포인트 관리
	SelectBestEndpoint(ctx context.Context) (types.ActiveEndpointSelection, error)
	SwitchToNextEndpoint() string
	ForceEndpoint(url string) error
	CheckEndpoint(ctx context.Context, url string, fresh bool) types.EndpointHealth

	// 인증 토큰
	SetTokens(accessToken string, refreshToken string)
	ClearTokens()

	// 상태 조회
	CurrentEndpoint() string
	Environment() (types.Environment, bool)
	ServiceStatus() types.ServiceStatus
	HealthStatus() map[string]*types.HealthStats
	BalancerStats() map[string]interface{}
}

// ConfigRegistry 상태 조회와 관리 API가 사용하는 설정 레지스트리 인터페이스
type ConfigRegistry interface {
	Subscribe(callback types.ConfigObserver, filter types.ConfigObserverFilter) (unsubscribe func())
	Summary() types.ConfigSummary
	ActiveEndpointSelection() (types.ActiveEndpointSelection, bool)
	RecentEndpoints() []types.RecentEndpoint
	Export() ([]byte, error)
	Import(data []byte) (int, error)
}

// HealthMonitor 관리 API가 사용하는 헬스 모니터링 인터페이스
type HealthMonitor interface {
	GetCircuitBreaker(url string) (types.CircuitBreaker, bool)
	ResetCircuitBreaker(url string)
	PauseMonitoring()
	ResumeMonitoring()
	IsMonitoring() bool
	IsPaused() bool
}

// RouterService는 리졸버 서비스 수명 주기 인터페이스입니다
type RouterService interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
