package configs

import (
	"time"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

// 내부 관리 경로
var InternalPaths = map[string]bool{
	"/status":   true,
	"/metrics":  true,
	"/internal": true,
}

// 저장소 드라이버
const (
	StorageMemory = "memory"
	StorageBolt   = "bolt"
	StorageRedis  = "redis"
)

// 타임아웃 설정
const (
	// 헬스 체크 타임아웃
	HealthCheckTimeout = 5 * time.Second
	// 헬스 체크 주기
	HealthCheckInterval = 30 * time.Second
	// 엔드포인트 선택 시 개별 프로브 상한
	SelectionTimeout = 10 * time.Second
	// 엔드포인트 재선택 주기
	SelectionInterval = 60 * time.Second
	// 외부 요청 타임아웃
	RequestTimeout = 30 * time.Second
	// SSE 하트비트 주기
	SseHeartbeatInterval = 30 * time.Second
)

// 재시도 설정
const (
	// 최대 재시도 횟수
	MaxRetryAttempts = 3
	// 재시도 대기 시간
	RetryBackoff = 1 * time.Second
)

// 서킷 브레이커 임계값
const (
	CircuitFailureThreshold = 3                // OPEN 전환 연속 실패 수
	CircuitRecoveryTimeout  = 60 * time.Second // HALF_OPEN 전환 대기 시간
	HealthHistorySize       = 100              // URL별 이력 보관 수
	HealthDataMaxBytes      = 1 << 20          // 헬스 응답 본문 최대 크기
)

// 설정 레지스트리 기본값
const (
	DefaultStorageKey      = "izishop_api_config"
	DefaultConfigTTL       = 300 * time.Second
	DefaultCacheCapacity   = 100
	DefaultSweepInterval   = 5 * time.Minute
	HealthCacheTTL         = 30 * time.Second
	MetricsCacheTTL        = time.Hour
	MaxMetricSamples       = 50
	AverageMetricWindow    = 10
	ActiveEndpointTTL      = 300 * time.Second
	RecentEndpointsTTL     = 24 * time.Hour
	MaxRecentEndpoints     = 5
	EnvironmentConfigTTL   = 24 * time.Hour
	FeatureFlagTTL         = 24 * time.Hour
	DefaultFallbackBackend = "https://izishop-backend.onrender.com"
)

// 환경 감지
const (
	MinDetectionConfidence     = 0.6
	DefaultDetectionConfidence = 0.5
)

// 기능 플래그 이름
const (
	FeatureDebugging = "debugging"
	FeatureHotReload = "hotReload"
	FeatureMockData  = "mockData"
)

// FeatureNames 알려진 기능 플래그 목록
var FeatureNames = []string{FeatureDebugging, FeatureHotReload, FeatureMockData}

// DefaultEnvironmentProfiles 환경별 후보 백엔드 및 기능 플래그 정적 테이블
// 호출마다 새 복사본을 반환합니다
func DefaultEnvironmentProfiles() map[types.EnvironmentType]types.EnvironmentProfile {
	return map[types.EnvironmentType]types.EnvironmentProfile{
		types.EnvDevelopment: {
			Type:     types.EnvDevelopment,
			Priority: 1,
			Backends: []string{
				"http://127.0.0.1:8000",
				"http://localhost:8000",
				"http://localhost:3001",
			},
			Features: map[string]bool{FeatureDebugging: true, FeatureHotReload: true, FeatureMockData: true},
		},
		types.EnvStaging: {
			Type:     types.EnvStaging,
			Priority: 2,
			Backends: []string{
				"https://staging-api.izishopin.com",
				"https://izishop-backend-staging.onrender.com",
				"http://localhost:8000",
			},
			Features: map[string]bool{FeatureDebugging: true, FeatureHotReload: false, FeatureMockData: false},
		},
		types.EnvPreview: {
			Type:     types.EnvPreview,
			Priority: 2,
			Backends: []string{
				"https://staging-api.izishopin.com",
				"http://localhost:8000",
			},
			Features: map[string]bool{FeatureDebugging: false, FeatureHotReload: false, FeatureMockData: false},
		},
		types.EnvProduction: {
			Type:     types.EnvProduction,
			Priority: 3,
			Backends: []string{
				"https://izishop-backend.onrender.com",
				"https://api.izishopin.com",
			},
			Features: map[string]bool{FeatureDebugging: false, FeatureHotReload: false, FeatureMockData: false},
		},
	}
}
