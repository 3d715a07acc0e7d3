package types

import (
	"time"
)

// CircuitState는 엔드포인트별 서킷 브레이커 상태입니다
type CircuitState string

const (
	CircuitClosed   CircuitState = "CLOSED"    // 정상 상태
	CircuitOpen     CircuitState = "OPEN"      // 트래픽 차단
	CircuitHalfOpen CircuitState = "HALF_OPEN" // 복구 확인 중
	CircuitUnknown  CircuitState = "UNKNOWN"   // 아직 체크되지 않음
)

// EndpointHealth는 엔드포인트의 마지막 헬스 체크 결과입니다
type EndpointHealth struct {
	URL            string                 `json:"url"`
	Healthy        bool                   `json:"healthy"`
	ResponseTimeMs int64                  `json:"responseTime"`
	StatusCode     int                    `json:"statusCode"`
	LastCheck      time.Time              `json:"lastCheck"`
	Error          string                 `json:"error,omitempty"`
	HealthData     map[string]interface{} `json:"healthData,omitempty"`
	Timestamp      int64                  `json:"timestamp"`
}

// HealthRecord는 헬스 체크 이력 한 건입니다
type HealthRecord struct {
	Timestamp      int64 `json:"timestamp"`
	Healthy        bool  `json:"healthy"`
	ResponseTimeMs int64 `json:"responseTime"`
	StatusCode     int   `json:"statusCode"`
}

// CircuitBreaker는 엔드포인트별 서킷 브레이커 상태 스냅샷입니다
type CircuitBreaker struct {
	Failures          int          `json:"failures"`
	Successes         int          `json:"successes"`
	State             CircuitState `json:"state"`
	LastFailure       *time.Time   `json:"lastFailure,omitempty"`
	LastSuccess       *time.Time   `json:"lastSuccess,omitempty"`
	AvgResponseTimeMs float64      `json:"avgResponseTime"`
	TotalChecks       int          `json:"totalChecks"`
}

// HealthStats는 모니터링 대시보드용 엔드포인트 통계입니다
type HealthStats struct {
	URL               string                 `json:"url"`
	CurrentStatus     string                 `json:"currentStatus"`
	LastCheck         time.Time              `json:"lastCheck"`
	ResponseTimeMs    int64                  `json:"responseTime"`
	Uptime            float64                `json:"uptime"`
	AvgResponseTimeMs float64                `json:"avgResponseTime"`
	CircuitState      CircuitState           `json:"circuitState"`
	TotalChecks       int                    `json:"totalChecks"`
	Failures          int                    `json:"failures"`
	Successes         int                    `json:"successes"`
	Error             string                 `json:"error,omitempty"`
	HealthData        map[string]interface{} `json:"healthData,omitempty"`
}
