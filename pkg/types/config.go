package types

import "time"

// ConfigEntry는 설정 레지스트리의 단일 항목입니다 (timestamp, ttl은 밀리초)
type ConfigEntry struct {
	Value      interface{} `json:"value"`
	Timestamp  int64       `json:"timestamp"`
	TTL        int64       `json:"ttl"`
	Persistent bool        `json:"persistent"`
	Source     string      `json:"source"`
}

// IsExpired는 주어진 시각 기준으로 항목이 만료되었는지 확인합니다
func (e *ConfigEntry) IsExpired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.UnixMilli()-e.Timestamp > e.TTL
}

// SelectionReason은 활성 엔드포인트가 선택된 이유입니다
type SelectionReason string

const (
	ReasonBestPerformance    SelectionReason = "best_performance"
	ReasonFallbackOnlyOption SelectionReason = "fallback_only_option"
	ReasonFailover           SelectionReason = "failover"
	ReasonForced             SelectionReason = "forced"
	ReasonCached             SelectionReason = "cached"
)

// ActiveEndpointSelection은 현재 엔드포인트 선택 정보입니다
type ActiveEndpointSelection struct {
	URL                 string          `json:"url"`
	SelectedAt          int64           `json:"selectedAt"`
	ResponseTimeMs      *int64          `json:"responseTime,omitempty"`
	HealthyAlternatives int             `json:"healthyAlternatives,omitempty"`
	SelectionReason     SelectionReason `json:"selectionReason"`
	SwitchedFrom        string          `json:"switchedFrom,omitempty"`
}

// RecentEndpoint는 최근 사용한 엔드포인트 기록입니다
type RecentEndpoint struct {
	URL      string `json:"url"`
	LastUsed int64  `json:"lastUsed"`
}

// MetricSample은 성능 지표 측정값 하나입니다
type MetricSample struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

// ConfigSummary는 레지스트리 요약 정보입니다
type ConfigSummary struct {
	TotalEntries    int              `json:"totalEntries"`
	CacheSize       int              `json:"cacheSize"`
	Observers       int              `json:"observers"`
	RecentEndpoints int              `json:"recentEndpoints"`
	ActiveEndpoint  string           `json:"activeEndpoint"`
	Environment     *EnvironmentType `json:"environment,omitempty"`
}

// ConfigObserver는 설정 변경 알림 콜백입니다 (삭제 시 value는 nil)
type ConfigObserver func(key string, value interface{})

// ConfigObserverFilter는 알림 대상을 거르는 조건입니다
type ConfigObserverFilter func(key string, value interface{}) bool
