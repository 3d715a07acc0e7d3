package services

import (
	"sync"
	"time"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// BalancerService 엔드포인트 선택 서비스 인터페이스
type BalancerService interface {
	// 엔드포인트 선택
	Choose(candidates []string) (EndpointChoice, bool)
	Failover(pool *types.EndpointPool) (next string, previous string)

	// 통계
	GetStats() map[string]interface{}
	ResetStats()
}

// EndpointChoice 선택 결과
type EndpointChoice struct {
	URL                 string
	Reason              types.SelectionReason
	ResponseTimeMs      *int64
	HealthyAlternatives int
}

// balancerServiceImpl 엔드포인트 선택 서비스 구현체
type balancerServiceImpl struct {
	healthService HealthService
	mutex         sync.Mutex
	stats         map[string]int64
	lastReset     time.Time
}

// NewBalancerService 새 엔드포인트 선택 서비스 생성
func NewBalancerService(healthService HealthService) BalancerService {
	return &balancerServiceImpl{
		healthService: healthService,
		stats:         newBalancerStats(),
		lastReset:     time.Now(),
	}
}

func newBalancerStats() map[string]int64 {
	return map[string]int64{
		"selections": 0,
		"fallbacks":  0,
		"failovers":  0,
	}
}

// Choose 가장 빠른 건강한 엔드포인트를 선택합니다
// 건강한 엔드포인트가 없으면 환경에서 정의한 첫 번째 후보를 사용합니다
func (b *balancerServiceImpl) Choose(candidates []string) (EndpointChoice, bool) {
	if len(candidates) == 0 {
		return EndpointChoice{}, false
	}

	b.mutex.Lock()
	b.stats["selections"]++
	b.mutex.Unlock()

	healthy := b.healthService.GetHealthyEndpoints(candidates)
	if len(healthy) > 0 {
		best := healthy[0]
		responseTime := best.ResponseTimeMs
		return EndpointChoice{
			URL:                 best.URL,
			Reason:              types.ReasonBestPerformance,
			ResponseTimeMs:      &responseTime,
			HealthyAlternatives: len(healthy) - 1,
		}, true
	}

	utils.Warnf("건강한 엔드포인트가 없어 첫 번째 후보를 사용합니다: %s", candidates[0])
	b.mutex.Lock()
	b.stats["fallbacks"]++
	b.mutex.Unlock()

	return EndpointChoice{
		URL:    candidates[0],
		Reason: types.ReasonFallbackOnlyOption,
	}, true
}

// Failover 라운드 로빈 방식으로 다음 후보로 이동
func (b *balancerServiceImpl) Failover(pool *types.EndpointPool) (string, string) {
	next, previous := pool.Next()

	b.mutex.Lock()
	b.stats["failovers"]++
	b.mutex.Unlock()

	return next, previous
}

// GetStats 통계 정보 조회
func (b *balancerServiceImpl) GetStats() map[string]interface{} {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	result := make(map[string]interface{}, len(b.stats)+1)
	for k, v := range b.stats {
		result[k] = v
	}
	result["since"] = b.lastReset.Format(time.RFC3339)
	return result
}

// ResetStats 통계 초기화
func (b *balancerServiceImpl) ResetStats() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.stats = newBalancerStats()
	b.lastReset = time.Now()
}
