package utils

import (
	"math"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
)

// CalculateUptime 헬스 체크 이력 기반 가동률(%) 계산
func CalculateUptime(history []types.HealthRecord) float64 {
	if len(history) == 0 {
		return 0
	}

	healthy := 0
	for _, record := range history {
		if record.Healthy {
			healthy++
		}
	}
	return round2(float64(healthy) / float64(len(history)) * 100)
}

// AverageResponseTime 응답 시간이 기록된 이력의 평균 응답 시간(ms) 계산
func AverageResponseTime(history []types.HealthRecord) float64 {
	var sum int64
	count := 0
	for _, record := range history {
		if record.ResponseTimeMs > 0 {
			sum += record.ResponseTimeMs
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Round(float64(sum) / float64(count))
}

// CircuitStateValue 서킷 상태를 메트릭 게이지 값으로 변환 (0 closed, 1 half-open, 2 open)
func CircuitStateValue(state types.CircuitState) float64 {
	switch state {
	case types.CircuitOpen:
		return 2
	case types.CircuitHalfOpen:
		return 1
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
