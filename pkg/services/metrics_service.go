package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// 요청 결과 라벨
const (
	OutcomeSuccess     = "success"
	OutcomeClientError = "client_error"
	OutcomeServerError = "server_error"
	OutcomeTransport   = "transport_error"
	OutcomeTimeout     = "timeout"
	OutcomeCircuitOpen = "circuit_open"
)

// MetricsService는 리졸버 동작을 프로메테우스 지표로 기록합니다
// nil 인스턴스는 아무것도 기록하지 않습니다
type MetricsService struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	healthChecks    *prometheus.CounterVec
	healthDuration  *prometheus.HistogramVec
	circuitState    *prometheus.GaugeVec
	activeEndpoint  *prometheus.GaugeVec
	failovers       prometheus.Counter
}

// NewMetricsService 새 메트릭 서비스 생성
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolver_requests_total",
			Help: "Outbound request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resolver_request_duration_seconds",
			Help:    "Outbound request attempt latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		healthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resolver_health_checks_total",
			Help: "Health probes by endpoint and result.",
		}, []string{"endpoint", "result"}),
		healthDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "resolver_health_check_duration_seconds",
			Help:    "Health probe latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "resolver_circuit_state",
			Help: "Circuit breaker state per endpoint (0 closed, 1 half-open, 2 open).",
		}, []string{"endpoint"}),
		activeEndpoint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "resolver_active_endpoint",
			Help: "1 for the endpoint currently receiving traffic.",
		}, []string{"endpoint"}),
		failovers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "resolver_failovers_total",
			Help: "Round robin switches after retryable failures.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.healthChecks,
		m.healthDuration,
		m.circuitState,
		m.activeEndpoint,
		m.failovers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest 요청 시도 결과 기록
func (m *MetricsService) ObserveRequest(endpoint string, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	if outcome != OutcomeCircuitOpen {
		m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// ObserveHealthCheck 헬스 체크 결과 기록
func (m *MetricsService) ObserveHealthCheck(endpoint string, healthy bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "healthy"
	if !healthy {
		result = "unhealthy"
	}
	m.healthChecks.WithLabelValues(endpoint, result).Inc()
	m.healthDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// SetCircuitState 서킷 상태 게이지 갱신
func (m *MetricsService) SetCircuitState(endpoint string, state types.CircuitState) {
	if m == nil {
		return
	}
	m.circuitState.WithLabelValues(endpoint).Set(utils.CircuitStateValue(state))
}

// SetActiveEndpoint 활성 엔드포인트 게이지 갱신
func (m *MetricsService) SetActiveEndpoint(endpoint string) {
	if m == nil {
		return
	}
	m.activeEndpoint.Reset()
	if endpoint != "" {
		m.activeEndpoint.WithLabelValues(endpoint).Set(1)
	}
}

// IncFailover 페일오버 횟수 증가
func (m *MetricsService) IncFailover() {
	if m == nil {
		return
	}
	m.failovers.Inc()
}

// Registry 프로메테우스 레지스트리 반환
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler /metrics 핸들러 반환
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
