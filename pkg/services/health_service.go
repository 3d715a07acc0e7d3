package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// HealthService 엔드포인트 헬스 체크 및 서킷 브레이커 서비스 인터페이스
type HealthService interface {
	// 헬스 체크
	CheckEndpoint(ctx context.Context, url string) types.EndpointHealth
	CheckMultipleEndpoints(ctx context.Context, urls []string) []types.EndpointHealth

	// 서킷 브레이커
	UpdateCircuitBreaker(url string, success bool, latencyMs int64)
	IsCircuitOpen(url string) bool
	ResetCircuitBreaker(url string)

	// 조회
	GetHealthyEndpoints(urls []string) []types.EndpointHealth
	GetBestEndpoint(urls []string) (types.EndpointHealth, bool)
	GetEndpointHealth(url string) (types.EndpointHealth, bool)
	GetCircuitBreaker(url string) (types.CircuitBreaker, bool)
	GetHealthStats(url string) (*types.HealthStats, bool)
	GetAllHealthStats() map[string]*types.HealthStats
	ClearHealthData()

	// 모니터링
	StartMonitoring(urls []string)
	StopMonitoring()
	PauseMonitoring()
	ResumeMonitoring()
	IsMonitoring() bool
	IsPaused() bool
}

// HealthOption 헬스 서비스 옵션
type HealthOption func(*healthServiceImpl)

// WithCheckInterval 주기적 헬스 체크 간격 설정
func WithCheckInterval(interval time.Duration) HealthOption {
	return func(h *healthServiceImpl) {
		if interval > 0 {
			h.checkInterval = interval
		}
	}
}

// WithProbeTimeout 개별 프로브 타임아웃 설정
func WithProbeTimeout(timeout time.Duration) HealthOption {
	return func(h *healthServiceImpl) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithHealthClock 시계 주입 (테스트용)
func WithHealthClock(now func() time.Time) HealthOption {
	return func(h *healthServiceImpl) {
		if now != nil {
			h.now = now
		}
	}
}

// WithHealthHTTPClient 프로브용 HTTP 클라이언트 주입
func WithHealthHTTPClient(client *http.Client) HealthOption {
	return func(h *healthServiceImpl) {
		if client != nil {
			h.client = client
		}
	}
}

// WithHealthMetrics 프로브 결과를 기록할 메트릭 서비스 설정
func WithHealthMetrics(metrics *MetricsService) HealthOption {
	return func(h *healthServiceImpl) {
		h.metrics = metrics
	}
}

// circuitEntry 서킷 브레이커 내부 상태
type circuitEntry struct {
	types.CircuitBreaker
	successLatencyTotal int64
}

// healthServiceImpl 헬스 체크 서비스 구현체
type healthServiceImpl struct {
	client        *http.Client
	checkInterval time.Duration
	timeout       time.Duration
	now           func() time.Time
	metrics       *MetricsService

	endpoints map[string]types.EndpointHealth
	circuits  map[string]*circuitEntry
	history   map[string][]types.HealthRecord
	mutex     sync.RWMutex

	monitorMutex sync.Mutex
	monitoring   bool
	paused       bool
	monitorURLs  []string
	stopCh       chan struct{}
	cancel       context.CancelFunc
}

// NewHealthService 새 헬스 체크 서비스 생성
func NewHealthService(opts ...HealthOption) HealthService {
	h := &healthServiceImpl{
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     30 * time.Second,
			},
		},
		checkInterval: configs.HealthCheckInterval,
		timeout:       configs.HealthCheckTimeout,
		now:           time.Now,
		endpoints:     make(map[string]types.EndpointHealth),
		circuits:      make(map[string]*circuitEntry),
		history:       make(map[string][]types.HealthRecord),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// CheckEndpoint 특정 엔드포인트 헬스 체크 수행
// 실패는 오류로 반환하지 않고 비정상 상태로 기록합니다
func (h *healthServiceImpl) CheckEndpoint(ctx context.Context, url string) types.EndpointHealth {
	probeCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	status := types.EndpointHealth{URL: url}

	statusCode, healthData, err := h.probe(probeCtx, url)
	elapsed := time.Since(start)
	now := h.now()

	status.ResponseTimeMs = elapsed.Milliseconds()
	status.StatusCode = statusCode
	status.LastCheck = now
	status.Timestamp = now.UnixMilli()

	// 모니터링 중지나 호출자 취소로 끊긴 체크는 결과와 서킷에 반영하지 않음
	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		status.Error = "health check canceled"
		utils.Debugf("헬스 체크 취소 (%s)", url)
		return status
	}

	if err != nil {
		status.Healthy = false
		status.Error = probeErrorMessage(probeCtx, err, h.timeout)
		status.HealthData = map[string]interface{}{"status": "error", "error": status.Error}
		utils.Warnf("헬스 체크 실패 (%s): %s (%dms)", url, status.Error, status.ResponseTimeMs)
	} else {
		status.Healthy = statusCode >= 200 && statusCode < 300
		if healthData == nil {
			healthData = map[string]interface{}{"status": healthLabel(status.Healthy)}
		}
		status.HealthData = healthData
		if status.Healthy {
			utils.Debugf("헬스 체크 성공 (%s): %dms (%d)", url, status.ResponseTimeMs, statusCode)
		} else {
			utils.Warnf("헬스 체크 실패 (%s): 응답 코드 %d (%dms)", url, statusCode, status.ResponseTimeMs)
		}
	}

	h.record(status)
	h.UpdateCircuitBreaker(url, status.Healthy, status.ResponseTimeMs)
	h.metrics.ObserveHealthCheck(url, status.Healthy, elapsed)

	return status
}

// probe GET {url}/health 요청을 보내고 상태 코드와 JSON 본문을 반환합니다
func (h *healthServiceImpl) probe(ctx context.Context, url string) (int, map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, utils.JoinURL(url, "/health"), nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Health-Check", "true")

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	var healthData map[string]interface{}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, configs.HealthDataMaxBytes))
		if readErr == nil {
			if jsonErr := json.Unmarshal(body, &healthData); jsonErr != nil {
				utils.Debugf("헬스 응답 파싱 실패 (%s): %v", url, jsonErr)
				healthData = nil
			}
		}
	}
	// 연결 재사용을 위해 남은 본문 버림
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, configs.HealthDataMaxBytes))

	return resp.StatusCode, healthData, nil
}

func probeErrorMessage(ctx context.Context, err error, timeout time.Duration) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out after " + timeout.String()
	}
	return err.Error()
}

func healthLabel(healthy bool) string {
	if healthy {
		return "healthy"
	}
	return "unhealthy"
}

// record 최신 상태 저장 및 이력 추가
func (h *healthServiceImpl) record(status types.EndpointHealth) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.endpoints[status.URL] = status

	history := append(h.history[status.URL], types.HealthRecord{
		Timestamp:      status.Timestamp,
		Healthy:        status.Healthy,
		ResponseTimeMs: status.ResponseTimeMs,
		StatusCode:     status.StatusCode,
	})
	if len(history) > configs.HealthHistorySize {
		history = history[len(history)-configs.HealthHistorySize:]
	}
	h.history[status.URL] = history
}

// CheckMultipleEndpoints 여러 엔드포인트를 동시에 체크합니다. 결과는 입력 순서를 유지합니다.
func (h *healthServiceImpl) CheckMultipleEndpoints(ctx context.Context, urls []string) []types.EndpointHealth {
	results := make([]types.EndpointHealth, len(urls))

	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			results[i] = h.CheckEndpoint(ctx, url)
			return nil
		})
	}
	_ = g.Wait()

	utils.Debugf("헬스 체크 완료: %d개 엔드포인트", len(urls))
	return results
}

// UpdateCircuitBreaker 프로브 또는 요청 결과로 서킷 상태 갱신
func (h *healthServiceImpl) UpdateCircuitBreaker(url string, success bool, latencyMs int64) {
	h.mutex.Lock()
	circuit := h.circuitLocked(url)
	now := h.now()

	circuit.TotalChecks++
	if success {
		circuit.Successes++
		circuit.LastSuccess = &now
		circuit.successLatencyTotal += latencyMs
		circuit.AvgResponseTimeMs = float64(circuit.successLatencyTotal) / float64(circuit.Successes)

		if circuit.State != types.CircuitClosed || circuit.Failures > 0 {
			utils.Infof("서킷 브레이커 CLOSED 전환: %s", url)
		}
		circuit.Failures = 0
		circuit.State = types.CircuitClosed
	} else {
		circuit.Failures++
		circuit.LastFailure = &now

		// OPEN은 CLOSED 상태에서만 전환
		if circuit.State == types.CircuitClosed && circuit.Failures >= configs.CircuitFailureThreshold {
			circuit.State = types.CircuitOpen
			utils.Warnf("서킷 브레이커 OPEN 전환: %s (연속 실패 %d회)", url, circuit.Failures)
		}
	}
	state := circuit.State
	h.mutex.Unlock()

	h.metrics.SetCircuitState(url, state)
}

func (h *healthServiceImpl) circuitLocked(url string) *circuitEntry {
	circuit, ok := h.circuits[url]
	if !ok {
		circuit = &circuitEntry{CircuitBreaker: types.CircuitBreaker{State: types.CircuitClosed}}
		h.circuits[url] = circuit
	}
	return circuit
}

// IsCircuitOpen 서킷이 열려 있는지 확인합니다
// 마지막 실패 후 복구 대기 시간이 지나면 HALF_OPEN으로 전환하고 false를 반환합니다
func (h *healthServiceImpl) IsCircuitOpen(url string) bool {
	h.mutex.Lock()
	open, transitioned := h.isCircuitOpenLocked(url)
	h.mutex.Unlock()

	if transitioned {
		h.metrics.SetCircuitState(url, types.CircuitHalfOpen)
	}
	return open
}

func (h *healthServiceImpl) isCircuitOpenLocked(url string) (open bool, transitioned bool) {
	circuit, ok := h.circuits[url]
	if !ok || circuit.State != types.CircuitOpen {
		return false, false
	}

	if circuit.LastFailure == nil || h.now().Sub(*circuit.LastFailure) >= configs.CircuitRecoveryTimeout {
		circuit.State = types.CircuitHalfOpen
		utils.Infof("서킷 브레이커 HALF_OPEN 전환: %s", url)
		return false, true
	}
	return true, false
}

// ResetCircuitBreaker 서킷 브레이커 수동 초기화
func (h *healthServiceImpl) ResetCircuitBreaker(url string) {
	h.mutex.Lock()
	circuit, ok := h.circuits[url]
	if ok {
		circuit.Failures = 0
		circuit.State = types.CircuitClosed
	}
	h.mutex.Unlock()

	if ok {
		h.metrics.SetCircuitState(url, types.CircuitClosed)
		utils.Infof("서킷 브레이커 수동 초기화: %s", url)
	}
}

// GetHealthyEndpoints 정상이면서 서킷이 열려 있지 않은 엔드포인트를 응답 시간 순으로 반환
// urls가 비어 있으면 알려진 모든 엔드포인트를 대상으로 합니다
func (h *healthServiceImpl) GetHealthyEndpoints(urls []string) []types.EndpointHealth {
	h.mutex.Lock()
	if len(urls) == 0 {
		urls = make([]string, 0, len(h.endpoints))
		for url := range h.endpoints {
			urls = append(urls, url)
		}
	}

	healthy := make([]types.EndpointHealth, 0, len(urls))
	var halfOpened []string
	for _, url := range urls {
		status, ok := h.endpoints[url]
		if !ok || !status.Healthy {
			continue
		}
		open, transitioned := h.isCircuitOpenLocked(url)
		if transitioned {
			halfOpened = append(halfOpened, url)
		}
		if open {
			continue
		}
		healthy = append(healthy, status)
	}
	h.mutex.Unlock()

	for _, url := range halfOpened {
		h.metrics.SetCircuitState(url, types.CircuitHalfOpen)
	}

	// 응답 시간 오름차순, 같으면 최근 체크 우선
	sort.SliceStable(healthy, func(i, j int) bool {
		if healthy[i].ResponseTimeMs != healthy[j].ResponseTimeMs {
			return healthy[i].ResponseTimeMs < healthy[j].ResponseTimeMs
		}
		return healthy[i].Timestamp > healthy[j].Timestamp
	})
	return healthy
}

// GetBestEndpoint 가장 빠른 정상 엔드포인트 반환
func (h *healthServiceImpl) GetBestEndpoint(urls []string) (types.EndpointHealth, bool) {
	healthy := h.GetHealthyEndpoints(urls)
	if len(healthy) == 0 {
		utils.Warn("사용 가능한 정상 엔드포인트가 없습니다")
		return types.EndpointHealth{}, false
	}
	return healthy[0], true
}

// GetEndpointHealth 마지막 헬스 체크 결과 조회
func (h *healthServiceImpl) GetEndpointHealth(url string) (types.EndpointHealth, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	status, ok := h.endpoints[url]
	return status, ok
}

// GetCircuitBreaker 서킷 브레이커 상태 스냅샷 조회
func (h *healthServiceImpl) GetCircuitBreaker(url string) (types.CircuitBreaker, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	circuit, ok := h.circuits[url]
	if !ok {
		return types.CircuitBreaker{}, false
	}
	return circuit.CircuitBreaker, true
}

// GetHealthStats 대시보드용 엔드포인트 통계
func (h *healthServiceImpl) GetHealthStats(url string) (*types.HealthStats, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.healthStatsLocked(url)
}

func (h *healthServiceImpl) healthStatsLocked(url string) (*types.HealthStats, bool) {
	status, ok := h.endpoints[url]
	if !ok {
		return nil, false
	}

	history := h.history[url]
	stats := &types.HealthStats{
		URL:               url,
		CurrentStatus:     healthLabel(status.Healthy),
		LastCheck:         status.LastCheck,
		ResponseTimeMs:    status.ResponseTimeMs,
		Uptime:            utils.CalculateUptime(history),
		AvgResponseTimeMs: utils.AverageResponseTime(history),
		CircuitState:      types.CircuitUnknown,
		Error:             status.Error,
		HealthData:        status.HealthData,
	}
	if circuit, ok := h.circuits[url]; ok {
		stats.CircuitState = circuit.State
		stats.TotalChecks = circuit.TotalChecks
		stats.Failures = circuit.Failures
		stats.Successes = circuit.Successes
	}
	return stats, true
}

// GetAllHealthStats 알려진 모든 엔드포인트 통계
func (h *healthServiceImpl) GetAllHealthStats() map[string]*types.HealthStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats := make(map[string]*types.HealthStats, len(h.endpoints))
	for url := range h.endpoints {
		if s, ok := h.healthStatsLocked(url); ok {
			stats[url] = s
		}
	}
	return stats
}

// ClearHealthData 모든 헬스 데이터 삭제
func (h *healthServiceImpl) ClearHealthData() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.endpoints = make(map[string]types.EndpointHealth)
	h.circuits = make(map[string]*circuitEntry)
	h.history = make(map[string][]types.HealthRecord)
	utils.Info("헬스 데이터 초기화 완료")
}

// StartMonitoring 즉시 한 번 체크한 뒤 주기적으로 모든 URL을 체크합니다
func (h *healthServiceImpl) StartMonitoring(urls []string) {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()

	if h.monitoring {
		utils.Info("헬스 모니터링이 이미 실행 중입니다")
		return
	}
	if len(urls) == 0 {
		utils.Warn("모니터링할 URL이 없습니다")
		return
	}

	h.monitorURLs = append([]string(nil), urls...)
	h.monitoring = true
	h.paused = false
	h.stopCh = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	utils.Infof("헬스 모니터링 시작 (%d개 엔드포인트, 체크 간격: %s)", len(urls), h.checkInterval)

	go h.monitorLoop(ctx, h.stopCh, h.monitorURLs)
}

func (h *healthServiceImpl) monitorLoop(ctx context.Context, stopCh chan struct{}, urls []string) {
	// 각 주기는 별도 고루틴에서 실행되어 느린 체크가 다음 주기를 막지 않음
	go h.CheckMultipleEndpoints(ctx, urls)

	ticker := time.NewTicker(h.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if h.IsPaused() {
				continue
			}
			utils.Debug("주기적 헬스 체크 수행")
			go h.CheckMultipleEndpoints(ctx, urls)
		case <-stopCh:
			utils.Info("헬스 모니터링 중지됨")
			return
		}
	}
}

// StopMonitoring 모니터링 중지 및 진행 중인 프로브 취소
func (h *healthServiceImpl) StopMonitoring() {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()

	if !h.monitoring {
		return
	}
	h.monitoring = false
	h.paused = false
	close(h.stopCh)
	h.cancel()
}

// PauseMonitoring 주기적 체크 일시 중지 (프로세스가 비활성 상태일 때)
func (h *healthServiceImpl) PauseMonitoring() {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()

	if !h.monitoring || h.paused {
		return
	}
	h.paused = true
	utils.Info("헬스 모니터링 일시 중지")
}

// ResumeMonitoring 주기적 체크 재개
func (h *healthServiceImpl) ResumeMonitoring() {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()

	if !h.monitoring || !h.paused {
		return
	}
	h.paused = false
	utils.Info("헬스 모니터링 재개")
}

// IsMonitoring 모니터링 실행 여부
func (h *healthServiceImpl) IsMonitoring() bool {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()
	return h.monitoring
}

// IsPaused 모니터링 일시 중지 여부
func (h *healthServiceImpl) IsPaused() bool {
	h.monitorMutex.Lock()
	defer h.monitorMutex.Unlock()
	return h.paused
}
