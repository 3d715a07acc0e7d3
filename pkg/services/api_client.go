package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// 성능 지표 이름
const (
	MetricResponseTime = "responseTime"
	MetricError        = "error"
)

var nonJSONSuccessBody = json.RawMessage(`{"success":true,"data":null}`)

// ApiClient 동적 백엔드 API 클라이언트 인터페이스
type ApiClient interface {
	// 수명 주기
	Init(ctx context.Context) error
	Shutdown()

	// 엔드포인트 선택
	SelectBestEndpoint(ctx context.Context) (types.ActiveEndpointSelection, error)
	SwitchToNextEndpoint() string
	ForceEndpoint(url string) error
	CheckEndpoint(ctx context.Context, url string, fresh bool) types.EndpointHealth

	// 요청
	Request(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool) (json.RawMessage, error)
	RequestJSON(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool, out interface{}) error

	// 인증 토큰
	SetTokens(accessToken string, refreshToken string)
	ClearTokens()

	// 상태 조회
	State() types.ClientState
	CurrentEndpoint() string
	Endpoints() []string
	Environment() (types.Environment, bool)
	ServiceStatus() types.ServiceStatus
	HealthStatus() map[string]*types.HealthStats
	BalancerStats() map[string]interface{}
}

// ApiClientDeps 클라이언트 의존성
type ApiClientDeps struct {
	Detector    EnvironmentDetector
	Health      HealthService
	Registry    ConfigRegistry
	Metrics     *MetricsService
	Credentials types.CredentialSource
	HTTPClient  *resty.Client
}

// ApiClientOption 클라이언트 옵션
type ApiClientOption func(*apiClientImpl)

// WithMaxRetries 요청당 최대 시도 횟수
func WithMaxRetries(maxRetries int) ApiClientOption {
	return func(c *apiClientImpl) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
	}
}

// WithRetryDelay 재시도 간 대기 시간 (0 허용)
func WithRetryDelay(delay time.Duration) ApiClientOption {
	return func(c *apiClientImpl) {
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithSelectionInterval 주기적 엔드포인트 재선택 간격
func WithSelectionInterval(interval time.Duration) ApiClientOption {
	return func(c *apiClientImpl) {
		if interval > 0 {
			c.selectionInterval = interval
		}
	}
}

// WithSelectionTimeout 엔드포인트 선택 시 프로브 전체 제한 시간
func WithSelectionTimeout(timeout time.Duration) ApiClientOption {
	return func(c *apiClientImpl) {
		if timeout > 0 {
			c.selectionTimeout = timeout
		}
	}
}

// WithFallbackEndpoint 후보가 없을 때 사용할 마지막 엔드포인트
func WithFallbackEndpoint(url string) ApiClientOption {
	return func(c *apiClientImpl) {
		if url != "" {
			c.fallbackEndpoint = url
		}
	}
}

// WithRequestTimeout 외부 요청 타임아웃
func WithRequestTimeout(timeout time.Duration) ApiClientOption {
	return func(c *apiClientImpl) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

// apiClientImpl API 클라이언트 구현체
type apiClientImpl struct {
	detector    EnvironmentDetector
	health      HealthService
	registry    ConfigRegistry
	metrics     *MetricsService
	balancer    BalancerService
	credentials types.CredentialSource
	http        *resty.Client

	maxRetries        int
	retryDelay        time.Duration
	selectionInterval time.Duration
	selectionTimeout  time.Duration
	requestTimeout    time.Duration
	fallbackEndpoint  string

	mutex       sync.RWMutex
	state       types.ClientState
	environment *types.Environment
	pool        *types.EndpointPool
	initErr     error
	initGroup   singleflight.Group

	requestCount    atomic.Int64
	errorCount      atomic.Int64
	lastRequestTime atomic.Pointer[time.Time]

	cancel   context.CancelFunc
	shutdown bool
	wg       sync.WaitGroup
}

// NewApiClient 새 API 클라이언트 생성
func NewApiClient(deps ApiClientDeps, opts ...ApiClientOption) ApiClient {
	c := &apiClientImpl{
		detector:          deps.Detector,
		health:            deps.Health,
		registry:          deps.Registry,
		metrics:           deps.Metrics,
		credentials:       deps.Credentials,
		http:              deps.HTTPClient,
		maxRetries:        configs.MaxRetryAttempts,
		retryDelay:        configs.RetryBackoff,
		selectionInterval: configs.SelectionInterval,
		selectionTimeout:  configs.SelectionTimeout,
		requestTimeout:    configs.RequestTimeout,
		fallbackEndpoint:  configs.DefaultFallbackBackend,
		state:             types.StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.health == nil {
		c.health = NewHealthService(WithHealthMetrics(c.metrics))
	}
	if c.registry == nil {
		c.registry = NewConfigRegistry(nil)
	}
	if c.credentials == nil {
		c.credentials = c.registry.AccessToken
	}
	if c.http == nil {
		c.http = resty.New()
	}
	c.http.SetTimeout(c.requestTimeout)
	c.balancer = NewBalancerService(c.health)

	return c
}

// Init 클라이언트 초기화. 동시에 호출해도 한 번만 실행됩니다.
func (c *apiClientImpl) Init(ctx context.Context) error {
	c.mutex.RLock()
	if c.state == types.StateReady {
		err := c.initErr
		c.mutex.RUnlock()
		return err
	}
	c.mutex.RUnlock()

	// 호출자의 취소가 다른 대기자의 초기화를 중단시키지 않도록 분리
	ch := c.initGroup.DoChan("init", func() (interface{}, error) {
		return nil, c.initialize(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *apiClientImpl) initialize(ctx context.Context) error {
	c.mutex.Lock()
	if c.state == types.StateReady {
		err := c.initErr
		c.mutex.Unlock()
		return err
	}
	c.state = types.StateInitializing
	c.mutex.Unlock()

	utils.Info("API 클라이언트 초기화 시작")

	env := c.detector.Detect()
	c.registry.Set(KeyDetectedEnvironment, env,
		WithTTL(configs.DefaultConfigTTL),
		WithSource(SourceEnvironmentDetector))
	c.registry.SetEnvironmentConfig(env.Type, types.EnvironmentProfile{
		Type:     env.Type,
		Priority: env.Priority,
		Backends: env.Backends,
		Features: env.Features,
	})
	for name, enabled := range env.Features {
		c.registry.SetFeatureFlag(name, enabled)
	}

	if len(env.Backends) == 0 {
		initErr := &types.InitializationError{Environment: env.Type, Fallback: c.fallbackEndpoint}
		utils.Errorf("후보 백엔드가 없습니다 (%s), 대체 엔드포인트 사용: %s", env.Type, c.fallbackEndpoint)

		pool := types.NewEndpointPool([]string{c.fallbackEndpoint})
		pool.SetCurrent(c.fallbackEndpoint)
		c.finishInit(&env, pool, initErr)
		c.metrics.SetActiveEndpoint(c.fallbackEndpoint)
		return initErr
	}

	pool := types.NewEndpointPool(env.Backends)
	if selection, ok := c.registry.ActiveEndpointSelection(); ok && pool.Contains(selection.URL) {
		pool.SetCurrent(selection.URL)
		utils.Infof("저장된 엔드포인트 재사용: %s", selection.URL)
	}

	c.mutex.Lock()
	c.environment = &env
	c.pool = pool
	if !c.shutdown {
		c.health.StartMonitoring(pool.All())
	}
	c.mutex.Unlock()

	if _, err := c.SelectBestEndpoint(ctx); err != nil {
		utils.Warnf("초기 엔드포인트 선택 실패: %v", err)
	}

	// 초기화 도중 Shutdown이 호출되었으면 백그라운드 작업을 시작하지 않음
	c.mutex.Lock()
	if !c.shutdown {
		loopCtx, cancel := context.WithCancel(context.Background())
		c.cancel = cancel
		c.wg.Add(1)
		go c.selectionLoop(loopCtx)
	}
	c.mutex.Unlock()

	c.finishInit(&env, pool, nil)
	utils.Infof("API 클라이언트 초기화 완료: %s (%s, 후보 %d개)", pool.Current(), env.Type, pool.Len())
	return nil
}

func (c *apiClientImpl) finishInit(env *types.Environment, pool *types.EndpointPool, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.environment = env
	c.pool = pool
	c.initErr = err
	c.state = types.StateReady
}

func (c *apiClientImpl) selectionLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.selectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := c.SelectBestEndpoint(ctx); err != nil && ctx.Err() == nil {
				utils.Warnf("주기적 엔드포인트 선택 실패: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *apiClientImpl) getPool() *types.EndpointPool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.pool
}

// SelectBestEndpoint 모든 후보를 동시에 프로브하고 가장 빠른 건강한 엔드포인트를 선택합니다
func (c *apiClientImpl) SelectBestEndpoint(ctx context.Context) (types.ActiveEndpointSelection, error) {
	pool := c.getPool()
	if pool == nil || pool.Len() == 0 {
		return types.ActiveEndpointSelection{}, errors.New("no candidate endpoints")
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.selectionTimeout)
	results := c.health.CheckMultipleEndpoints(probeCtx, pool.All())
	cancel()

	if err := ctx.Err(); err != nil {
		return types.ActiveEndpointSelection{}, err
	}
	for _, result := range results {
		c.registry.CacheHealthResult(result.URL, result)
	}

	choice, ok := c.balancer.Choose(pool.All())
	if !ok {
		return types.ActiveEndpointSelection{}, errors.New("no candidate endpoints")
	}

	previous := pool.SetCurrent(choice.URL)
	selection := types.ActiveEndpointSelection{
		URL:                 choice.URL,
		SelectedAt:          time.Now().UnixMilli(),
		ResponseTimeMs:      choice.ResponseTimeMs,
		HealthyAlternatives: choice.HealthyAlternatives,
		SelectionReason:     choice.Reason,
	}
	if previous != "" && previous != choice.URL {
		selection.SwitchedFrom = previous
		utils.Infof("엔드포인트 변경: %s -> %s (%s)", previous, choice.URL, choice.Reason)
	}

	c.registry.SetActiveEndpoint(choice.URL, selection)
	c.metrics.SetActiveEndpoint(choice.URL)
	return selection, nil
}

// SwitchToNextEndpoint 다음 후보로 전환하고 선택을 저장합니다
func (c *apiClientImpl) SwitchToNextEndpoint() string {
	pool := c.getPool()
	if pool == nil || pool.Len() == 0 {
		return ""
	}

	next, previous := c.balancer.Failover(pool)
	c.registry.SetActiveEndpoint(next, types.ActiveEndpointSelection{
		URL:             next,
		SelectedAt:      time.Now().UnixMilli(),
		SelectionReason: types.ReasonFailover,
		SwitchedFrom:    previous,
	})
	c.metrics.SetActiveEndpoint(next)
	c.metrics.IncFailover()

	utils.Warnf("장애 조치: %s -> %s", previous, next)
	return next
}

// ForceEndpoint 후보 중 하나를 강제로 활성 엔드포인트로 지정
func (c *apiClientImpl) ForceEndpoint(url string) error {
	pool := c.getPool()
	if pool == nil || !pool.Contains(url) {
		return fmt.Errorf("후보 엔드포인트가 아닙니다: %s", url)
	}

	previous := pool.SetCurrent(url)
	c.registry.SetActiveEndpoint(url, types.ActiveEndpointSelection{
		URL:             url,
		SelectedAt:      time.Now().UnixMilli(),
		SelectionReason: types.ReasonForced,
		SwitchedFrom:    previous,
	})
	c.metrics.SetActiveEndpoint(url)

	utils.Infof("엔드포인트 강제 지정: %s", url)
	return nil
}

// CheckEndpoint 단일 엔드포인트 상태 확인. fresh가 아니면 캐시된 결과를 사용합니다.
func (c *apiClientImpl) CheckEndpoint(ctx context.Context, url string, fresh bool) types.EndpointHealth {
	if !fresh {
		if cached, ok := c.registry.CachedHealthResult(url); ok {
			return cached
		}
	}

	result := c.health.CheckEndpoint(ctx, url)
	c.registry.CacheHealthResult(url, result)
	return result
}

// Request 현재 엔드포인트로 요청을 보내고, 재시도 가능한 실패는 다음 후보로 넘어갑니다
func (c *apiClientImpl) Request(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool) (json.RawMessage, error) {
	c.requestCount.Add(1)
	now := time.Now()
	c.lastRequestTime.Store(&now)

	body, err := c.request(ctx, path, options, requireAuth)
	if err != nil {
		c.errorCount.Add(1)
	}
	return body, err
}

func (c *apiClientImpl) request(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool) (json.RawMessage, error) {
	if err := c.Init(ctx); err != nil {
		var initErr *types.InitializationError
		if !errors.As(err, &initErr) {
			return nil, err
		}
	}
	if options == nil {
		options = &types.RequestOptions{}
	}

	pool := c.getPool()
	attempts := c.maxRetries
	if pool.Len() < attempts {
		attempts = pool.Len()
	}
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		endpoint := pool.Current()
		if endpoint == "" {
			selection, err := c.SelectBestEndpoint(ctx)
			if err != nil {
				lastErr = err
				continue
			}
			endpoint = selection.URL
		}

		if c.health.IsCircuitOpen(endpoint) {
			utils.Warnf("서킷이 열려 있어 건너뜁니다: %s", endpoint)
			lastErr = &types.CircuitOpenError{Endpoint: endpoint}
			c.metrics.ObserveRequest(endpoint, OutcomeCircuitOpen, 0)
			c.SwitchToNextEndpoint()
			continue
		}

		body, err := c.execute(ctx, endpoint, path, options, requireAuth)
		if err == nil {
			return body, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !types.IsRetryable(err) {
			return nil, err
		}

		utils.Warnf("요청 실패 (%d/%d) %s%s: %v", attempt, attempts, endpoint, path, err)
		lastErr = err
		c.SwitchToNextEndpoint()

		if attempt < attempts && c.retryDelay > 0 {
			timer := time.NewTimer(c.retryDelay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}
	}

	utils.Errorf("모든 요청 시도 실패 (%d회): %s", attempts, path)
	return nil, &types.ExhaustedError{Attempts: attempts, LastCause: lastErr}
}

// execute 단일 엔드포인트에 한 번 요청합니다
func (c *apiClientImpl) execute(ctx context.Context, endpoint string, path string, options *types.RequestOptions, requireAuth bool) (json.RawMessage, error) {
	method := options.Method
	if method == "" {
		method = http.MethodGet
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Request-ID", utils.GenerateRequestId())
	for key, value := range options.Headers {
		req.SetHeader(key, value)
	}
	if requireAuth {
		if token := c.credentials(); token != "" {
			req.SetAuthToken(token)
		}
	}
	if len(options.Body) > 0 {
		req.SetBody(options.Body)
	}

	start := time.Now()
	resp, err := req.Execute(method, utils.JoinURL(endpoint, path))
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			c.recordFailure(endpoint, elapsed, OutcomeTimeout)
			return nil, &types.TimeoutError{Endpoint: endpoint, Cause: err}
		}
		c.recordFailure(endpoint, elapsed, OutcomeTransport)
		return nil, &types.TransportError{Endpoint: endpoint, Cause: err}
	}

	status := resp.StatusCode()
	body := resp.Body()

	switch {
	case status >= 200 && status < 300:
		c.health.UpdateCircuitBreaker(endpoint, true, elapsed.Milliseconds())
		c.registry.RecordPerformanceMetric(endpoint, MetricResponseTime, float64(elapsed.Milliseconds()))
		c.metrics.ObserveRequest(endpoint, OutcomeSuccess, elapsed)
		if !json.Valid(body) {
			return nonJSONSuccessBody, nil
		}
		return json.RawMessage(body), nil
	case status >= 500:
		c.recordFailure(endpoint, elapsed, OutcomeServerError)
		return nil, &types.ServerError{Status: status, Message: errorMessage(body, status), Response: jsonBody(body)}
	default:
		// 4xx와 따라가지 않은 1xx/3xx는 엔드포인트 장애가 아니므로 재시도하지 않음
		c.metrics.ObserveRequest(endpoint, OutcomeClientError, elapsed)
		return nil, &types.ClientError{Status: status, Message: errorMessage(body, status), Response: jsonBody(body)}
	}
}

func (c *apiClientImpl) recordFailure(endpoint string, elapsed time.Duration, outcome string) {
	c.health.UpdateCircuitBreaker(endpoint, false, elapsed.Milliseconds())
	c.registry.RecordPerformanceMetric(endpoint, MetricError, 1)
	c.metrics.ObserveRequest(endpoint, outcome, elapsed)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func jsonBody(body []byte) json.RawMessage {
	if len(body) == 0 || !json.Valid(body) {
		return nil
	}
	return json.RawMessage(body)
}

// errorMessage 오류 응답 본문에서 메시지를 추출합니다
func errorMessage(body []byte, status int) string {
	var parsed map[string]interface{}
	if json.Unmarshal(body, &parsed) == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if msg, ok := parsed[key].(string); ok && msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}

// RequestJSON 요청 결과를 out에 디코딩합니다
func (c *apiClientImpl) RequestJSON(ctx context.Context, path string, options *types.RequestOptions, requireAuth bool, out interface{}) error {
	body, err := c.Request(ctx, path, options, requireAuth)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("응답 디코딩 실패: %w", err)
	}
	return nil
}

func (c *apiClientImpl) SetTokens(accessToken string, refreshToken string) {
	c.registry.SetTokens(accessToken, refreshToken)
}

func (c *apiClientImpl) ClearTokens() {
	c.registry.ClearTokens()
}

func (c *apiClientImpl) State() types.ClientState {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.state
}

// CurrentEndpoint 현재 엔드포인트 (초기화 전이면 빈 문자열)
func (c *apiClientImpl) CurrentEndpoint() string {
	pool := c.getPool()
	if pool == nil {
		return ""
	}
	return pool.Current()
}

// Endpoints 후보 엔드포인트 목록
func (c *apiClientImpl) Endpoints() []string {
	pool := c.getPool()
	if pool == nil {
		return []string{}
	}
	return pool.All()
}

func (c *apiClientImpl) Environment() (types.Environment, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	if c.environment == nil {
		return types.Environment{}, false
	}
	return *c.environment, true
}

// ServiceStatus 클라이언트 상태 요약
func (c *apiClientImpl) ServiceStatus() types.ServiceStatus {
	c.mutex.RLock()
	state := c.state
	var envType types.EnvironmentType
	if c.environment != nil {
		envType = c.environment.Type
	}
	c.mutex.RUnlock()

	return types.ServiceStatus{
		Initialized:        state == types.StateReady,
		State:              state,
		CurrentEndpoint:    c.CurrentEndpoint(),
		AvailableEndpoints: c.Endpoints(),
		Environment:        envType,
		RequestCount:       c.requestCount.Load(),
		ErrorCount:         c.errorCount.Load(),
		LastRequestTime:    c.lastRequestTime.Load(),
		HealthStats:        c.HealthStatus(),
	}
}

// HealthStatus 후보 엔드포인트별 헬스 통계
func (c *apiClientImpl) HealthStatus() map[string]*types.HealthStats {
	result := make(map[string]*types.HealthStats)
	for _, url := range c.Endpoints() {
		if stats, ok := c.health.GetHealthStats(url); ok {
			result[url] = stats
		}
	}
	return result
}

func (c *apiClientImpl) BalancerStats() map[string]interface{} {
	return c.balancer.GetStats()
}

// Shutdown 백그라운드 재선택과 모니터링을 중지합니다
func (c *apiClientImpl) Shutdown() {
	c.mutex.Lock()
	c.shutdown = true
	cancel := c.cancel
	c.cancel = nil
	c.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.health.StopMonitoring()
	utils.Info("API 클라이언트 종료")
}
