package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// 레지스트리 예약 키
const (
	KeyActiveEndpoint      = "activeEndpoint"
	KeyRecentEndpoints     = "recentEndpoints"
	KeyDetectedEnvironment = "detectedEnvironment"
	KeyAccessToken         = "accessToken"
	KeyRefreshToken        = "refreshToken"

	environmentKeyPrefix = "environment_"
	featureKeyPrefix     = "feature_"
	healthCacheKeyPrefix = "health_"
	metricsKeyPrefix     = "metrics_"

	exportVersion  = "1.0"
	storageTimeout = 5 * time.Second
)

// 항목 출처
const (
	SourceManual              = "manual"
	SourceEndpointSelection   = "endpoint_selection"
	SourceRecentEndpoints     = "recent_endpoints"
	SourceEnvironmentConfig   = "environment_config"
	SourceEnvironmentDetector = "environment_detection"
	SourceFeatureFlags        = "feature_flags"
	SourceTokens              = "tokens"
	SourceImport              = "import"
)

// ConfigRegistry TTL 기반 설정 저장소 인터페이스
type ConfigRegistry interface {
	// 기본 연산
	Set(key string, value interface{}, opts ...EntryOption)
	Get(key string, defaultValue interface{}) interface{}
	Decode(key string, out interface{}) bool
	Has(key string) bool
	Delete(key string) bool
	Subscribe(callback types.ConfigObserver, filter types.ConfigObserverFilter) (unsubscribe func())

	// 활성 엔드포인트
	SetActiveEndpoint(url string, selection types.ActiveEndpointSelection)
	ActiveEndpoint() string
	ActiveEndpointSelection() (types.ActiveEndpointSelection, bool)
	RecentEndpoints() []types.RecentEndpoint

	// 환경 설정 및 기능 플래그
	SetEnvironmentConfig(env types.EnvironmentType, config interface{})
	EnvironmentConfig(env types.EnvironmentType) interface{}
	SetFeatureFlag(flag string, enabled bool)
	IsFeatureEnabled(flag string, defaultValue bool) bool

	// 인증 토큰
	SetTokens(accessToken string, refreshToken string)
	AccessToken() string
	RefreshToken() string
	ClearTokens()

	// 단기 캐시
	CacheHealthResult(endpoint string, result types.EndpointHealth)
	CachedHealthResult(endpoint string) (types.EndpointHealth, bool)
	RecordPerformanceMetric(endpoint string, metric string, value float64)
	PerformanceMetrics(endpoint string) map[string][]types.MetricSample
	AverageResponseTime(endpoint string) (float64, bool)

	// 관리
	ClearExpiredEntries() int
	Summary() types.ConfigSummary
	Export() ([]byte, error)
	Import(data []byte) (int, error)
	Clear()
	Close() error
}

// RegistryOption 레지스트리 옵션
type RegistryOption func(*configRegistryImpl)

// WithDefaultTTL 기본 TTL 설정
func WithDefaultTTL(ttl time.Duration) RegistryOption {
	return func(r *configRegistryImpl) {
		if ttl > 0 {
			r.defaultTTL = ttl
		}
	}
}

// WithCacheCapacity 단기 캐시 용량 설정
func WithCacheCapacity(capacity int) RegistryOption {
	return func(r *configRegistryImpl) {
		if capacity > 0 {
			r.cacheCapacity = capacity
		}
	}
}

// WithSweepInterval 만료 항목 정리 주기 설정
func WithSweepInterval(interval time.Duration) RegistryOption {
	return func(r *configRegistryImpl) {
		if interval > 0 {
			r.sweepInterval = interval
		}
	}
}

// WithClock 시계 주입 (테스트용)
func WithClock(now func() time.Time) RegistryOption {
	return func(r *configRegistryImpl) {
		if now != nil {
			r.now = now
		}
	}
}

// entryOptions 항목별 옵션
type entryOptions struct {
	ttl        time.Duration
	noExpiry   bool
	persistent bool
	source     string
}

// EntryOption 항목 옵션
type EntryOption func(*entryOptions)

// WithTTL 항목 TTL 지정 (0이면 기본값)
func WithTTL(ttl time.Duration) EntryOption {
	return func(o *entryOptions) { o.ttl = ttl }
}

// WithNoExpiry 만료되지 않는 항목
func WithNoExpiry() EntryOption {
	return func(o *entryOptions) { o.noExpiry = true }
}

// WithPersistent 영속 저장 여부 (기본 true)
func WithPersistent(persistent bool) EntryOption {
	return func(o *entryOptions) { o.persistent = persistent }
}

// WithSource 항목 출처 지정
func WithSource(source string) EntryOption {
	return func(o *entryOptions) { o.source = source }
}

type observerEntry struct {
	callback types.ConfigObserver
	filter   types.ConfigObserverFilter
}

// exportEnvelope 내보내기 형식
type exportEnvelope struct {
	Timestamp int64                        `json:"timestamp"`
	Version   string                       `json:"version"`
	Config    map[string]types.ConfigEntry `json:"config"`
}

// configRegistryImpl 설정 레지스트리 구현체
type configRegistryImpl struct {
	storage       types.Storage
	defaultTTL    time.Duration
	cacheCapacity int
	sweepInterval time.Duration
	now           func() time.Time

	entries map[string]types.ConfigEntry
	mutex   sync.RWMutex
	cache   *ephemeralCache

	observers      map[uint64]observerEntry
	nextObserverID uint64
	observerMutex  sync.RWMutex

	// 저장소 쓰기 직렬화 및 자기 쓰기 감지
	persistMutex sync.Mutex
	lastWritten  []byte

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewConfigRegistry 새 설정 레지스트리 생성
// 저장된 설정을 읽고, 만료 항목 정리와 저장소 변경 감시를 시작합니다
func NewConfigRegistry(storage types.Storage, opts ...RegistryOption) ConfigRegistry {
	if storage == nil {
		storage = NewMemoryStorage(configs.DefaultStorageKey, 0)
	}

	r := &configRegistryImpl{
		storage:       storage,
		defaultTTL:    configs.DefaultConfigTTL,
		cacheCapacity: configs.DefaultCacheCapacity,
		sweepInterval: configs.DefaultSweepInterval,
		now:           time.Now,
		entries:       make(map[string]types.ConfigEntry),
		observers:     make(map[uint64]observerEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = newEphemeralCache(r.cacheCapacity, r.now)

	r.loadFromStorage()

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go r.sweepLoop(ctx)

	if events, err := storage.Watch(ctx); err != nil {
		utils.Warnf("설정 저장소 감시 실패 (%s): %v", storage.Key(), err)
	} else {
		r.wg.Add(1)
		go r.watchLoop(ctx, events)
	}

	return r
}

// Set 설정 값 저장
func (r *configRegistryImpl) Set(key string, value interface{}, opts ...EntryOption) {
	options := entryOptions{persistent: true, source: SourceManual}
	for _, opt := range opts {
		opt(&options)
	}

	ttl := options.ttl
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	entry := types.ConfigEntry{
		Value:      value,
		Timestamp:  r.now().UnixMilli(),
		TTL:        ttl.Milliseconds(),
		Persistent: options.persistent,
		Source:     options.source,
	}
	if options.noExpiry {
		entry.TTL = 0
	}

	r.mutex.Lock()
	r.entries[key] = entry
	r.mutex.Unlock()

	if entry.Persistent {
		r.persist()
	}

	utils.Debugf("설정 저장: %s (출처 %s)", key, entry.Source)
	r.notify(key, value)
}

// Get 설정 값 조회. 없거나 만료되었으면 기본값을 반환합니다.
func (r *configRegistryImpl) Get(key string, defaultValue interface{}) interface{} {
	entry, ok := r.lookup(key)
	if !ok {
		return defaultValue
	}
	return entry.Value
}

// lookup 만료된 항목은 읽는 시점에 삭제합니다
func (r *configRegistryImpl) lookup(key string) (types.ConfigEntry, bool) {
	r.mutex.Lock()
	entry, ok := r.entries[key]
	if !ok {
		r.mutex.Unlock()
		return types.ConfigEntry{}, false
	}
	if entry.IsExpired(r.now()) {
		delete(r.entries, key)
		r.mutex.Unlock()

		utils.Debugf("설정 만료: %s", key)
		if entry.Persistent {
			r.persist()
		}
		return types.ConfigEntry{}, false
	}
	r.mutex.Unlock()
	return entry, true
}

// Decode 설정 값을 out에 디코딩합니다
// 저장소에서 다시 읽은 값은 map 형태이므로 JSON을 거쳐 변환합니다
func (r *configRegistryImpl) Decode(key string, out interface{}) bool {
	entry, ok := r.lookup(key)
	if !ok || entry.Value == nil {
		return false
	}
	data, err := json.Marshal(entry.Value)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		utils.Debugf("설정 디코딩 실패 (%s): %v", key, err)
		return false
	}
	return true
}

// Has 유효한 항목이 있는지 확인
func (r *configRegistryImpl) Has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// Delete 항목 삭제
func (r *configRegistryImpl) Delete(key string) bool {
	r.mutex.Lock()
	entry, existed := r.entries[key]
	delete(r.entries, key)
	r.mutex.Unlock()

	if !existed {
		return false
	}
	if entry.Persistent {
		r.persist()
	}
	utils.Debugf("설정 삭제: %s", key)
	r.notify(key, nil)
	return true
}

// Subscribe 변경 알림 구독. 반환된 함수로 구독을 해제합니다.
func (r *configRegistryImpl) Subscribe(callback types.ConfigObserver, filter types.ConfigObserverFilter) func() {
	r.observerMutex.Lock()
	id := r.nextObserverID
	r.nextObserverID++
	r.observers[id] = observerEntry{callback: callback, filter: filter}
	r.observerMutex.Unlock()

	return func() {
		r.observerMutex.Lock()
		delete(r.observers, id)
		r.observerMutex.Unlock()
	}
}

// notify 구독자에게 동기적으로 알립니다. 구독자 panic은 로그만 남깁니다.
func (r *configRegistryImpl) notify(key string, value interface{}) {
	r.observerMutex.RLock()
	observers := make([]observerEntry, 0, len(r.observers))
	for _, o := range r.observers {
		observers = append(observers, o)
	}
	r.observerMutex.RUnlock()

	for _, o := range observers {
		r.callObserver(o, key, value)
	}
}

func (r *configRegistryImpl) callObserver(o observerEntry, key string, value interface{}) {
	defer func() {
		if rec := recover(); rec != nil {
			utils.Errorf("설정 변경 알림 처리 실패 (%s): %v", key, rec)
		}
	}()
	if o.filter != nil && !o.filter(key, value) {
		return
	}
	o.callback(key, value)
}

// SetActiveEndpoint 활성 엔드포인트 저장 및 최근 사용 목록 갱신
func (r *configRegistryImpl) SetActiveEndpoint(url string, selection types.ActiveEndpointSelection) {
	selection.URL = url
	if selection.SelectedAt == 0 {
		selection.SelectedAt = r.now().UnixMilli()
	}

	r.Set(KeyActiveEndpoint, selection,
		WithTTL(configs.ActiveEndpointTTL),
		WithSource(SourceEndpointSelection))

	r.addToRecentEndpoints(url)
}

// ActiveEndpoint 활성 엔드포인트 URL (없으면 빈 문자열)
func (r *configRegistryImpl) ActiveEndpoint() string {
	selection, ok := r.ActiveEndpointSelection()
	if !ok {
		return ""
	}
	return selection.URL
}

// ActiveEndpointSelection 활성 엔드포인트 선택 정보
func (r *configRegistryImpl) ActiveEndpointSelection() (types.ActiveEndpointSelection, bool) {
	var selection types.ActiveEndpointSelection
	if !r.Decode(KeyActiveEndpoint, &selection) || selection.URL == "" {
		return types.ActiveEndpointSelection{}, false
	}
	return selection, true
}

func (r *configRegistryImpl) addToRecentEndpoints(url string) {
	recent := r.RecentEndpoints()

	updated := make([]types.RecentEndpoint, 0, configs.MaxRecentEndpoints)
	updated = append(updated, types.RecentEndpoint{URL: url, LastUsed: r.now().UnixMilli()})
	for _, item := range recent {
		if item.URL == url {
			continue
		}
		if len(updated) >= configs.MaxRecentEndpoints {
			break
		}
		updated = append(updated, item)
	}

	r.Set(KeyRecentEndpoints, updated,
		WithTTL(configs.RecentEndpointsTTL),
		WithSource(SourceRecentEndpoints))
}

// RecentEndpoints 최근 사용 엔드포인트 (최신순)
func (r *configRegistryImpl) RecentEndpoints() []types.RecentEndpoint {
	var recent []types.RecentEndpoint
	if !r.Decode(KeyRecentEndpoints, &recent) {
		return []types.RecentEndpoint{}
	}
	return recent
}

// SetEnvironmentConfig 환경별 설정 저장 (24시간)
func (r *configRegistryImpl) SetEnvironmentConfig(env types.EnvironmentType, config interface{}) {
	r.Set(environmentKeyPrefix+string(env), config,
		WithTTL(configs.EnvironmentConfigTTL),
		WithSource(SourceEnvironmentConfig))
}

// EnvironmentConfig 환경별 설정 조회
func (r *configRegistryImpl) EnvironmentConfig(env types.EnvironmentType) interface{} {
	return r.Get(environmentKeyPrefix+string(env), nil)
}

type featureFlag struct {
	Enabled   bool  `json:"enabled"`
	UpdatedAt int64 `json:"updatedAt"`
}

// SetFeatureFlag 기능 플래그 저장 (24시간)
func (r *configRegistryImpl) SetFeatureFlag(flag string, enabled bool) {
	r.Set(featureKeyPrefix+flag, featureFlag{Enabled: enabled, UpdatedAt: r.now().UnixMilli()},
		WithTTL(configs.FeatureFlagTTL),
		WithSource(SourceFeatureFlags))
}

// IsFeatureEnabled 기능 플래그 조회
func (r *configRegistryImpl) IsFeatureEnabled(flag string, defaultValue bool) bool {
	var feature featureFlag
	if !r.Decode(featureKeyPrefix+flag, &feature) {
		return defaultValue
	}
	return feature.Enabled
}

// SetTokens 인증 토큰 저장. 빈 값은 기존 값을 유지합니다.
func (r *configRegistryImpl) SetTokens(accessToken string, refreshToken string) {
	if accessToken != "" {
		r.Set(KeyAccessToken, accessToken, WithNoExpiry(), WithSource(SourceTokens))
	}
	if refreshToken != "" {
		r.Set(KeyRefreshToken, refreshToken, WithNoExpiry(), WithSource(SourceTokens))
	}
}

func (r *configRegistryImpl) AccessToken() string {
	token, _ := r.Get(KeyAccessToken, "").(string)
	return token
}

func (r *configRegistryImpl) RefreshToken() string {
	token, _ := r.Get(KeyRefreshToken, "").(string)
	return token
}

// ClearTokens 인증 토큰 삭제
func (r *configRegistryImpl) ClearTokens() {
	r.Delete(KeyAccessToken)
	r.Delete(KeyRefreshToken)
}

// CacheHealthResult 헬스 체크 결과 단기 캐시 (30초)
func (r *configRegistryImpl) CacheHealthResult(endpoint string, result types.EndpointHealth) {
	r.cache.set(healthCacheKeyPrefix+endpoint, result, configs.HealthCacheTTL)
}

// CachedHealthResult 캐시된 헬스 체크 결과
func (r *configRegistryImpl) CachedHealthResult(endpoint string) (types.EndpointHealth, bool) {
	value, ok := r.cache.get(healthCacheKeyPrefix + endpoint)
	if !ok {
		return types.EndpointHealth{}, false
	}
	result, ok := value.(types.EndpointHealth)
	return result, ok
}

// RecordPerformanceMetric 성능 지표 기록 (지표당 최근 50개, 1시간)
func (r *configRegistryImpl) RecordPerformanceMetric(endpoint string, metric string, value float64) {
	sample := types.MetricSample{Value: value, Timestamp: r.now().UnixMilli()}

	r.cache.update(metricsKeyPrefix+endpoint, configs.MetricsCacheTTL, func(current interface{}, ok bool) interface{} {
		metrics := make(map[string][]types.MetricSample)
		if existing, isMap := current.(map[string][]types.MetricSample); ok && isMap {
			for name, samples := range existing {
				metrics[name] = samples
			}
		}

		samples := append(append([]types.MetricSample(nil), metrics[metric]...), sample)
		if len(samples) > configs.MaxMetricSamples {
			samples = samples[len(samples)-configs.MaxMetricSamples:]
		}
		metrics[metric] = samples
		return metrics
	})
}

// PerformanceMetrics 엔드포인트 성능 지표 조회
func (r *configRegistryImpl) PerformanceMetrics(endpoint string) map[string][]types.MetricSample {
	value, ok := r.cache.get(metricsKeyPrefix + endpoint)
	if !ok {
		return map[string][]types.MetricSample{}
	}
	metrics, ok := value.(map[string][]types.MetricSample)
	if !ok {
		return map[string][]types.MetricSample{}
	}

	result := make(map[string][]types.MetricSample, len(metrics))
	for name, samples := range metrics {
		result[name] = append([]types.MetricSample(nil), samples...)
	}
	return result
}

// AverageResponseTime 최근 10개 응답 시간 평균(ms)
func (r *configRegistryImpl) AverageResponseTime(endpoint string) (float64, bool) {
	samples := r.PerformanceMetrics(endpoint)[MetricResponseTime]
	if len(samples) == 0 {
		return 0, false
	}
	if len(samples) > configs.AverageMetricWindow {
		samples = samples[len(samples)-configs.AverageMetricWindow:]
	}

	var sum float64
	for _, s := range samples {
		sum += s.Value
	}
	return float64(int64(sum/float64(len(samples)) + 0.5)), true
}

// ClearExpiredEntries 만료 항목 정리
func (r *configRegistryImpl) ClearExpiredEntries() int {
	r.mutex.Lock()
	cleared := r.clearExpiredLocked()
	r.mutex.Unlock()

	if cleared > 0 {
		utils.Infof("만료된 설정 %d개 정리", cleared)
		r.persist()
	}
	return cleared
}

func (r *configRegistryImpl) clearExpiredLocked() int {
	now := r.now()
	cleared := 0
	for key, entry := range r.entries {
		if entry.IsExpired(now) {
			delete(r.entries, key)
			cleared++
		}
	}
	return cleared
}

// Summary 레지스트리 요약
func (r *configRegistryImpl) Summary() types.ConfigSummary {
	r.mutex.RLock()
	total := len(r.entries)
	r.mutex.RUnlock()

	r.observerMutex.RLock()
	observers := len(r.observers)
	r.observerMutex.RUnlock()

	summary := types.ConfigSummary{
		TotalEntries:    total,
		CacheSize:       r.cache.len(),
		Observers:       observers,
		RecentEndpoints: len(r.RecentEndpoints()),
		ActiveEndpoint:  r.ActiveEndpoint(),
	}

	var env types.Environment
	if r.Decode(KeyDetectedEnvironment, &env) && env.Type != "" {
		envType := env.Type
		summary.Environment = &envType
	}
	return summary
}

// Export 전체 설정을 JSON으로 내보냅니다
func (r *configRegistryImpl) Export() ([]byte, error) {
	r.mutex.RLock()
	entries := make(map[string]types.ConfigEntry, len(r.entries))
	for key, entry := range r.entries {
		entries[key] = entry
	}
	r.mutex.RUnlock()

	return json.MarshalIndent(exportEnvelope{
		Timestamp: r.now().UnixMilli(),
		Version:   exportVersion,
		Config:    entries,
	}, "", "  ")
}

// Import 내보낸 설정을 읽어 병합합니다
func (r *configRegistryImpl) Import(data []byte) (int, error) {
	var envelope exportEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return 0, fmt.Errorf("설정 가져오기 실패: %w", err)
	}
	if envelope.Config == nil {
		return 0, errors.New("설정 가져오기 실패: config 필드가 없습니다")
	}

	keys := make([]string, 0, len(envelope.Config))
	r.mutex.Lock()
	for key, entry := range envelope.Config {
		if entry.Source == "" {
			entry.Source = SourceImport
		}
		r.entries[key] = entry
		keys = append(keys, key)
	}
	r.mutex.Unlock()

	r.persist()

	sort.Strings(keys)
	for _, key := range keys {
		r.notify(key, envelope.Config[key].Value)
	}
	utils.Infof("설정 %d개 가져오기 완료", len(keys))
	return len(keys), nil
}

// Clear 모든 설정과 캐시를 비우고 저장소 값을 삭제합니다
func (r *configRegistryImpl) Clear() {
	r.mutex.Lock()
	r.entries = make(map[string]types.ConfigEntry)
	r.mutex.Unlock()
	r.cache.purge()

	r.persistMutex.Lock()
	defer r.persistMutex.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	if err := r.storage.Remove(ctx); err != nil {
		utils.Warnf("설정 저장소 삭제 실패: %v", err)
	}
	r.lastWritten = nil
	utils.Info("설정 초기화 완료")
}

// Close 백그라운드 작업을 멈추고 마지막 상태를 저장합니다
func (r *configRegistryImpl) Close() error {
	r.closeOnce.Do(func() {
		r.cancel()
		r.wg.Wait()
		r.persist()

		r.observerMutex.Lock()
		r.observers = make(map[uint64]observerEntry)
		r.observerMutex.Unlock()
	})
	return nil
}

// snapshotLocked 유효한 영속 항목만 직렬화합니다
func (r *configRegistryImpl) snapshotLocked() ([]byte, error) {
	now := r.now()
	persistent := make(map[string]types.ConfigEntry)
	for key, entry := range r.entries {
		if entry.Persistent && !entry.IsExpired(now) {
			persistent[key] = entry
		}
	}
	return json.Marshal(persistent)
}

// persist 영속 항목을 저장소에 기록합니다
// 용량 초과 시 만료 항목을 정리하고 활성 엔드포인트만 저장합니다
func (r *configRegistryImpl) persist() {
	r.persistMutex.Lock()
	defer r.persistMutex.Unlock()

	r.mutex.RLock()
	blob, err := r.snapshotLocked()
	r.mutex.RUnlock()
	if err != nil {
		utils.Warnf("설정 직렬화 실패: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	err = r.storage.Save(ctx, blob)
	if err == nil {
		r.lastWritten = blob
		return
	}

	utils.Warnf("설정 저장 실패: %v", err)
	if !errors.Is(err, types.ErrQuotaExceeded) {
		return
	}

	r.mutex.Lock()
	r.clearExpiredLocked()
	minimal := make(map[string]types.ConfigEntry)
	if entry, ok := r.entries[KeyActiveEndpoint]; ok {
		minimal[KeyActiveEndpoint] = entry
	}
	r.mutex.Unlock()

	blob, err = json.Marshal(minimal)
	if err != nil {
		return
	}
	if err := r.storage.Save(ctx, blob); err != nil {
		utils.Errorf("최소 설정 저장 실패: %v", err)
		return
	}
	r.lastWritten = blob
	utils.Warn("저장소 용량 부족으로 활성 엔드포인트만 저장했습니다")
}

// loadFromStorage 시작 시 저장된 설정을 읽습니다. 손상된 값은 삭제합니다.
func (r *configRegistryImpl) loadFromStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	blob, err := r.storage.Load(ctx)
	if err != nil {
		utils.Warnf("설정 로드 실패: %v", err)
		return
	}
	if len(blob) == 0 {
		return
	}

	stored, err := decodeStored(blob)
	if err != nil {
		utils.Warnf("손상된 설정 삭제: %v", err)
		if err := r.storage.Remove(ctx); err != nil {
			utils.Warnf("설정 저장소 삭제 실패: %v", err)
		}
		return
	}

	now := r.now()
	loaded := 0
	r.mutex.Lock()
	for key, entry := range stored {
		if entry.IsExpired(now) {
			continue
		}
		entry.Persistent = true
		r.entries[key] = entry
		loaded++
	}
	r.mutex.Unlock()

	r.persistMutex.Lock()
	r.lastWritten = blob
	r.persistMutex.Unlock()

	utils.Infof("저장소에서 설정 %d개 로드", loaded)
}

func decodeStored(blob []byte) (map[string]types.ConfigEntry, error) {
	var stored map[string]types.ConfigEntry
	if err := json.Unmarshal(blob, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// reload 다른 인스턴스가 기록한 값으로 영속 항목을 교체합니다 (마지막 기록 우선)
func (r *configRegistryImpl) reload() {
	r.persistMutex.Lock()

	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	blob, err := r.storage.Load(ctx)
	cancel()
	if err != nil {
		r.persistMutex.Unlock()
		utils.Warnf("설정 동기화 실패: %v", err)
		return
	}
	// 자신이 기록한 값이면 무시
	if bytes.Equal(blob, r.lastWritten) {
		r.persistMutex.Unlock()
		return
	}

	stored := map[string]types.ConfigEntry{}
	if len(blob) > 0 {
		if stored, err = decodeStored(blob); err != nil {
			r.persistMutex.Unlock()
			utils.Warnf("동기화된 설정 파싱 실패: %v", err)
			return
		}
	}
	r.lastWritten = blob

	now := r.now()
	changed := make(map[string]interface{})
	r.mutex.Lock()
	for key, entry := range r.entries {
		if !entry.Persistent {
			continue
		}
		if _, ok := stored[key]; !ok {
			delete(r.entries, key)
			changed[key] = nil
		}
	}
	for key, entry := range stored {
		if entry.IsExpired(now) {
			continue
		}
		entry.Persistent = true
		if current, ok := r.entries[key]; ok && current.Timestamp == entry.Timestamp {
			continue
		}
		r.entries[key] = entry
		changed[key] = entry.Value
	}
	r.mutex.Unlock()
	r.persistMutex.Unlock()

	utils.Infof("다른 인스턴스의 설정 변경 반영 (%d개 항목)", len(changed))

	keys := make([]string, 0, len(changed))
	for key := range changed {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		r.notify(key, changed[key])
	}
}

func (r *configRegistryImpl) sweepLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.ClearExpiredEntries()
			if removed := r.cache.sweep(); removed > 0 {
				utils.Debugf("만료된 캐시 %d개 정리", removed)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (r *configRegistryImpl) watchLoop(ctx context.Context, events <-chan types.StorageEvent) {
	defer r.wg.Done()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Key != "" && event.Key != r.storage.Key() {
				continue
			}
			r.reload()
		case <-ctx.Done():
			return
		}
	}
}

