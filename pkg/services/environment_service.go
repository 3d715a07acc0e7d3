package services

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// EnvironmentDetector 실행 환경 감지 서비스 인터페이스
type EnvironmentDetector interface {
	// 환경 감지
	Detect() types.Environment
	Redetect() types.Environment
	ForceEnvironment(envType types.EnvironmentType) (types.Environment, error)

	// 조회
	Current() (types.Environment, bool)
	Profile(envType types.EnvironmentType) (types.EnvironmentProfile, bool)
	IsDevelopment() bool
	IsStaging() bool
	IsPreview() bool
	IsProduction() bool
}

// detectionStrategy 단일 감지 전략
type detectionStrategy struct {
	name   string
	detect func(s *signalSnapshot) *types.DetectionResult
}

// signalSnapshot 감지 시점의 신호 정리본
type signalSnapshot struct {
	types.RuntimeSignals
	host    string
	port    string
	fullURL string
}

// environmentDetectorImpl 환경 감지 서비스 구현체
type environmentDetectorImpl struct {
	signals    types.RuntimeSignals
	profiles   map[types.EnvironmentType]types.EnvironmentProfile
	strategies []detectionStrategy
	current    *types.Environment
	mutex      sync.RWMutex
	now        func() time.Time
}

// 개발 서버에서 흔히 쓰는 포트
var devPorts = map[string]bool{
	"3000": true, "4028": true, "5173": true, "8080": true,
	"3001": true, "4000": true, "5000": true,
}

// NewEnvironmentDetector 새 환경 감지 서비스 생성
// profiles가 nil이면 기본 환경 테이블을 사용합니다
func NewEnvironmentDetector(signals types.RuntimeSignals, profiles map[types.EnvironmentType]types.EnvironmentProfile) EnvironmentDetector {
	if profiles == nil {
		profiles = configs.DefaultEnvironmentProfiles()
	}

	d := &environmentDetectorImpl{
		signals:  signals,
		profiles: profiles,
		now:      time.Now,
	}
	d.strategies = []detectionStrategy{
		{name: "explicit_override", detect: detectByOverride},
		{name: "build_mode", detect: detectByBuildMode},
		{name: "hostname", detect: detectByHostname},
		{name: "port", detect: detectByPort},
		{name: "url_pattern", detect: detectByURLPattern},
	}
	return d
}

// Detect 환경을 감지합니다. 한 번 감지된 결과는 재사용됩니다.
func (d *environmentDetectorImpl) Detect() types.Environment {
	d.mutex.RLock()
	if d.current != nil {
		env := *d.current
		d.mutex.RUnlock()
		return env
	}
	d.mutex.RUnlock()

	return d.Redetect()
}

// Redetect 저장된 결과를 무시하고 다시 감지합니다
func (d *environmentDetectorImpl) Redetect() types.Environment {
	snapshot := d.snapshot()

	var best *types.DetectionResult
	for _, strategy := range d.strategies {
		result := d.runStrategy(strategy, snapshot)
		if result == nil {
			continue
		}
		utils.Debugf("환경 감지 전략 %s 결과: %s (%.2f)", strategy.name, result.Type, result.Confidence)
		if !result.Type.IsValid() {
			continue
		}
		// 동점이면 먼저 나온 결과 유지
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	if best == nil || best.Confidence < configs.MinDetectionConfidence {
		utils.Infof("확신할 수 있는 감지 결과가 없어 production 환경을 사용합니다")
		best = &types.DetectionResult{
			Type:       types.EnvProduction,
			Confidence: configs.DefaultDetectionConfidence,
			Source:     "default",
		}
	}

	env := d.merge(*best)
	d.store(env)

	utils.Infof("환경 감지 완료: %s (신뢰도 %.2f, 출처 %s, 후보 %d개)",
		env.Type, env.Confidence, env.Source, len(env.Backends))
	return env
}

// ForceEnvironment 환경을 강제로 지정합니다
func (d *environmentDetectorImpl) ForceEnvironment(envType types.EnvironmentType) (types.Environment, error) {
	if _, ok := d.profiles[envType]; !ok {
		return types.Environment{}, fmt.Errorf("unknown environment type: %s", envType)
	}

	env := d.merge(types.DetectionResult{Type: envType, Confidence: 1.0, Source: "forced"})
	d.store(env)

	utils.Infof("환경 강제 지정: %s", envType)
	return env, nil
}

// Current 현재 감지된 환경을 반환합니다
func (d *environmentDetectorImpl) Current() (types.Environment, bool) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	if d.current == nil {
		return types.Environment{}, false
	}
	return *d.current, true
}

// Profile 환경별 정적 설정을 반환합니다
func (d *environmentDetectorImpl) Profile(envType types.EnvironmentType) (types.EnvironmentProfile, bool) {
	profile, ok := d.profiles[envType]
	return profile, ok
}

func (d *environmentDetectorImpl) IsDevelopment() bool { return d.is(types.EnvDevelopment) }
func (d *environmentDetectorImpl) IsStaging() bool     { return d.is(types.EnvStaging) }
func (d *environmentDetectorImpl) IsPreview() bool     { return d.is(types.EnvPreview) }
func (d *environmentDetectorImpl) IsProduction() bool  { return d.is(types.EnvProduction) }

func (d *environmentDetectorImpl) is(envType types.EnvironmentType) bool {
	env, ok := d.Current()
	return ok && env.Type == envType
}

func (d *environmentDetectorImpl) store(env types.Environment) {
	d.mutex.Lock()
	d.current = &env
	d.mutex.Unlock()
}

// runStrategy 전략 실행 중 panic이 나면 로그를 남기고 건너뜁니다
func (d *environmentDetectorImpl) runStrategy(strategy detectionStrategy, s *signalSnapshot) (result *types.DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			utils.Warnf("환경 감지 전략 %s 실패: %v", strategy.name, r)
			result = nil
		}
	}()
	return strategy.detect(s)
}

// merge 감지 결과와 정적 환경 테이블을 합칩니다
func (d *environmentDetectorImpl) merge(result types.DetectionResult) types.Environment {
	profile := d.profiles[result.Type]

	backends := make([]string, len(profile.Backends))
	copy(backends, profile.Backends)
	features := make(map[string]bool, len(profile.Features))
	for name, enabled := range profile.Features {
		features[name] = enabled
	}

	return types.Environment{
		Type:       result.Type,
		Confidence: result.Confidence,
		Source:     result.Source,
		Priority:   profile.Priority,
		Backends:   backends,
		Features:   features,
		Details:    result.Details,
		DetectedAt: d.now(),
	}
}

func (d *environmentDetectorImpl) snapshot() *signalSnapshot {
	s := &signalSnapshot{RuntimeSignals: d.signals}

	if d.signals.PublicURL != "" {
		if u, err := url.Parse(d.signals.PublicURL); err == nil && u.Host != "" {
			s.host = strings.ToLower(u.Hostname())
			s.port = u.Port()
			s.fullURL = strings.ToLower(d.signals.PublicURL)
			return s
		}
		utils.Warnf("PUBLIC_URL 파싱 실패: %s", d.signals.PublicURL)
	}

	host := d.signals.Hostname
	if host == "" {
		host, _ = os.Hostname()
	}
	s.host = strings.ToLower(host)
	return s
}

func detectByOverride(s *signalSnapshot) *types.DetectionResult {
	forced := types.EnvironmentType(strings.ToLower(strings.TrimSpace(s.ForceEnvironment)))
	if forced == "" || !forced.IsValid() {
		return nil
	}
	return &types.DetectionResult{
		Type:       forced,
		Confidence: 1.0,
		Source:     "FORCE_ENVIRONMENT",
		Details:    map[string]string{"forceEnvironment": string(forced)},
	}
}

func detectByBuildMode(s *signalSnapshot) *types.DetectionResult {
	switch strings.ToLower(s.Mode) {
	case "development", "dev":
		return modeResult(types.EnvDevelopment, s.Mode)
	case "staging", "stage":
		return modeResult(types.EnvStaging, s.Mode)
	case "production", "prod":
		return modeResult(types.EnvProduction, s.Mode)
	}

	switch s.AppEnv {
	case "development":
		return &types.DetectionResult{Type: types.EnvDevelopment, Confidence: 0.7, Source: "APP_ENV",
			Details: map[string]string{"appEnv": s.AppEnv}}
	case "production":
		return &types.DetectionResult{Type: types.EnvProduction, Confidence: 0.6, Source: "APP_ENV",
			Details: map[string]string{"appEnv": s.AppEnv}}
	}
	return nil
}

func modeResult(envType types.EnvironmentType, mode string) *types.DetectionResult {
	return &types.DetectionResult{
		Type:       envType,
		Confidence: 0.9,
		Source:     "APP_MODE",
		Details:    map[string]string{"mode": mode},
	}
}

func detectByHostname(s *signalSnapshot) *types.DetectionResult {
	host := s.host
	if host == "" {
		return nil
	}

	hostResult := func(envType types.EnvironmentType, confidence float64, pattern string) *types.DetectionResult {
		return &types.DetectionResult{
			Type:       envType,
			Confidence: confidence,
			Source:     "hostname",
			Details:    map[string]string{"hostname": host, "pattern": pattern},
		}
	}

	switch {
	case host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".local"):
		return hostResult(types.EnvDevelopment, 0.95, "localhost")
	case isPrivateIP(host):
		return hostResult(types.EnvDevelopment, 0.85, "private_ip")
	case strings.Contains(host, "vercel.app") && !strings.HasPrefix(host, "www."):
		return hostResult(types.EnvPreview, 0.9, "vercel_preview")
	case strings.Contains(host, "netlify.app") &&
		(strings.Contains(host, "deploy-preview") || strings.Contains(host, "branch")):
		return hostResult(types.EnvPreview, 0.9, "netlify_preview")
	case strings.Contains(host, "staging") || strings.Contains(host, "stage") || strings.Contains(host, "dev-"):
		return hostResult(types.EnvStaging, 0.85, "staging_subdomain")
	case host == "izishopin.com" || host == "www.izishopin.com":
		return hostResult(types.EnvProduction, 0.95, "production_domain")
	default:
		return hostResult(types.EnvProduction, 0.6, "unknown_domain")
	}
}

func detectByPort(s *signalSnapshot) *types.DetectionResult {
	if s.fullURL == "" {
		return nil
	}
	if s.port == "" {
		return &types.DetectionResult{Type: types.EnvProduction, Confidence: 0.7, Source: "port",
			Details: map[string]string{"port": "default"}}
	}
	if devPorts[s.port] {
		return &types.DetectionResult{Type: types.EnvDevelopment, Confidence: 0.8, Source: "port",
			Details: map[string]string{"port": s.port, "pattern": "dev_port"}}
	}
	if port, err := strconv.Atoi(s.port); err == nil && port > 1024 && port < 9000 {
		return &types.DetectionResult{Type: types.EnvStaging, Confidence: 0.6, Source: "port",
			Details: map[string]string{"port": s.port, "pattern": "high_port"}}
	}
	return nil
}

func detectByURLPattern(s *signalSnapshot) *types.DetectionResult {
	u := s.fullURL
	if u == "" {
		return nil
	}

	switch {
	case strings.Contains(u, "deploy-preview") || strings.Contains(u, "branch-deploy"):
		return &types.DetectionResult{Type: types.EnvPreview, Confidence: 0.9, Source: "url_pattern",
			Details: map[string]string{"url": u, "pattern": "deploy_preview"}}
	case strings.Contains(u, "staging") || strings.Contains(u, "dev.") || strings.Contains(u, "test."):
		return &types.DetectionResult{Type: types.EnvStaging, Confidence: 0.8, Source: "url_pattern",
			Details: map[string]string{"url": u, "pattern": "staging_url"}}
	case strings.Contains(u, "localhost") || strings.Contains(u, "127.0.0.1"):
		return &types.DetectionResult{Type: types.EnvDevelopment, Confidence: 0.9, Source: "url_pattern",
			Details: map[string]string{"url": u, "pattern": "localhost_url"}}
	}
	return nil
}

// isPrivateIP 사설 IPv4 대역 및 루프백 여부 확인
func isPrivateIP(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	switch {
	case ip4[0] == 10:
		return true
	case ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31:
		return true
	case ip4[0] == 192 && ip4[1] == 168:
		return true
	case ip4[0] == 127:
		return true
	}
	return false
}
