package types

import "time"

// EnvironmentType은 배포 환경 종류를 나타냅니다
type EnvironmentType string

const (
	EnvDevelopment EnvironmentType = "development"
	EnvStaging     EnvironmentType = "staging"
	EnvPreview     EnvironmentType = "preview"
	EnvProduction  EnvironmentType = "production"
)

// EnvironmentTypes는 알려진 환경 목록 (정적 테이블 순서)
var EnvironmentTypes = []EnvironmentType{EnvDevelopment, EnvStaging, EnvPreview, EnvProduction}

// IsValid는 알려진 환경 타입인지 확인합니다
func (t EnvironmentType) IsValid() bool {
	for _, known := range EnvironmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RuntimeSignals는 환경 감지에 사용되는 주변 신호입니다
type RuntimeSignals struct {
	ForceEnvironment string // 명시적 오버라이드
	Mode             string // 빌드 모드 (APP_MODE)
	AppEnv           string // 실행 환경 변수 (APP_ENV)
	PublicURL        string // 프론트엔드가 서비스되는 origin URL
	Hostname         string // PublicURL이 없을 때 사용하는 호스트 이름
}

// DetectionResult는 단일 감지 전략의 결과입니다
type DetectionResult struct {
	Type       EnvironmentType   `json:"type"`
	Confidence float64           `json:"confidence"`
	Source     string            `json:"source"`
	Details    map[string]string `json:"details,omitempty"`
}

// EnvironmentProfile은 환경별 후보 백엔드와 기능 플래그 정의입니다
type EnvironmentProfile struct {
	Type     EnvironmentType `json:"type" mapstructure:"type"`
	Priority int             `json:"priority" mapstructure:"priority"`
	Backends []string        `json:"backends" mapstructure:"backends"`
	Features map[string]bool `json:"features" mapstructure:"features"`
}

// Environment는 감지된 실행 환경입니다. 감지 후에는 변경되지 않습니다.
type Environment struct {
	Type       EnvironmentType   `json:"type"`
	Confidence float64           `json:"confidence"`
	Source     string            `json:"source"`
	Priority   int               `json:"priority"`
	Backends   []string          `json:"backends"`
	Features   map[string]bool   `json:"features"`
	Details    map[string]string `json:"details,omitempty"`
	DetectedAt time.Time         `json:"detectedAt"`
}
