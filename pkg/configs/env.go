package configs

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// catalogFile은 백엔드 카탈로그 파일 구조입니다
//
//	environments:
//	  staging:
//	    priority: 2
//	    backends: ["https://staging-api.example.com"]
//	    features: {debugging: true}
type catalogFile struct {
	Environments map[string]catalogEntry `mapstructure:"environments"`
}

type catalogEntry struct {
	Priority *int            `mapstructure:"priority"`
	Backends []string        `mapstructure:"backends"`
	Features map[string]bool `mapstructure:"features"`
}

// LoadBackendCatalog는 기본 환경 테이블에 카탈로그 파일 내용을 덮어씁니다
// path가 비어 있으면 기본 테이블을 그대로 반환합니다
func LoadBackendCatalog(path string) (map[types.EnvironmentType]types.EnvironmentProfile, error) {
	profiles := DefaultEnvironmentProfiles()
	if path == "" {
		return profiles, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("백엔드 카탈로그 로드 실패 (%s): %w", path, err)
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("백엔드 카탈로그 파싱 실패 (%s): %w", path, err)
	}

	for name, entry := range file.Environments {
		envType := types.EnvironmentType(strings.ToLower(name))
		if !envType.IsValid() {
			utils.Warnf("알 수 없는 환경 무시: %s", name)
			continue
		}

		profile := profiles[envType]
		if entry.Priority != nil {
			profile.Priority = *entry.Priority
		}
		if len(entry.Backends) > 0 {
			profile.Backends = normalizeBackends(entry.Backends)
		}
		for feature, enabled := range entry.Features {
			profile.Features[canonicalFeature(feature)] = enabled
		}
		profiles[envType] = profile
	}

	utils.Infof("백엔드 카탈로그 로드 완료: %s", path)
	return profiles, nil
}

// normalizeBackends는 스킴이 없는 주소에 http://를 붙이고 빈 값을 제거합니다
func normalizeBackends(backends []string) []string {
	result := make([]string, 0, len(backends))
	for _, url := range backends {
		url = strings.TrimRight(strings.TrimSpace(url), "/")
		if url == "" {
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			url = "http://" + url
		}
		result = append(result, url)
	}
	return result
}

// viper는 키를 소문자로 바꾸므로 알려진 기능 이름으로 되돌립니다
func canonicalFeature(name string) string {
	for _, known := range FeatureNames {
		if strings.EqualFold(known, name) {
			return known
		}
	}
	return name
}
