package configs

import (
	"fmt"
	"sync"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

type EnvConfig struct {
	// 서버 설정
	Server struct {
		Port   int    `env:"PORT" envDefault:"8088"`
		AppEnv string `env:"APP_ENV"`
	}
	// 환경 감지 신호
	Detection struct {
		ForceEnvironment string `env:"FORCE_ENVIRONMENT"`
		Mode             string `env:"APP_MODE"`
		PublicURL        string `env:"PUBLIC_URL"`
		BackendsFile     string `env:"BACKENDS_FILE"`
	}
	// 설정 저장소
	Storage struct {
		Driver     string `env:"STORAGE_DRIVER" envDefault:"memory"`
		Key        string `env:"STORAGE_KEY" envDefault:"izishop_api_config"`
		BoltPath   string `env:"BOLT_PATH" envDefault:"./data/resolver.db"`
		RedisURL   string `env:"REDIS_URL"`
		QuotaBytes int    `env:"STORAGE_QUOTA_BYTES" envDefault:"0"`
	}
	// 헬스 체크
	Health struct {
		Interval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"30s"`
		Timeout  time.Duration `env:"HEALTH_CHECK_TIMEOUT" envDefault:"5s"`
	}
	// API 클라이언트
	Client struct {
		MaxRetries        int           `env:"MAX_RETRIES" envDefault:"3"`
		RetryDelay        time.Duration `env:"RETRY_DELAY" envDefault:"1s"`
		SelectionInterval time.Duration `env:"SELECTION_INTERVAL" envDefault:"60s"`
		SelectionTimeout  time.Duration `env:"SELECTION_TIMEOUT" envDefault:"10s"`
		RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
		FallbackEndpoint  string        `env:"FALLBACK_ENDPOINT" envDefault:"https://izishop-backend.onrender.com"`
	}
	// 인증
	Auth struct {
		ApiToken  string `env:"API_TOKEN"`
		JwtSecret string `env:"JWT_SECRET"`
	}
	// 로깅
	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
		File  string `env:"LOG_FILE"`
	}
}

// Validate는 설정값의 범위를 확인합니다
func (c *EnvConfig) Validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageBolt:
	case StorageRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORAGE_DRIVER=%s", StorageRedis)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Client.MaxRetries < 1 {
		return fmt.Errorf("MAX_RETRIES must be at least 1, got %d", c.Client.MaxRetries)
	}
	if c.Health.Interval <= 0 || c.Health.Timeout <= 0 {
		return fmt.Errorf("health check interval and timeout must be positive")
	}
	if c.Client.SelectionInterval <= 0 || c.Client.SelectionTimeout <= 0 {
		return fmt.Errorf("selection interval and timeout must be positive")
	}
	return nil
}

var (
	configInstance *EnvConfig
	once           sync.Once
)

// LoadConfig는 .env 파일과 환경 변수에서 설정을 읽습니다
func LoadConfig() (*EnvConfig, error) {
	// .env 파일 로드 시도
	if err := godotenv.Load(); err != nil {
		utils.Debugf(".env 파일 로드 실패 (무시됨): %v", err)
	}

	config := &EnvConfig{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("환경 변수 로드 실패: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetConfig는 EnvConfig의 싱글톤 인스턴스를 반환합니다.
// 처음 호출 시에만 환경 변수를 로드하고 이후 호출에서는 캐시된 인스턴스를 반환합니다.
func GetConfig() *EnvConfig {
	once.Do(func() {
		config, err := LoadConfig()
		if err != nil {
			utils.Fatalf("%v", err)
		}

		configInstance = config
		utils.Infof("환경 변수 로드 완료 (드라이버: %s, 포트: %d)", config.Storage.Driver, config.Server.Port)
	})
	return configInstance
}
