package router

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/controllers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/routers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/services"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// ResolverService는 백엔드 리졸버 서비스를 관리합니다
type ResolverService struct {
	config  *configs.EnvConfig
	version string

	storage  types.Storage
	registry services.ConfigRegistry
	detector services.EnvironmentDetector
	health   services.HealthService
	metrics  *services.MetricsService
	client   services.ApiClient

	app       *fiber.App
	events    *controllers.EventsController
	stopCh    chan struct{}
	startTime time.Time // 서버 시작 시간
}

// NewResolverService는 새로운 리졸버 서비스 인스턴스를 생성합니다
func NewResolverService(config *configs.EnvConfig, version string) *ResolverService {
	return &ResolverService{
		config:  config,
		version: version,
	}
}

// NewDetector는 설정의 감지 신호와 백엔드 카탈로그로 환경 감지기를 생성합니다
func NewDetector(config *configs.EnvConfig) (services.EnvironmentDetector, error) {
	profiles, err := configs.LoadBackendCatalog(config.Detection.BackendsFile)
	if err != nil {
		return nil, err
	}

	signals := types.RuntimeSignals{
		ForceEnvironment: config.Detection.ForceEnvironment,
		Mode:             config.Detection.Mode,
		AppEnv:           config.Server.AppEnv,
		PublicURL:        config.Detection.PublicURL,
	}
	return services.NewEnvironmentDetector(signals, profiles), nil
}

// Build는 저장소, 레지스트리, 헬스 서비스, API 클라이언트를 구성합니다
func (rs *ResolverService) Build(ctx context.Context) error {
	detector, err := NewDetector(rs.config)
	if err != nil {
		return fmt.Errorf("백엔드 카탈로그 로드 실패: %w", err)
	}
	rs.detector = detector

	// 스토리지 초기화
	storage, err := services.NewStorage(ctx, rs.config)
	if err != nil {
		return fmt.Errorf("설정 저장소 초기화 실패: %w", err)
	}
	rs.storage = storage

	rs.registry = services.NewConfigRegistry(storage)
	if rs.config.Auth.ApiToken != "" && rs.registry.AccessToken() == "" {
		rs.registry.SetTokens(rs.config.Auth.ApiToken, "")
	}

	rs.metrics = services.NewMetricsService()
	rs.health = services.NewHealthService(
		services.WithCheckInterval(rs.config.Health.Interval),
		services.WithProbeTimeout(rs.config.Health.Timeout),
		services.WithHealthMetrics(rs.metrics),
	)

	rs.client = services.NewApiClient(services.ApiClientDeps{
		Detector: rs.detector,
		Health:   rs.health,
		Registry: rs.registry,
		Metrics:  rs.metrics,
	},
		services.WithMaxRetries(rs.config.Client.MaxRetries),
		services.WithRetryDelay(rs.config.Client.RetryDelay),
		services.WithSelectionInterval(rs.config.Client.SelectionInterval),
		services.WithSelectionTimeout(rs.config.Client.SelectionTimeout),
		services.WithRequestTimeout(rs.config.Client.RequestTimeout),
		services.WithFallbackEndpoint(rs.config.Client.FallbackEndpoint),
	)
	return nil
}

// Start는 서비스를 초기화하고 HTTP 서버를 시작합니다
func (rs *ResolverService) Start(ctx context.Context) error {
	// 시작 시간 기록
	rs.startTime = time.Now()

	if rs.client == nil {
		if err := rs.Build(ctx); err != nil {
			return err
		}
	}

	if err := rs.client.Init(ctx); err != nil {
		utils.Warnf("API 클라이언트 초기화 경고: %v", err)
	}

	if err := rs.setupRoutes(); err != nil {
		return err
	}

	rs.stopCh = make(chan struct{})
	go rs.watchMonitoringSignals(rs.stopCh)

	rs.startServer()
	return nil
}

// setupRoutes는 fiber 앱과 라우트를 구성합니다
func (rs *ResolverService) setupRoutes() error {
	rs.app = fiber.New(fiber.Config{
		AppName:               "izishop-resolver " + rs.version,
		DisableStartupMessage: true,
	})

	events, err := routers.SetupRoutes(rs.app, routers.RouteDeps{
		Client:         rs.client,
		Registry:       rs.registry,
		Health:         rs.health,
		MetricsHandler: rs.metrics.Handler(),
		JwtSecret:      rs.config.Auth.JwtSecret,
	})
	if err != nil {
		return err
	}
	rs.events = events
	return nil
}

// startServer는 HTTP 서버를 시작합니다
func (rs *ResolverService) startServer() {
	port := strconv.Itoa(rs.config.Server.Port)
	env, _ := rs.client.Environment()
	utils.Infof("리졸버 시작 (포트: %s, 환경: %s, 엔드포인트: %s)", port, env.Type, rs.client.CurrentEndpoint())

	go func() {
		if err := rs.app.Listen(":" + port); err != nil {
			utils.Fatalf("서버 시작 실패: %v", err)
		}
	}()
}

// App은 라우트가 설정된 fiber 앱을 반환합니다
func (rs *ResolverService) App() *fiber.App {
	return rs.app
}

// Client는 API 클라이언트를 반환합니다
func (rs *ResolverService) Client() services.ApiClient {
	return rs.client
}

// Health는 헬스 서비스를 반환합니다
func (rs *ResolverService) Health() services.HealthService {
	return rs.health
}

// Detector는 환경 감지기를 반환합니다
func (rs *ResolverService) Detector() services.EnvironmentDetector {
	return rs.detector
}

// Shutdown은 리졸버 서비스를 종료합니다
func (rs *ResolverService) Shutdown(ctx context.Context) error {
	if rs.stopCh != nil {
		close(rs.stopCh)
		rs.stopCh = nil
	}

	if rs.app != nil {
		if err := rs.app.ShutdownWithContext(ctx); err != nil {
			utils.Warnf("HTTP 서버 종료 실패: %v", err)
		}
	}

	if rs.events != nil {
		rs.events.Close()
	}

	if rs.client != nil {
		rs.client.Shutdown()
	}

	if rs.registry != nil {
		if err := rs.registry.Close(); err != nil {
			utils.Warnf("설정 레지스트리 종료 실패: %v", err)
		}
	}

	if rs.storage != nil {
		if err := rs.storage.Close(); err != nil {
			utils.Warnf("설정 저장소 종료 실패: %v", err)
		}
	}
	return nil
}
