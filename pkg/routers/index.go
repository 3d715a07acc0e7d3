package routers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/configs"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/controllers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/middlewares"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// RouteDeps는 라우터 설정에 필요한 의존성입니다
type RouteDeps struct {
	Client         interfaces.ApiClient
	Registry       interfaces.ConfigRegistry
	Health         interfaces.HealthMonitor
	MetricsHandler http.Handler
	JwtSecret      string
}

// SetupRoutes는 애플리케이션의 모든 라우트를 설정합니다
// 반환된 EventsController는 종료 시 Close 해야 합니다
func SetupRoutes(app *fiber.App, deps RouteDeps) (*controllers.EventsController, error) {
	// 상태 조회 라우터 (/status/*)
	status := app.Group("/status")
	events, err := SetupStatusRoutes(status, deps.Client, deps.Registry)
	if err != nil {
		return nil, err
	}

	// 메트릭 라우터 (/metrics)
	metrics := app.Group("/metrics")
	if err := SetupMetricsRoutes(metrics, deps.Client, deps.MetricsHandler); err != nil {
		return nil, err
	}

	// 관리 API 라우터 (/internal/*)
	internal := app.Group("/internal", middlewares.JwtMiddleware(deps.JwtSecret))
	if err := SetupInternalRoutes(internal, deps.Client, deps.Registry, deps.Health); err != nil {
		return nil, err
	}

	// 프록시 미들웨어 설정 (/)
	app.Use(middlewares.NewProxyMiddleware(deps.Client, utils.NewUtils(configs.InternalPaths)))

	utils.Info("라우터 설정이 완료되었습니다")
	return events, nil
}
