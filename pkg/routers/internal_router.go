package routers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/controllers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
)

// SetupInternalRoutes는 /internal 경로의 라우터를 설정합니다
func SetupInternalRoutes(router fiber.Router, client interfaces.ApiClient, registry interfaces.ConfigRegistry, health interfaces.HealthMonitor) error {
	controller := controllers.NewInternalController(client, registry, health)

	// 엔드포인트 관련 라우터
	endpoint := router.Group("/endpoint")
	{
		endpoint.Post("/force", controller.HandleForceEndpoint)
		endpoint.Post("/reselect", controller.HandleReselect)
		endpoint.Post("/next", controller.HandleNextEndpoint)
	}

	router.Post("/circuit/reset", controller.HandleResetCircuit)
	router.Post("/probe", controller.HandleProbe)

	monitoring := router.Group("/monitoring")
	{
		monitoring.Post("/pause", controller.HandlePauseMonitoring)
		monitoring.Post("/resume", controller.HandleResumeMonitoring)
	}

	tokens := router.Group("/tokens")
	{
		tokens.Put("/", controller.HandleSetTokens)
		tokens.Delete("/", controller.HandleClearTokens)
	}

	config := router.Group("/config")
	{
		config.Get("/export", controller.HandleExportConfig)
		config.Post("/import", controller.HandleImportConfig)
	}

	return nil
}
