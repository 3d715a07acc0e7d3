package routers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/controllers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
)

// SetupStatusRoutes는 /status 경로의 라우터를 설정합니다
func SetupStatusRoutes(router fiber.Router, client interfaces.ApiClient, registry interfaces.ConfigRegistry) (*controllers.EventsController, error) {
	controller := controllers.NewStatusController(client, registry)
	events := controllers.NewEventsController(client, registry)

	{
		router.Get("/", controller.HandleStatus)
		router.Get("/health", controller.HandleHealth)
		router.Get("/environment", controller.HandleEnvironment)
		router.Get("/endpoint", controller.HandleEndpoint)
		router.Get("/config", controller.HandleConfig)
		// 설정 변경 SSE
		router.Get("/events", events.HandleEvents)
	}

	return events, nil
}
