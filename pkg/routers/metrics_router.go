package routers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/controllers"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
)

// SetupMetricsRoutes는 /metrics 경로의 라우터를 설정합니다
func SetupMetricsRoutes(router fiber.Router, client interfaces.ApiClient, handler http.Handler) error {
	controller := controllers.NewMetricsController(client, handler)
	{
		router.Get("/", controller.HandlePrometheus)
		router.Get("/balancer", controller.HandleBalancerStats)
	}

	return nil
}
