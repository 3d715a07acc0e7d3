package controllers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// MetricsController는 /metrics 경로의 요청을 처리하는 컨트롤러입니다
type MetricsController struct {
	client     interfaces.ApiClient
	prometheus fiber.Handler
}

// NewMetricsController는 새로운 MetricsController를 생성합니다
func NewMetricsController(client interfaces.ApiClient, handler http.Handler) *MetricsController {
	return &MetricsController{
		client:     client,
		prometheus: adaptor.HTTPHandler(handler),
	}
}

// HandlePrometheus는 Prometheus 형식의 메트릭을 반환합니다
func (c *MetricsController) HandlePrometheus(ctx *fiber.Ctx) error {
	return c.prometheus(ctx)
}

// HandleBalancerStats는 엔드포인트 선택 통계를 반환합니다
func (c *MetricsController) HandleBalancerStats(ctx *fiber.Ctx) error {
	return utils.SendSuccessData(ctx, c.client.BalancerStats())
}
