package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/common/version"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// StatusController는 /status 경로의 요청을 처리하는 컨트롤러입니다
type StatusController struct {
	client    interfaces.ApiClient
	registry  interfaces.ConfigRegistry
	startTime time.Time
}

// NewStatusController는 새로운 StatusController를 생성합니다
func NewStatusController(client interfaces.ApiClient, registry interfaces.ConfigRegistry) *StatusController {
	return &StatusController{
		client:    client,
		registry:  registry,
		startTime: time.Now(),
	}
}

// HandleStatus는 클라이언트 상태와 빌드 정보를 반환합니다
func (c *StatusController) HandleStatus(ctx *fiber.Ctx) error {
	return utils.SendSuccessData(ctx, fiber.Map{
		"service": c.client.ServiceStatus(),
		"uptime":  time.Since(c.startTime).Round(time.Second).String(),
		"build": fiber.Map{
			"version":   version.Version,
			"revision":  version.Revision,
			"branch":    version.Branch,
			"buildDate": version.BuildDate,
			"goVersion": version.GoVersion,
		},
	})
}

// HandleHealth는 후보 엔드포인트별 헬스 통계를 반환합니다
func (c *StatusController) HandleHealth(ctx *fiber.Ctx) error {
	return utils.SendSuccessData(ctx, c.client.HealthStatus())
}

// HandleEnvironment는 감지된 환경을 반환합니다
func (c *StatusController) HandleEnvironment(ctx *fiber.Ctx) error {
	env, ok := c.client.Environment()
	if !ok {
		return utils.SendError(ctx, fiber.StatusServiceUnavailable, "환경이 아직 감지되지 않았습니다")
	}
	return utils.SendSuccessData(ctx, env)
}

// HandleEndpoint는 현재 엔드포인트와 선택 정보를 반환합니다
func (c *StatusController) HandleEndpoint(ctx *fiber.Ctx) error {
	data := fiber.Map{
		"currentEndpoint": c.client.CurrentEndpoint(),
		"recent":          c.registry.RecentEndpoints(),
	}
	if selection, ok := c.registry.ActiveEndpointSelection(); ok {
		data["selection"] = selection
	}
	return utils.SendSuccessData(ctx, data)
}

// HandleConfig는 설정 레지스트리 요약을 반환합니다
func (c *StatusController) HandleConfig(ctx *fiber.Ctx) error {
	return utils.SendSuccessData(ctx, c.registry.Summary())
}
