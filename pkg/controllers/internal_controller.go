package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types/dtos"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// InternalController는 /internal 관리 API를 처리하는 컨트롤러입니다
type InternalController struct {
	client   interfaces.ApiClient
	registry interfaces.ConfigRegistry
	health   interfaces.HealthMonitor
}

// NewInternalController는 새로운 InternalController를 생성합니다
func NewInternalController(client interfaces.ApiClient, registry interfaces.ConfigRegistry, health interfaces.HealthMonitor) *InternalController {
	return &InternalController{
		client:   client,
		registry: registry,
		health:   health,
	}
}

// HandleForceEndpoint는 후보 중 하나를 활성 엔드포인트로 지정합니다
func (c *InternalController) HandleForceEndpoint(ctx *fiber.Ctx) error {
	var req dtos.EndpointRequest
	if err := ctx.BodyParser(&req); err != nil || req.URL == "" {
		return utils.SendError(ctx, fiber.StatusBadRequest, "url은 필수 값입니다")
	}

	if err := c.client.ForceEndpoint(req.URL); err != nil {
		return utils.SendError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.SendSuccessData(ctx, fiber.Map{"currentEndpoint": c.client.CurrentEndpoint()})
}

// HandleReselect는 모든 후보를 다시 프로브해 엔드포인트를 선택합니다
func (c *InternalController) HandleReselect(ctx *fiber.Ctx) error {
	selection, err := c.client.SelectBestEndpoint(ctx.UserContext())
	if err != nil {
		utils.Errorf("엔드포인트 재선택 실패: %v", err)
		return utils.SendError(ctx, fiber.StatusServiceUnavailable, "엔드포인트 재선택 실패")
	}
	return utils.SendSuccessData(ctx, selection)
}

// HandleNextEndpoint는 다음 후보로 전환합니다
func (c *InternalController) HandleNextEndpoint(ctx *fiber.Ctx) error {
	next := c.client.SwitchToNextEndpoint()
	if next == "" {
		return utils.SendError(ctx, fiber.StatusServiceUnavailable, "후보 엔드포인트가 없습니다")
	}
	return utils.SendSuccessData(ctx, fiber.Map{"currentEndpoint": next})
}

// HandleResetCircuit는 엔드포인트의 서킷 브레이커를 초기화합니다
func (c *InternalController) HandleResetCircuit(ctx *fiber.Ctx) error {
	var req dtos.EndpointRequest
	if err := ctx.BodyParser(&req); err != nil || req.URL == "" {
		return utils.SendError(ctx, fiber.StatusBadRequest, "url은 필수 값입니다")
	}

	c.health.ResetCircuitBreaker(req.URL)
	breaker, _ := c.health.GetCircuitBreaker(req.URL)
	return utils.SendSuccessData(ctx, breaker)
}

// HandleProbe는 단일 엔드포인트 헬스 체크를 수행합니다
func (c *InternalController) HandleProbe(ctx *fiber.Ctx) error {
	var req dtos.ProbeRequest
	if err := ctx.BodyParser(&req); err != nil || req.URL == "" {
		return utils.SendError(ctx, fiber.StatusBadRequest, "url은 필수 값입니다")
	}
	return utils.SendSuccessData(ctx, c.client.CheckEndpoint(ctx.UserContext(), req.URL, req.Fresh))
}

// HandlePauseMonitoring은 주기적 헬스 체크를 일시 중지합니다
func (c *InternalController) HandlePauseMonitoring(ctx *fiber.Ctx) error {
	c.health.PauseMonitoring()
	return utils.SendSuccessData(ctx, c.monitoringState())
}

// HandleResumeMonitoring은 주기적 헬스 체크를 재개합니다
func (c *InternalController) HandleResumeMonitoring(ctx *fiber.Ctx) error {
	c.health.ResumeMonitoring()
	return utils.SendSuccessData(ctx, c.monitoringState())
}

func (c *InternalController) monitoringState() dtos.MonitoringState {
	return dtos.MonitoringState{
		Monitoring: c.health.IsMonitoring(),
		Paused:     c.health.IsPaused(),
	}
}

// HandleSetTokens는 외부 요청에 사용할 인증 토큰을 저장합니다
func (c *InternalController) HandleSetTokens(ctx *fiber.Ctx) error {
	var req dtos.TokensRequest
	if err := ctx.BodyParser(&req); err != nil {
		return utils.SendError(ctx, fiber.StatusBadRequest, "잘못된 요청 형식")
	}
	if req.AccessToken == "" && req.RefreshToken == "" {
		return utils.SendError(ctx, fiber.StatusBadRequest, "accessToken 또는 refreshToken이 필요합니다")
	}

	c.client.SetTokens(req.AccessToken, req.RefreshToken)
	return utils.SendSuccessMessage(ctx, "토큰이 저장되었습니다")
}

// HandleClearTokens는 저장된 인증 토큰을 삭제합니다
func (c *InternalController) HandleClearTokens(ctx *fiber.Ctx) error {
	c.client.ClearTokens()
	return utils.SendSuccessMessage(ctx, "토큰이 삭제되었습니다")
}

// HandleExportConfig는 설정 레지스트리를 JSON으로 내보냅니다
func (c *InternalController) HandleExportConfig(ctx *fiber.Ctx) error {
	data, err := c.registry.Export()
	if err != nil {
		utils.Errorf("설정 내보내기 실패: %v", err)
		return utils.SendError(ctx, fiber.StatusInternalServerError, "설정 내보내기 실패")
	}
	return utils.SendRaw(ctx, fiber.StatusOK, data)
}

// HandleImportConfig는 내보낸 설정을 가져옵니다
func (c *InternalController) HandleImportConfig(ctx *fiber.Ctx) error {
	count, err := c.registry.Import(ctx.Body())
	if err != nil {
		return utils.SendError(ctx, fiber.StatusBadRequest, err.Error())
	}
	return utils.SendSuccessData(ctx, fiber.Map{"imported": count})
}
