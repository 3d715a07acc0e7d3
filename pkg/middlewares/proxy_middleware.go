package middlewares

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/interfaces"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/types"
	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

// 백엔드로 전달하는 요청 헤더
var forwardedHeaders = []string{
	fiber.HeaderContentType,
	fiber.HeaderAcceptLanguage,
	fiber.HeaderAuthorization,
	fiber.HeaderUserAgent,
}

// NewProxyMiddleware는 내부 경로가 아닌 요청을 현재 백엔드로 전달합니다
func NewProxyMiddleware(client interfaces.ApiClient, util interfaces.Utils) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// [1] 요청 시작 및 초기화
		requestId := util.GenerateRequestId()
		path := c.Path()

		// [2] 내부 경로 체크
		if util.IsInternalPath(path) {
			return c.Next()
		}

		util.Debugf("[%s] 프록시 요청 시작: %s %s", requestId, c.Method(), path)

		// [3] 요청 옵션 구성
		options := &types.RequestOptions{
			Method:  c.Method(),
			Body:    append([]byte(nil), c.Body()...),
			Headers: map[string]string{"X-Forwarded-Host": c.Hostname(), "X-Forwarded-For": c.IP()},
		}
		for _, header := range forwardedHeaders {
			if value := c.Get(header); value != "" {
				options.Headers[header] = value
			}
		}
		if query := string(c.Request().URI().QueryString()); query != "" {
			path += "?" + query
		}

		// 호출자가 직접 인증 헤더를 보냈으면 저장된 토큰으로 덮어쓰지 않음
		requireAuth := c.Get(fiber.HeaderAuthorization) == ""

		// [4] 요청 실행
		body, err := client.Request(c.UserContext(), path, options, requireAuth)
		if err != nil {
			return writeProxyError(c, util, requestId, err)
		}

		util.Debugf("[%s] 프록시 요청 완료: %s", requestId, client.CurrentEndpoint())
		return c.Status(fiber.StatusOK).Type("json").Send(body)
	}
}

func writeProxyError(c *fiber.Ctx, util interfaces.Utils, requestId string, err error) error {
	var clientErr *types.ClientError
	var exhaustedErr *types.ExhaustedError
	var initErr *types.InitializationError

	switch {
	case errors.As(err, &clientErr):
		util.Infof("[%s] 백엔드 클라이언트 오류 %d: %s", requestId, clientErr.Status, clientErr.Message)
		return utils.SendErrorResponse(c, clientErr.Status, clientErr.Message, clientErr.Response)
	case errors.As(err, &exhaustedErr):
		util.Errorf("[%s] 모든 백엔드 요청 실패: %v", requestId, err)
		return utils.SendErrorResponse(c, fiber.StatusBadGateway, "모든 서버 요청 실패", types.ResponseOf(err))
	case errors.As(err, &initErr):
		util.Errorf("[%s] 클라이언트 초기화 실패: %v", requestId, err)
		return utils.SendErrorResponse(c, fiber.StatusServiceUnavailable, "사용 가능한 서버가 없습니다", nil)
	case errors.Is(err, context.DeadlineExceeded):
		return utils.SendErrorResponse(c, fiber.StatusGatewayTimeout, "요청 시간 초과", nil)
	default:
		util.Errorf("[%s] 프록시 요청 실패: %v", requestId, err)
		return utils.SendErrorResponse(c, fiber.StatusBadGateway, "프록시 요청 실패", nil)
	}
}
