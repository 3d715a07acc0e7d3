package utils

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

func SendError(ctx *fiber.Ctx, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": message,
		"success": false,
	})
}

// SendErrorResponse는 백엔드가 돌려준 오류 본문을 그대로 전달합니다
// 본문이 JSON이 아니면 메시지 형태로 응답합니다
func SendErrorResponse(ctx *fiber.Ctx, status int, message string, body json.RawMessage) error {
	if len(body) > 0 && json.Valid(body) {
		ctx.Status(status)
		ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return ctx.Send(body)
	}
	return SendError(ctx, status, message)
}

func SendSuccessMessage(ctx *fiber.Ctx, message string) error {
	return ctx.JSON(fiber.Map{
		"success": true,
		"message": message,
	})
}

func SendSuccessData(ctx *fiber.Ctx, data interface{}) error {
	return ctx.JSON(fiber.Map{
		"data":    data,
		"success": true,
	})
}

// SendRaw는 이미 직렬화된 JSON 본문을 응답합니다
func SendRaw(ctx *fiber.Ctx, status int, body json.RawMessage) error {
	ctx.Status(status)
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(body)
}
