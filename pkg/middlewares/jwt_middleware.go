package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/MUYAHGaious/izishop-frontend-sub006/pkg/utils"
)

func JwtMiddleware(secret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if secret == "" {
			return utils.SendError(ctx, fiber.StatusForbidden, "관리 API가 비활성화되어 있습니다")
		}

		auth := ctx.Get("Authorization")
		if auth == "" {
			return utils.SendError(ctx, fiber.StatusUnauthorized, "Missing token")
		}

		parts := strings.Split(auth, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return utils.SendError(ctx, fiber.StatusUnauthorized, "Invalid token format")
		}

		claims, err := utils.ParseAndValidateAdminToken(secret, parts[1])
		if err != nil {
			return utils.SendError(ctx, fiber.StatusUnauthorized, "Invalid or expired token")
		}
		ctx.Locals("admin", claims.Subject)
		return ctx.Next()
	}
}
