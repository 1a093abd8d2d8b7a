package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// LocRawToken diisi AuthMiddleware setelah token lolos verifikasi.
const LocRawToken = "raw_token"

// GetRawAccessToken: Locals → Authorization header → cookie.
func GetRawAccessToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRawToken).(string); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	fields := strings.Fields(c.Get("Authorization"))
	if len(fields) == 2 && strings.EqualFold(fields[0], "Bearer") {
		return strings.Trim(fields[1], "\"'")
	}
	return strings.TrimSpace(c.Cookies("access_token"))
}
