package auth

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// OnlyRoles: 401 kalau belum login, 403 kalau role tidak termasuk.
func OnlyRoles(message string, roles ...constants.Role) fiber.Handler {
	if message == "" {
		message = "Forbidden: you are not authorized to access this resource"
	}
	return func(c *fiber.Ctx) error {
		p, err := helperAuth.GetPrincipal(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Role not found")
		}
		if p.Is(roles...) {
			return c.Next()
		}
		return helper.JsonError(c, fiber.StatusForbidden, message)
	}
}
