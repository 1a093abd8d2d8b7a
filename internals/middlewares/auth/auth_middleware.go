// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lingoschool_backend/internals/configs"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	authService "lingoschool_backend/internals/features/users/auth/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

func AuthMiddleware(db *gorm.DB, cfg *configs.Config) fiber.Handler {
	return WithTokens(db, authService.NewTokenService(cfg.JWTSecret, cfg.JWTTTL))
}

// WithTokens: token → blacklist → verify → user masih ada & aktif → Principal di Locals.
func WithTokens(db *gorm.DB, tokens *authService.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		blacklisted, err := authRepo.IsTokenBlacklisted(db.WithContext(c.UserContext()), raw)
		if err != nil {
			log.Println("[ERROR] DB error saat cek blacklist:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
		}
		if blacklisted {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or expired token")
		}
		p, err := claims.Principal()
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid token claims")
		}

		// role & status diambil ulang dari DB
		u, err := authRepo.FindUserByID(db.WithContext(c.UserContext()), p.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			log.Println("[ERROR] load principal:", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
		}
		if u.IsDisabled {
			return helper.JsonError(c, fiber.StatusForbidden, "Account is disabled")
		}

		helperAuth.StorePrincipal(c, helperAuth.Principal{ID: u.ID, Role: u.Role, Username: u.Username})
		c.Locals(helper.LocRawToken, raw)
		return c.Next()
	}
}
