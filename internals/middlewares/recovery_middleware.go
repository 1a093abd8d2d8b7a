package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// RecoveryMiddleware menangkap panic; error diteruskan ke ErrorHandler (500).
func RecoveryMiddleware(debug bool) fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: debug,
	})
}
