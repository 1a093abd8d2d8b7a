package middlewares

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
)

const slowRequest = 2 * time.Second

// RequestContext: request id (X-Request-ID), batas waktu context, dan log request lambat.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqID := c.Get(fiber.HeaderXRequestID)
		if reqID == "" {
			reqID = utils.UUID()
		}
		c.Locals("reqid", reqID)
		c.Set(fiber.HeaderXRequestID, reqID)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		if d := time.Since(start); d > slowRequest {
			log.Printf("[SLOW] id=%s %s %s took %s", reqID, c.Method(), c.OriginalURL(), d)
		}
		return err
	}
}
