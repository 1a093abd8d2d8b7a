package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	helper "lingoschool_backend/internals/helpers"
)

var errMissingToken = errors.New("Unauthorized - missing bearer token")

// extractBearerToken: header Authorization, fallback cookie access_token.
func extractBearerToken(c *fiber.Ctx) (string, error) {
	raw := helper.GetRawAccessToken(c)
	if raw == "" {
		return "", errMissingToken
	}
	return raw, nil
}
