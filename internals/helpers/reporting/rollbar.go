// file: internals/helpers/reporting/rollbar.go
package reporting

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/rollbar/rollbar-go"

	"lingoschool_backend/internals/configs"
)

// Init mengaktifkan rollbar kalau ROLLBAR_TOKEN ada; return false kalau nonaktif.
func Init(cfg *configs.Config) bool {
	if cfg.RollbarToken == "" {
		rollbar.SetEnabled(false)
		log.Println("[INFO] rollbar disabled (ROLLBAR_TOKEN empty)")
		return false
	}
	rollbar.SetToken(cfg.RollbarToken)
	rollbar.SetEnvironment(cfg.AppEnv)
	rollbar.SetServerRoot("lingoschool_backend")
	rollbar.SetEnabled(true)
	return true
}

// Report dipasang ke helper.ConfigureErrors; hanya untuk error 5xx.
func Report(c *fiber.Ctx, err error) {
	extras := map[string]interface{}{
		"method":     c.Method(),
		"path":       c.OriginalURL(),
		"request_id": c.Locals("reqid"),
	}
	if uid, ok := c.Locals("user_id").(string); ok {
		extras["user_id"] = uid
	}
	rollbar.Error(err, extras)
}

// Close flush antrean sebelum proses berhenti.
func Close() {
	rollbar.Close()
}
