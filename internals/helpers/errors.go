// file: internals/helpers/errors.go
package helper

import (
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"lingoschool_backend/internals/helpers/apperror"
)

// ReportFunc dipanggil untuk setiap error 5xx (mis. rollbar).
type ReportFunc func(c *fiber.Ctx, err error)

type errorPolicy struct {
	exposeDetails bool
	report        ReportFunc
}

var policy = errorPolicy{}

// ConfigureErrors dipanggil sekali di main setelah Config terbentuk.
func ConfigureErrors(exposeDetails bool, report ReportFunc) {
	policy = errorPolicy{exposeDetails: exposeDetails, report: report}
}

// IsUniqueViolation: pg 23505 atau gorm.ErrDuplicatedKey (TranslateError).
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FromError menerjemahkan error apa pun ke envelope JSON yang konsisten.
func FromError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if ae, ok := apperror.As(err); ok {
		if ae.Status >= 500 {
			logInternal(c, err)
		}
		return JsonErrorWithCode(c, ae.Status, ae.Code, ae.Message, ae.Details)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= 500 {
			logInternal(c, err)
		}
		return JsonError(c, fe.Code, fe.Message)
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return JsonValidationError(c, TranslateValidation(ve))
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return JsonError(c, fiber.StatusNotFound, "record not found")
	}
	if IsUniqueViolation(err) {
		return JsonError(c, fiber.StatusConflict, "duplicate record")
	}

	logInternal(c, err)
	resp := ErrorResponse{
		Success:   false,
		Message:   "internal server error",
		ErrorCode: "INTERNAL_ERROR",
	}
	if policy.exposeDetails {
		resp.Details = map[string]any{"error": err.Error()}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(resp)
}

func logInternal(c *fiber.Ctx, err error) {
	log.Printf("[ERROR] id=%v %s %s: %+v", c.Locals("reqid"), c.Method(), c.OriginalURL(), err)
	if policy.report != nil {
		policy.report(c, err)
	}
}

// ErrorHandler untuk fiber.Config; boundary terluar.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return FromError(c, err)
}
