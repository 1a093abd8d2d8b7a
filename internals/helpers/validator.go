// file: internals/helpers/validator.go
package helper

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")

	validate = validator.New()
	// pakai nama json di pesan error
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	registerCustom("skill", "{0} must be one of vocabulary, grammar, reading, listening, speaking, writing",
		func(fl validator.FieldLevel) bool { return constants.Skill(fl.Field().String()).Valid() })
	registerCustom("qtype", "{0} must be one of mcq, true_false, fill_blank, matching, essay",
		func(fl validator.FieldLevel) bool { return constants.QuestionType(fl.Field().String()).Valid() })
	registerCustom("role", "{0} must be one of admin, school, teacher, student",
		func(fl validator.FieldLevel) bool { return constants.Role(fl.Field().String()).Valid() })
	registerCustom("examtype", "{0} must be 15m or 45m",
		func(fl validator.FieldLevel) bool { return constants.ExamType(fl.Field().String()).Valid() })
}

func registerCustom(tag, message string, fn validator.Func) {
	_ = validate.RegisterValidation(tag, fn)
	_ = validate.RegisterTranslation(tag, translator,
		func(u ut.Translator) error { return u.Add(tag, message, true) },
		func(u ut.Translator, fe validator.FieldError) string {
			t, _ := u.T(tag, fe.Field())
			return t
		},
	)
}

// ValidateStruct menjalankan validator bersama; hasil error bisa langsung ke FromError.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// TranslateValidation: field(json) → daftar pesan
func TranslateValidation(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = append(out[fe.Field()], fe.Translate(translator))
	}
	return out
}

type normalizer interface{ Normalize() }

// BindAndValidate: body (JSON / form / multipart) → struct, Normalize() bila ada, lalu validasi.
func BindAndValidate(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	return ValidateStruct(dst)
}
