package service

import (
	"bytes"

	"github.com/bytedance/sonic"
	"gorm.io/datatypes"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/helpers/apperror"
)

// IsNullJSON: kosong atau literal null.
func IsNullJSON(raw []byte) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func toJSON(raw []byte) datatypes.JSON {
	if IsNullJSON(raw) {
		return nil
	}
	return datatypes.JSON(bytes.TrimSpace(raw))
}

// validateShape memeriksa bentuk options & kunci jawaban sesuai tipe soal.
func validateShape(qt constants.QuestionType, options, correct []byte) error {
	if !IsNullJSON(options) && !sonic.Valid(options) {
		return apperror.Validation("options must be valid JSON")
	}
	if qt == constants.QuestionEssay {
		if !IsNullJSON(correct) {
			return apperror.Validation("essay questions cannot have a correct_answer")
		}
		return nil
	}
	if IsNullJSON(correct) {
		return apperror.Validation("correct_answer is required for " + string(qt) + " questions")
	}

	var answer any
	if err := sonic.Unmarshal(correct, &answer); err != nil {
		return apperror.Validation("correct_answer must be valid JSON")
	}

	switch qt {
	case constants.QuestionMCQ:
		var opts []any
		if IsNullJSON(options) || sonic.Unmarshal(options, &opts) != nil || len(opts) < 2 {
			return apperror.Validation("mcq questions need at least 2 options")
		}
	case constants.QuestionTrueFalse:
		// kunci disimpan sebagai bool JSON; jawaban dinilai exact
		if _, ok := answer.(bool); !ok {
			return apperror.Validation("true_false correct_answer must be a JSON boolean")
		}
	case constants.QuestionFillBlank:
		if _, ok := answer.(string); !ok {
			return apperror.Validation("fill_blank correct_answer must be a string")
		}
	case constants.QuestionMatching:
		switch answer.(type) {
		case []any, map[string]any:
		default:
			return apperror.Validation("matching correct_answer must be an array or object")
		}
	}
	return nil
}
