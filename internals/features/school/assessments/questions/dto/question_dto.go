package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
)

/* ===================== REQUEST ===================== */

// CreateQuestionRequest: tepat satu dari lesson_id / exam_id.
type CreateQuestionRequest struct {
	LessonID      *uuid.UUID             `json:"lesson_id"`
	ExamID        *uuid.UUID             `json:"exam_id"`
	ClassID       *uuid.UUID             `json:"class_id"`
	Skill         *constants.Skill       `json:"skill" validate:"omitempty,skill"`
	Type          constants.QuestionType `json:"type" validate:"required,qtype"`
	Prompt        string                 `json:"prompt" validate:"required,min=1"`
	Options       json.RawMessage        `json:"options"`
	CorrectAnswer json.RawMessage        `json:"correct_answer"`
	Explanation   string                 `json:"explanation"`
	Points        *float64               `json:"points" validate:"omitempty,gte=0"`
	Order         *int                   `json:"order" validate:"omitempty,gte=1"`
	IsPublished   *bool                  `json:"is_published"`
}

// UpdateQuestionRequest: partial merge; field yang tidak dikenal diabaikan.
type UpdateQuestionRequest struct {
	Skill         *constants.Skill `json:"skill" validate:"omitempty,skill"`
	Prompt        *string          `json:"prompt" validate:"omitempty,min=1"`
	Options       json.RawMessage  `json:"options"`
	CorrectAnswer json.RawMessage  `json:"correct_answer"`
	Explanation   *string          `json:"explanation"`
	Points        *float64         `json:"points" validate:"omitempty,gte=0"`
	Order         *int             `json:"order" validate:"omitempty,gte=1"`
	IsPublished   *bool            `json:"is_published"`
}

/* ===================== RESPONSE ===================== */

type QuestionResponse struct {
	ID            uuid.UUID              `json:"id"`
	LessonID      *uuid.UUID             `json:"lesson_id,omitempty"`
	ExamID        *uuid.UUID             `json:"exam_id,omitempty"`
	SchoolID      *uuid.UUID             `json:"school_id,omitempty"`
	ClassID       *uuid.UUID             `json:"class_id,omitempty"`
	Skill         constants.Skill        `json:"skill"`
	Type          constants.QuestionType `json:"type"`
	Prompt        string                 `json:"prompt"`
	Options       json.RawMessage        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage        `json:"correct_answer,omitempty"`
	Explanation   string                 `json:"explanation,omitempty"`
	Points        float64                `json:"points"`
	Order         int                    `json:"order"`
	IsPublished   bool                   `json:"is_published"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToQuestionResponse: withAnswer=false untuk murid (kunci & pembahasan disembunyikan).
func ToQuestionResponse(m questionModel.QuestionModel, withAnswer bool) QuestionResponse {
	r := QuestionResponse{
		ID:          m.ID,
		LessonID:    m.LessonID,
		ExamID:      m.ExamID,
		SchoolID:    m.SchoolID,
		ClassID:     m.ClassID,
		Skill:       m.Skill,
		Type:        m.Type,
		Prompt:      m.Prompt,
		Points:      m.Points,
		Order:       m.Order,
		IsPublished: m.IsPublished,
		CreatedAt:   m.CreatedAt,
	}
	if len(m.Options) > 0 {
		r.Options = json.RawMessage(m.Options)
	}
	if withAnswer {
		if len(m.CorrectAnswer) > 0 {
			r.CorrectAnswer = json.RawMessage(m.CorrectAnswer)
		}
		r.Explanation = m.Explanation
	}
	return r
}

func ToQuestionResponses(rows []questionModel.QuestionModel, withAnswer bool) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToQuestionResponse(m, withAnswer))
	}
	return out
}

// LessonQuestionsResponse: daftar soal + deadline efektif (denormalisasi).
type LessonQuestionsResponse struct {
	LessonID  uuid.UUID          `json:"lesson_id"`
	Deadline  *time.Time         `json:"deadline"`
	Questions []QuestionResponse `json:"questions"`
}

type ExamQuestionsResponse struct {
	ExamID    uuid.UUID          `json:"exam_id"`
	StartTime time.Time          `json:"start_time"`
	EndTime   time.Time          `json:"end_time"`
	Questions []QuestionResponse `json:"questions"`
}
