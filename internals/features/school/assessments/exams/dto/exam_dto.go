package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
)

// CreateExamRequest: waktu boleh RFC3339 atau naive (zona sekolah).
type CreateExamRequest struct {
	ClassID     uuid.UUID `json:"class_id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=150"`
	ExamType    string    `json:"exam_type" validate:"required,examtype"`
	StartTime   string    `json:"start_time" validate:"required"`
	EndTime     string    `json:"end_time" validate:"required"`
	IsPublished *bool     `json:"is_published"`
}

func (r *CreateExamRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ExamType = strings.ToLower(strings.TrimSpace(r.ExamType))
}

type UpdateExamRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=150"`
	ExamType    *string `json:"exam_type" validate:"omitempty,examtype"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsPublished *bool   `json:"is_published"`
}

type ExamResponse struct {
	ID          uuid.UUID          `json:"id"`
	Title       string             `json:"title"`
	ExamType    constants.ExamType `json:"exam_type"`
	ClassID     uuid.UUID          `json:"class_id"`
	TeacherID   uuid.UUID          `json:"teacher_id"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	IsPublished bool               `json:"is_published"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ToExamResponse: waktu ditampilkan di zona sekolah.
func ToExamResponse(m examModel.ExamModel, loc *time.Location) ExamResponse {
	return ExamResponse{
		ID:          m.ID,
		Title:       m.Title,
		ExamType:    m.ExamType,
		ClassID:     m.ClassID,
		TeacherID:   m.TeacherID,
		StartTime:   m.StartTime.In(loc),
		EndTime:     m.EndTime.In(loc),
		IsPublished: m.IsPublished,
		CreatedAt:   m.CreatedAt,
	}
}

func ToExamResponses(rows []examModel.ExamModel, loc *time.Location) []ExamResponse {
	out := make([]ExamResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToExamResponse(m, loc))
	}
	return out
}
