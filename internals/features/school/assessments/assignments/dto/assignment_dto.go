package dto

import (
	"time"

	"github.com/google/uuid"

	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
)

// UpsertAssignmentRequest: satu baris per (class, lesson); deadline kosong = ikut lesson.
type UpsertAssignmentRequest struct {
	ClassID     uuid.UUID `json:"class_id" validate:"required"`
	LessonID    uuid.UUID `json:"lesson_id" validate:"required"`
	Deadline    *string   `json:"deadline"`
	IsPublished *bool     `json:"is_published"`
}

type AssignmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	ClassID     uuid.UUID  `json:"class_id"`
	LessonID    uuid.UUID  `json:"lesson_id"`
	TeacherID   uuid.UUID  `json:"teacher_id"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsPublished bool       `json:"is_published"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToAssignmentResponse(m assignmentModel.AssignmentModel, loc *time.Location) AssignmentResponse {
	r := AssignmentResponse{
		ID:          m.ID,
		ClassID:     m.ClassID,
		LessonID:    m.LessonID,
		TeacherID:   m.TeacherID,
		IsPublished: m.IsPublished,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Deadline != nil {
		d := m.Deadline.In(loc)
		r.Deadline = &d
	}
	return r
}

func ToAssignmentResponses(rows []assignmentModel.AssignmentModel, loc *time.Location) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToAssignmentResponse(m, loc))
	}
	return out
}
