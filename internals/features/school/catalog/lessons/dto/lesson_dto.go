package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
)

/* ===================== REQUEST ===================== */

// CreateLessonRequest: JSON atau multipart (field file: video).
// deadline boleh RFC3339 atau naive ("2026-01-30T23:59:59", dibaca di zona sekolah).
type CreateLessonRequest struct {
	UnitID      string  `json:"unit_id" form:"unit_id" validate:"required,uuid"`
	Title       string  `json:"title" form:"title" validate:"required,min=1,max=150"`
	LessonType  string  `json:"lesson_type" form:"lesson_type" validate:"required,skill"`
	Content     string  `json:"content" form:"content"`
	Deadline    *string `json:"deadline" form:"deadline"`
	Order       *int    `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished *bool   `json:"is_published" form:"is_published"`
}

func (r *CreateLessonRequest) Normalize() {
	r.UnitID = strings.TrimSpace(r.UnitID)
	r.Title = strings.TrimSpace(r.Title)
	r.LessonType = strings.ToLower(strings.TrimSpace(r.LessonType))
}

// UpdateLessonRequest: allow-list partial merge.
type UpdateLessonRequest struct {
	Title         *string `json:"title" form:"title" validate:"omitempty,min=1,max=150"`
	LessonType    *string `json:"lesson_type" form:"lesson_type" validate:"omitempty,skill"`
	Content       *string `json:"content" form:"content"`
	Deadline      *string `json:"deadline" form:"deadline"`
	ClearDeadline bool    `json:"clear_deadline" form:"clear_deadline"`
	Order         *int    `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished   *bool   `json:"is_published" form:"is_published"`
	RemoveVideo   bool    `json:"remove_video" form:"remove_video"`
}

/* ===================== RESPONSE ===================== */

type LessonResponse struct {
	ID          uuid.UUID       `json:"id"`
	UnitID      uuid.UUID       `json:"unit_id"`
	SchoolID    uuid.UUID       `json:"school_id"`
	Title       string          `json:"title"`
	Slug        string          `json:"slug"`
	LessonType  constants.Skill `json:"lesson_type"`
	Content     string          `json:"content"`
	VideoURL    *string         `json:"video_url,omitempty"`
	Order       int             `json:"order"`
	IsPublished bool            `json:"is_published"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToLessonResponse: deadline diisi terpisah (bisa override dari assignment).
func ToLessonResponse(m lessonModel.LessonModel, deadline *time.Time) LessonResponse {
	return LessonResponse{
		ID:          m.ID,
		UnitID:      m.UnitID,
		SchoolID:    m.SchoolID,
		Title:       m.Title,
		Slug:        m.Slug,
		LessonType:  m.LessonType,
		Content:     m.Content,
		VideoURL:    m.VideoURL,
		Order:       m.Order,
		IsPublished: m.IsPublished,
		Deadline:    deadline,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
