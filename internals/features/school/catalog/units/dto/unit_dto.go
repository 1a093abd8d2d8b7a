package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	lessonDto "lingoschool_backend/internals/features/school/catalog/lessons/dto"
	unitModel "lingoschool_backend/internals/features/school/catalog/units/model"
)

/* ===================== REQUEST ===================== */

// CreateUnitRequest: JSON atau multipart (field file: thumbnail).
// school_id hanya dipakai admin; sekolah selalu menulis untuk dirinya sendiri.
type CreateUnitRequest struct {
	SchoolID    string `json:"school_id" form:"school_id" validate:"omitempty,uuid"`
	Title       string `json:"title" form:"title" validate:"required,min=1,max=150"`
	Description string `json:"description" form:"description"`
	Order       *int   `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished *bool  `json:"is_published" form:"is_published"`
}

func (r *CreateUnitRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.SchoolID = strings.TrimSpace(r.SchoolID)
}

// UpdateUnitRequest: allow-list partial merge.
type UpdateUnitRequest struct {
	Title           *string `json:"title" form:"title" validate:"omitempty,min=1,max=150"`
	Description     *string `json:"description" form:"description"`
	Order           *int    `json:"order" form:"order" validate:"omitempty,gte=1"`
	IsPublished     *bool   `json:"is_published" form:"is_published"`
	RemoveThumbnail bool    `json:"remove_thumbnail" form:"remove_thumbnail"`
}

/* ===================== RESPONSE ===================== */

type UnitResponse struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Order        int       `json:"order"`
	IsPublished  bool      `json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UnitDetailResponse: unit beserta lesson yang terlihat oleh principal.
type UnitDetailResponse struct {
	UnitResponse
	Lessons []lessonDto.LessonResponse `json:"lessons"`
}

func ToUnitResponse(m unitModel.UnitModel) UnitResponse {
	return UnitResponse{
		ID:           m.ID,
		SchoolID:     m.SchoolID,
		Title:        m.Title,
		Slug:         m.Slug,
		Description:  m.Description,
		ThumbnailURL: m.ThumbnailURL,
		Order:        m.Order,
		IsPublished:  m.IsPublished,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func ToUnitResponses(rows []unitModel.UnitModel) []UnitResponse {
	out := make([]UnitResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToUnitResponse(m))
	}
	return out
}
