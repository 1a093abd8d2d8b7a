package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	announcementModel "lingoschool_backend/internals/features/school/announcements/model"
)

// CreateAnnouncementRequest: JSON atau multipart (field file: attachment).
// class_id kosong = untuk seluruh sekolah (hanya sekolah/admin).
type CreateAnnouncementRequest struct {
	SchoolID    string `json:"school_id" form:"school_id" validate:"omitempty,uuid"`
	ClassID     string `json:"class_id" form:"class_id" validate:"omitempty,uuid"`
	Title       string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Content     string `json:"content" form:"content" validate:"required,min=1"`
	IsPublished *bool  `json:"is_published" form:"is_published"`
}

func (r *CreateAnnouncementRequest) Normalize() {
	r.SchoolID = strings.TrimSpace(r.SchoolID)
	r.ClassID = strings.TrimSpace(r.ClassID)
	r.Title = strings.TrimSpace(r.Title)
	r.Content = strings.TrimSpace(r.Content)
}

type UpdateAnnouncementRequest struct {
	Title            *string `json:"title" form:"title" validate:"omitempty,min=1,max=200"`
	Content          *string `json:"content" form:"content" validate:"omitempty,min=1"`
	IsPublished      *bool   `json:"is_published" form:"is_published"`
	RemoveAttachment bool    `json:"remove_attachment" form:"remove_attachment"`
}

type AnnouncementResponse struct {
	ID            uuid.UUID  `json:"id"`
	SchoolID      uuid.UUID  `json:"school_id"`
	ClassID       *uuid.UUID `json:"class_id,omitempty"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AttachmentURL *string    `json:"attachment_url,omitempty"`
	IsPublished   bool       `json:"is_published"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func ToAnnouncementResponse(m announcementModel.AnnouncementModel) AnnouncementResponse {
	return AnnouncementResponse{
		ID:            m.ID,
		SchoolID:      m.SchoolID,
		ClassID:       m.ClassID,
		AuthorID:      m.AuthorID,
		Title:         m.Title,
		Content:       m.Content,
		AttachmentURL: m.AttachmentURL,
		IsPublished:   m.IsPublished,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToAnnouncementResponses(rows []announcementModel.AnnouncementModel) []AnnouncementResponse {
	out := make([]AnnouncementResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToAnnouncementResponse(m))
	}
	return out
}
