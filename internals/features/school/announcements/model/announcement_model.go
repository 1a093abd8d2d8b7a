package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnnouncementModel: ClassID null = untuk seluruh sekolah.
type AnnouncementModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"school_id"`
	ClassID       *uuid.UUID `gorm:"type:uuid;index" json:"class_id,omitempty"`
	AuthorID      uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	Title         string     `gorm:"size:200;not null" json:"title"`
	Content       string     `gorm:"type:text;not null" json:"content"`
	AttachmentURL *string    `json:"attachment_url,omitempty"`
	IsPublished   bool       `gorm:"not null" json:"is_published"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AnnouncementModel) TableName() string { return "announcements" }

func (m *AnnouncementModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
