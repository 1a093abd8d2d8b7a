package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
)

// LessonModel: lessonType menentukan sub-konten (vocabulary/grammar) yang boleh dibuat.
type LessonModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UnitID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"unit_id"`
	SchoolID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"school_id"`
	Title       string          `gorm:"size:150;not null" json:"title"`
	Slug        string          `gorm:"size:160;not null;index" json:"slug"`
	LessonType  constants.Skill `gorm:"type:varchar(20);not null" json:"lesson_type"`
	Content     string          `gorm:"type:text" json:"content"`
	VideoURL    *string         `json:"video_url,omitempty"`
	Order       int             `gorm:"column:order_index;not null;index" json:"order"`
	IsPublished bool            `gorm:"not null" json:"is_published"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LessonModel) TableName() string { return "lessons" }

func (m *LessonModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
