package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignmentModel: override deadline & publish per (class, lesson).
type AssignmentModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClassID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_class_lesson" json:"class_id"`
	LessonID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uq_assignments_class_lesson;index" json:"lesson_id"`
	TeacherID   uuid.UUID  `gorm:"type:uuid;not null" json:"teacher_id"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsPublished bool       `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AssignmentModel) TableName() string { return "assignments" }

func (m *AssignmentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
