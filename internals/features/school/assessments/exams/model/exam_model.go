package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
)

type ExamModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string             `gorm:"size:150;not null" json:"title"`
	ExamType    constants.ExamType `gorm:"type:varchar(5);not null" json:"exam_type"`
	ClassID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"class_id"`
	TeacherID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"teacher_id"`
	StartTime   time.Time          `gorm:"not null" json:"start_time"`
	EndTime     time.Time          `gorm:"not null" json:"end_time"`
	IsPublished bool               `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ExamModel) TableName() string { return "exams" }

func (m *ExamModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (m *ExamModel) OwnedBy(teacherID uuid.UUID) bool { return m.TeacherID == teacherID }
