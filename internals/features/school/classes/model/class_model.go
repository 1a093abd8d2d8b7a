package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClassModel: kelas milik satu sekolah; nama unik per (school, grade, name).
type ClassModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string     `gorm:"size:50;not null;uniqueIndex:uq_classes_school_grade_name" json:"name"`
	Grade             string     `gorm:"size:10;not null;uniqueIndex:uq_classes_school_grade_name" json:"grade"`
	SchoolID          uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uq_classes_school_grade_name" json:"school_id"`
	HomeroomTeacherID *uuid.UUID `gorm:"type:uuid;index" json:"homeroom_teacher_id,omitempty"`
	IsActive          bool       `gorm:"not null" json:"is_active"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClassModel) TableName() string { return "classes" }

func (m *ClassModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ClassTeacherModel: co-teacher (selain wali kelas).
type ClassTeacherModel struct {
	ClassID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"class_id"`
	TeacherID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"teacher_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ClassTeacherModel) TableName() string { return "class_teachers" }
