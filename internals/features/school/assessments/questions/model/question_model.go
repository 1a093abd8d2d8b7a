package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
)

// QuestionModel dimiliki tepat satu dari lesson atau exam.
//   - soal lesson: ditulis sekolah (SchoolID = sekolah), ClassID opsional (null = semua kelas sekolah)
//   - soal exam: ditulis guru pemilik exam (SchoolID null, ClassID = kelas exam)
type QuestionModel struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID      *uuid.UUID             `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	ExamID        *uuid.UUID             `gorm:"type:uuid;index" json:"exam_id,omitempty"`
	SchoolID      *uuid.UUID             `gorm:"type:uuid;index" json:"school_id,omitempty"`
	ClassID       *uuid.UUID             `gorm:"type:uuid;index" json:"class_id,omitempty"`
	CreatedBy     uuid.UUID              `gorm:"type:uuid;not null" json:"created_by"`
	Skill         constants.Skill        `gorm:"type:varchar(20);not null" json:"skill"`
	Type          constants.QuestionType `gorm:"type:varchar(20);not null" json:"type"`
	Prompt        string                 `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSON         `json:"options,omitempty"`
	CorrectAnswer datatypes.JSON         `json:"correct_answer,omitempty"`
	Explanation   string                 `gorm:"type:text" json:"explanation,omitempty"`
	Points        float64                `gorm:"not null" json:"points"`
	Order         int                    `gorm:"column:order_index;not null;index" json:"order"`
	IsPublished   bool                   `gorm:"not null" json:"is_published"`
	CreatedAt     time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QuestionModel) TableName() string { return "questions" }

func (m *QuestionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// BelongsTo: apakah soal ini milik target (lesson/exam) yang dimaksud.
func (m *QuestionModel) BelongsTo(kind constants.SubmissionKind, targetID uuid.UUID) bool {
	switch kind {
	case constants.SubmissionLesson:
		return m.LessonID != nil && *m.LessonID == targetID
	case constants.SubmissionExam:
		return m.ExamID != nil && *m.ExamID == targetID
	}
	return false
}
