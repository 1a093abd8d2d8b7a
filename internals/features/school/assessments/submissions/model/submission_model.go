package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

// GradedAnswer adalah snapshot penilaian; tidak dihitung ulang bila soal berubah.
type GradedAnswer struct {
	QuestionID    uuid.UUID              `json:"question_id"`
	Type          constants.QuestionType `json:"type"`
	Skill         constants.Skill        `json:"skill"`
	Prompt        string                 `json:"prompt"`
	UserAnswer    json.RawMessage        `json:"user_answer"`
	CorrectAnswer json.RawMessage        `json:"correct_answer,omitempty"`
	IsCorrect     *bool                  `json:"is_correct"`
	Points        float64                `json:"points"`
	PointsAwarded float64                `json:"points_awarded"`
}

// SkillScores: skill → poin (hanya submission lesson).
type SkillScores map[constants.Skill]float64

func NewSkillScores() SkillScores {
	s := make(SkillScores, len(constants.AllSkills))
	for _, k := range constants.AllSkills {
		s[k] = 0
	}
	return s
}

func (s SkillScores) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// SubmissionModel: immutable setelah dibuat; submit ulang = baris baru.
type SubmissionModel struct {
	ID         uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID                         `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind       constants.SubmissionKind          `gorm:"type:varchar(10);not null" json:"kind"`
	LessonID   *uuid.UUID                        `gorm:"type:uuid;index" json:"lesson_id,omitempty"`
	ExamID     *uuid.UUID                        `gorm:"type:uuid;index" json:"exam_id,omitempty"`
	Answers    datatypes.JSONSlice[GradedAnswer] `json:"answers"`
	Scores     datatypes.JSONType[SkillScores]   `json:"scores"`
	TotalScore float64                           `gorm:"not null" json:"total_score"`
	MaxScore   float64                           `gorm:"not null" json:"max_score"`
	CreatedAt  time.Time                         `gorm:"autoCreateTime;index" json:"submitted_at"`

	User *userModel.UserModel `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (SubmissionModel) TableName() string { return "submissions" }

func (m *SubmissionModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
