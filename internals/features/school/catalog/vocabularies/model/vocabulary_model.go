package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VocabularyModel struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID      uuid.UUID                   `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Word          string                      `gorm:"size:100;not null" json:"word"`
	Meaning       string                      `gorm:"size:255;not null" json:"meaning"`
	Pronunciation string                      `gorm:"size:100" json:"pronunciation"`
	PartOfSpeech  string                      `gorm:"size:30" json:"part_of_speech"`
	Example       string                      `gorm:"type:text" json:"example"`
	Synonyms      datatypes.JSONSlice[string] `json:"synonyms"`
	ImageURL      *string                     `json:"image_url,omitempty"`
	AudioURL      *string                     `json:"audio_url,omitempty"`
	Order         int                         `gorm:"column:order_index;not null;index" json:"order"`
	IsPublished   bool                        `gorm:"not null" json:"is_published"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VocabularyModel) TableName() string { return "vocabularies" }

func (m *VocabularyModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
