package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GrammarModel struct {
	ID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID    uuid.UUID                   `gorm:"type:uuid;not null;index" json:"lesson_id"`
	Title       string                      `gorm:"size:150;not null" json:"title"`
	Structure   string                      `gorm:"size:255" json:"structure"`
	Explanation string                      `gorm:"type:text" json:"explanation"`
	Examples    datatypes.JSONSlice[string] `json:"examples"`
	Order       int                         `gorm:"column:order_index;not null;index" json:"order"`
	IsPublished bool                        `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (GrammarModel) TableName() string { return "grammars" }

func (m *GrammarModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
