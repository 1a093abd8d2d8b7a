package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UnitModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID     uuid.UUID `gorm:"type:uuid;not null;index" json:"school_id"`
	Title        string    `gorm:"size:150;not null" json:"title"`
	Slug         string    `gorm:"size:160;not null;index" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Order        int       `gorm:"column:order_index;not null;index" json:"order"`
	IsPublished  bool      `gorm:"not null" json:"is_published"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UnitModel) TableName() string { return "units" }

func (m *UnitModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
