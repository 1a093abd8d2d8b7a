package model

import (
	"time"
)

// TokenBlacklistModel: access token yang sudah logout, disimpan sebagai sha256 hex sampai exp.
type TokenBlacklistModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID    string    `gorm:"size:36;index" json:"user_id"`
	ExpiredAt time.Time `gorm:"not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklistModel) TableName() string {
	return "token_blacklist"
}
