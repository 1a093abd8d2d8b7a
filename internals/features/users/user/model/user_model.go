package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
)

// UserModel merepresentasikan tabel users (admin/school/teacher/student).
type UserModel struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        *string        `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	FullName     string         `gorm:"size:100" json:"full_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         constants.Role `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	IsDisabled   bool           `gorm:"not null;default:false" json:"is_disabled"`
	AvatarURL    *string        `json:"avatar_url,omitempty"`
	GoogleID     *string        `gorm:"size:255;uniqueIndex" json:"-"`

	// sekolah pemilik (untuk teacher & student)
	SchoolID *uuid.UUID `gorm:"type:uuid;index" json:"school_id,omitempty"`
	// id kelas (kanonik) atau nama kelas lama (legacy)
	ClassRef *string `gorm:"column:class_ref;size:100;index" json:"class_ref,omitempty"`

	TwoFactorEnabled bool       `gorm:"not null;default:false" json:"two_factor_enabled"`
	OTPCode          *string    `gorm:"size:6" json:"-"`
	OTPPurpose       *string    `gorm:"size:20" json:"-"`
	OTPExpiresAt     *time.Time `json:"-"`

	// agregat nilai; diperbarui bersama insert submission (optimistic version)
	Progress          float64 `gorm:"not null;default:0" json:"progress"`
	Score             float64 `gorm:"not null;default:0" json:"score"`
	ScoreSum          float64 `gorm:"not null;default:0" json:"-"`
	ScoredSubmissions int     `gorm:"not null;default:0" json:"scored_submissions"`
	LessonsCompleted  int     `gorm:"not null;default:0" json:"lessons_completed"`
	Version           int     `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = constants.RoleStudent
	}
	u.Username = strings.TrimSpace(u.Username)
	if u.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*u.Email))
		u.Email = &e
	}
	return nil
}

// DisplayName: full name kalau ada, fallback username.
func (u *UserModel) DisplayName() string {
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Username
}

// ClearOTP mengosongkan kode (dipakai saat sukses atau regenerasi).
func (u *UserModel) ClearOTP() {
	u.OTPCode = nil
	u.OTPPurpose = nil
	u.OTPExpiresAt = nil
}
