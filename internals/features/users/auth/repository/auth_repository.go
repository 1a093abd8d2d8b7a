// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	authModel "lingoschool_backend/internals/features/users/auth/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

/* ====================== USER ====================== */

// FindUserByIdentifier: username (case-sensitive) atau email (lowercase).
func FindUserByIdentifier(db *gorm.DB, identifier string) (*userModel.UserModel, error) {
	identifier = strings.TrimSpace(identifier)
	var user userModel.UserModel
	if err := db.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByGoogleID(db *gorm.DB, googleID string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(db *gorm.DB, email string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken / EmailTaken dipakai sebelum insert supaya pesan 409 jelas.
func UsernameTaken(db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.Model(&userModel.UserModel{}).Where("username = ?", strings.TrimSpace(username)).Count(&n).Error
	return n > 0, err
}

func EmailTaken(db *gorm.DB, email string, except *uuid.UUID) (bool, error) {
	q := db.Model(&userModel.UserModel{}).Where("email = ?", strings.ToLower(strings.TrimSpace(email)))
	if except != nil {
		q = q.Where("id <> ?", *except)
	}
	var n int64
	err := q.Count(&n).Error
	return n > 0, err
}

func CreateUser(db *gorm.DB, user *userModel.UserModel) error {
	return db.Create(user).Error
}

func UpdateUserPassword(db *gorm.DB, userID uuid.UUID, hash string) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Update("password_hash", hash).Error
}

/* ====================== OTP ====================== */

func SaveOTP(db *gorm.DB, userID uuid.UUID, code, purpose string, expiresAt time.Time) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Updates(map[string]any{
		"otp_code":       code,
		"otp_purpose":    purpose,
		"otp_expires_at": expiresAt.UTC(),
	}).Error
}

// clearOTPColumns bisa digabung dengan update lain (mis. password baru).
func clearOTPColumns(extra map[string]any) map[string]any {
	out := map[string]any{"otp_code": nil, "otp_purpose": nil, "otp_expires_at": nil}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func ClearOTP(db *gorm.DB, userID uuid.UUID, extra map[string]any) error {
	return db.Model(&userModel.UserModel{}).Where("id = ?", userID).Updates(clearOTPColumns(extra)).Error
}

// ClearExpiredOTPs: kode yang sudah lewat expiry dikosongkan (cron harian).
func ClearExpiredOTPs(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&userModel.UserModel{}).
		Where("otp_expires_at IS NOT NULL AND otp_expires_at < ?", now.UTC()).
		Updates(clearOTPColumns(nil))
	return res.RowsAffected, res.Error
}

/* ====================== TOKEN BLACKLIST ====================== */

// HashToken: token mentah tidak pernah disimpan.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func BlacklistToken(db *gorm.DB, raw string, userID uuid.UUID, expiredAt time.Time) error {
	row := authModel.TokenBlacklistModel{
		TokenHash: HashToken(raw),
		UserID:    userID.String(),
		ExpiredAt: expiredAt.UTC(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token_hash"}},
		DoNothing: true,
	}).Create(&row).Error
}

func IsTokenBlacklisted(db *gorm.DB, raw string) (bool, error) {
	var n int64
	err := db.Model(&authModel.TokenBlacklistModel{}).
		Where("token_hash = ?", HashToken(raw)).
		Count(&n).Error
	return n > 0, err
}

// DeleteExpiredBlacklist menghapus baris yang exp-nya sebelum `before`.
func DeleteExpiredBlacklist(db *gorm.DB, before time.Time) (int64, error) {
	res := db.Where("expired_at < ?", before.UTC()).Delete(&authModel.TokenBlacklistModel{})
	return res.RowsAffected, res.Error
}
