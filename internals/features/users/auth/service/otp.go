package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/pkg/errors"

	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
)

const (
	OTPPurposeLogin = "login"
	OTPPurposeReset = "reset"
)

func invalidOTP() error { return apperror.BadRequest("invalid or expired code") }

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// issueOTP menyimpan kode dulu, baru kirim email. Kalau email gagal, kode tetap tersimpan.
func (s *AuthService) issueOTP(ctx context.Context, u *userModel.UserModel, purpose string) error {
	if u.Email == nil || *u.Email == "" {
		return apperror.Validation("account has no email address")
	}
	code, err := generateOTP()
	if err != nil {
		return errors.Wrap(err, "generate otp")
	}
	expires := s.Now().Add(s.OTPTTL)
	if err := authRepo.SaveOTP(s.DB.WithContext(ctx), u.ID, code, purpose, expires); err != nil {
		return errors.Wrap(err, "save otp")
	}
	u.OTPCode, u.OTPPurpose, u.OTPExpiresAt = &code, &purpose, &expires

	subject, html := otpMail(purpose, code, s.OTPTTL)
	if err := s.Mailer.Send(ctx, *u.Email, subject, html); err != nil {
		log.Printf("[AuthService] otp mail to user %s failed: %v", u.ID, err)
		return apperror.Upstream("email service", err)
	}
	return nil
}

// checkOTP: purpose harus sama, belum kedaluwarsa, kode cocok.
func (s *AuthService) checkOTP(u *userModel.UserModel, purpose, code string) error {
	if u.OTPCode == nil || u.OTPPurpose == nil || u.OTPExpiresAt == nil {
		return invalidOTP()
	}
	if *u.OTPPurpose != purpose || !s.Now().Before(*u.OTPExpiresAt) {
		return invalidOTP()
	}
	if subtle.ConstantTimeCompare([]byte(*u.OTPCode), []byte(code)) != 1 {
		return invalidOTP()
	}
	return nil
}

func otpMail(purpose, code string, ttl time.Duration) (string, string) {
	minutes := int(ttl.Minutes())
	switch purpose {
	case OTPPurposeReset:
		return "LingoSchool password reset code",
			fmt.Sprintf("<p>Your password reset code is <b>%s</b>.</p><p>It expires in %d minutes.</p>", code, minutes)
	default:
		return "LingoSchool login code",
			fmt.Sprintf("<p>Your login code is <b>%s</b>.</p><p>It expires in %d minutes.</p>", code, minutes)
	}
}
