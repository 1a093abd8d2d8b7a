package dto

import (
	"strings"
	"time"

	userDTO "lingoschool_backend/internals/features/users/user/dto"
)

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    *string `json:"email" validate:"omitempty,email,max=255"`
	FullName string  `json:"full_name" validate:"max=100"`
	Password string  `json:"password" validate:"required,min=8,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		if e == "" {
			r.Email = nil
		} else {
			r.Email = &e
		}
	}
}

// LoginRequest: identifier = username atau email.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() { r.Identifier = strings.TrimSpace(r.Identifier) }

type VerifyOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6,numeric"`
}

func (r *VerifyOTPRequest) Normalize() {
	r.Identifier = strings.TrimSpace(r.Identifier)
	r.Code = strings.TrimSpace(r.Code)
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Normalize() { r.Email = strings.ToLower(strings.TrimSpace(r.Email)) }

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func (r *ResetPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

// UpdateMeRequest: JSON atau multipart (field file "avatar").
type UpdateMeRequest struct {
	FullName *string `json:"full_name" form:"full_name" validate:"omitempty,max=100"`
	Email    *string `json:"email" form:"email" validate:"omitempty,email,max=255"`
}

func (r *UpdateMeRequest) Normalize() {
	if r.FullName != nil {
		v := strings.TrimSpace(*r.FullName)
		r.FullName = &v
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &v
	}
}

type TwoFactorRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

/* ===== Responses ===== */

type LoginResponse struct {
	RequiresOTP bool                  `json:"requires_otp"`
	AccessToken string                `json:"access_token,omitempty"`
	TokenType   string                `json:"token_type,omitempty"`
	ExpiresAt   *time.Time            `json:"expires_at,omitempty"`
	User        *userDTO.UserResponse `json:"user,omitempty"`
}
