package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/users/user/model"
)

/* ===================== REQUESTS ===================== */

// CreateUserRequest: admin bebas memilih role & school_id; sekolah hanya teacher/student miliknya.
type CreateUserRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=50"`
	Email    *string    `json:"email" validate:"omitempty,email,max=255"`
	FullName string     `json:"full_name" validate:"max=100"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	Role     string     `json:"role" validate:"required,role"`
	SchoolID *uuid.UUID `json:"school_id"`
	ClassID  *uuid.UUID `json:"class_id"`
}

func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	r.Email = normalizeEmail(r.Email)
}

// CreateTeacherRequest: /api/teachers, role dipaksa teacher; school_id hanya dibaca untuk admin.
type CreateTeacherRequest struct {
	Username string     `json:"username" validate:"required,min=3,max=50"`
	Email    *string    `json:"email" validate:"omitempty,email,max=255"`
	FullName string     `json:"full_name" validate:"max=100"`
	Password string     `json:"password" validate:"required,min=8,max=72"`
	SchoolID *uuid.UUID `json:"school_id"`
}

func (r *CreateTeacherRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = normalizeEmail(r.Email)
}

func (r CreateTeacherRequest) AsUser() CreateUserRequest {
	return CreateUserRequest{
		Username: r.Username,
		Email:    r.Email,
		FullName: r.FullName,
		Password: r.Password,
		Role:     string(constants.RoleTeacher),
		SchoolID: r.SchoolID,
	}
}

// UpdateUserRequest: allow-list; field lain (role, agregat nilai) tidak bisa disentuh.
type UpdateUserRequest struct {
	FullName         *string    `json:"full_name" validate:"omitempty,max=100"`
	Email            *string    `json:"email" validate:"omitempty,email,max=255"`
	TwoFactorEnabled *bool      `json:"two_factor_enabled"`
	SchoolID         *uuid.UUID `json:"school_id"`
}

func (r *UpdateUserRequest) Normalize() {
	if r.FullName != nil {
		v := strings.TrimSpace(*r.FullName)
		r.FullName = &v
	}
	r.Email = normalizeEmail(r.Email)
}

type ResetUserPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

func normalizeEmail(e *string) *string {
	if e == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*e))
	if v == "" {
		return nil
	}
	return &v
}

/* ===================== RESPONSES ===================== */

type UserResponse struct {
	ID               uuid.UUID      `json:"id"`
	Username         string         `json:"username"`
	Email            *string        `json:"email,omitempty"`
	FullName         string         `json:"full_name"`
	Role             constants.Role `json:"role"`
	IsDisabled       bool           `json:"is_disabled"`
	AvatarURL        *string        `json:"avatar_url,omitempty"`
	SchoolID         *uuid.UUID     `json:"school_id,omitempty"`
	ClassRef         *string        `json:"class_ref,omitempty"`
	TwoFactorEnabled bool           `json:"two_factor_enabled"`
	Progress         float64        `json:"progress"`
	Score            float64        `json:"score"`
	LessonsCompleted int            `json:"lessons_completed"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func ToUserResponse(u *model.UserModel) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FullName:         u.FullName,
		Role:             u.Role,
		IsDisabled:       u.IsDisabled,
		AvatarURL:        u.AvatarURL,
		SchoolID:         u.SchoolID,
		ClassRef:         u.ClassRef,
		TwoFactorEnabled: u.TwoFactorEnabled,
		Progress:         u.Progress,
		Score:            u.Score,
		LessonsCompleted: u.LessonsCompleted,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func ToUserResponses(rows []model.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(rows))
	for i := range rows {
		out = append(out, ToUserResponse(&rows[i]))
	}
	return out
}

// TeacherResponse: guru + kelas wali (kalau ada).
type TeacherResponse struct {
	UserResponse
	HomeroomClassID   *uuid.UUID `json:"homeroom_class_id,omitempty"`
	HomeroomClassName *string    `json:"homeroom_class_name,omitempty"`
}
