package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
)

/* ===================== REQUEST ===================== */

// CreateClassRequest: school_id hanya dibaca untuk admin.
type CreateClassRequest struct {
	SchoolID          *uuid.UUID `json:"school_id"`
	Name              string     `json:"name" validate:"required,min=1,max=50"`
	Grade             string     `json:"grade" validate:"required,min=1,max=10"`
	HomeroomTeacherID *uuid.UUID `json:"homeroom_teacher_id"`
	IsActive          *bool      `json:"is_active"`
}

func (r *CreateClassRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Grade = strings.TrimSpace(r.Grade)
}

type UpdateClassRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=50"`
	Grade    *string `json:"grade" validate:"omitempty,min=1,max=10"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateClassRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Grade != nil {
		v := strings.TrimSpace(*r.Grade)
		r.Grade = &v
	}
}

// SetHomeroomRequest: teacher_id null = kosongkan wali kelas.
type SetHomeroomRequest struct {
	TeacherID *uuid.UUID `json:"teacher_id"`
}

type AddTeacherRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" validate:"required"`
}

type AddStudentsRequest struct {
	StudentIDs []uuid.UUID `json:"student_ids" validate:"required,min=1,max=200"`
}

/* ===================== RESPONSE ===================== */

type ClassResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Grade             string     `json:"grade"`
	SchoolID          uuid.UUID  `json:"school_id"`
	HomeroomTeacherID *uuid.UUID `json:"homeroom_teacher_id,omitempty"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         time.Time  `json:"created_at"`
}

type MemberResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type ClassDetailResponse struct {
	ClassResponse
	Homeroom   *MemberResponse  `json:"homeroom_teacher,omitempty"`
	CoTeachers []MemberResponse `json:"co_teachers"`
	Students   []MemberResponse `json:"students"`
}

func ToClassResponse(m classModel.ClassModel) ClassResponse {
	return ClassResponse{
		ID:                m.ID,
		Name:              m.Name,
		Grade:             m.Grade,
		SchoolID:          m.SchoolID,
		HomeroomTeacherID: m.HomeroomTeacherID,
		IsActive:          m.IsActive,
		CreatedAt:         m.CreatedAt,
	}
}

func ToClassResponses(rows []classModel.ClassModel) []ClassResponse {
	out := make([]ClassResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, ToClassResponse(m))
	}
	return out
}

func ToMemberResponse(u userModel.UserModel) MemberResponse {
	return MemberResponse{ID: u.ID, Username: u.Username, FullName: u.DisplayName(), AvatarURL: u.AvatarURL}
}

func ToMemberResponses(rows []userModel.UserModel) []MemberResponse {
	out := make([]MemberResponse, 0, len(rows))
	for _, u := range rows {
		out = append(out, ToMemberResponse(u))
	}
	return out
}
