package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// Scope adalah filter visibilitas per role. Tabel target wajib punya
// kolom school_id, class_id, is_published.
type Scope interface {
	Apply(q *gorm.DB) *gorm.DB
	isScope()
}

// AuthorScope: tampilan penulis (sekolah), tanpa filter publish.
type AuthorScope struct {
	SchoolID uuid.UUID
}

// ClassScope: konten kelas sendiri + konten sekolah tanpa kelas; hanya yang published.
type ClassScope struct {
	Class    classModel.ClassModel
	ClassID  uuid.UUID
	SchoolID uuid.UUID
}

// AllScope: admin.
type AllScope struct{}

func (AuthorScope) isScope() {}
func (ClassScope) isScope()  {}
func (AllScope) isScope()    {}

func (s AuthorScope) Apply(q *gorm.DB) *gorm.DB {
	return q.Where("school_id = ?", s.SchoolID)
}

func (s ClassScope) Apply(q *gorm.DB) *gorm.DB {
	return q.
		Where("is_published = ?", true).
		Where("(class_id = ? OR (class_id IS NULL AND school_id = ?))", s.ClassID, s.SchoolID)
}

func (AllScope) Apply(q *gorm.DB) *gorm.DB { return q }

// ScopeFor: satu fungsi resolusi per role; role lain ditolak.
func (r *Resolver) ScopeFor(ctx context.Context, p helperAuth.Principal) (Scope, error) {
	switch p.Role {
	case constants.RoleAdmin:
		return AllScope{}, nil
	case constants.RoleSchool:
		return AuthorScope{SchoolID: p.ID}, nil
	case constants.RoleTeacher:
		cls, err := r.HomeroomClass(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return newClassScope(cls), nil
	case constants.RoleStudent:
		cls, _, err := r.StudentClassByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return newClassScope(cls), nil
	}
	return nil, apperror.Forbidden("unknown role")
}

func newClassScope(cls *classModel.ClassModel) ClassScope {
	return ClassScope{Class: *cls, ClassID: cls.ID, SchoolID: cls.SchoolID}
}
