package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// CatalogView: cara principal melihat katalog (unit/lesson/vocab/grammar).
// Katalog milik sekolah, bukan kelas; Class hanya terisi untuk murid yang sudah punya kelas.
type CatalogView struct {
	All           bool
	SchoolID      uuid.UUID
	PublishedOnly bool
	Class         *classModel.ClassModel
}

// Apply: filter school_id (+ is_published) pada tabel yang punya kolom tsb.
func (v CatalogView) Apply(q *gorm.DB) *gorm.DB {
	if v.All {
		return q
	}
	q = q.Where("school_id = ?", v.SchoolID)
	if v.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	return q
}

// CanSee untuk satu baris yang sudah dimuat.
func (v CatalogView) CanSee(schoolID uuid.UUID, published bool) bool {
	if v.All {
		return true
	}
	return schoolID == v.SchoolID && (published || !v.PublishedOnly)
}

// CatalogViewFor: admin semua; school miliknya (termasuk draft);
// teacher/student sekolahnya, hanya yang published.
func (r *Resolver) CatalogViewFor(ctx context.Context, p helperAuth.Principal) (CatalogView, error) {
	switch p.Role {
	case constants.RoleAdmin:
		return CatalogView{All: true}, nil
	case constants.RoleSchool:
		return CatalogView{SchoolID: p.ID}, nil
	case constants.RoleTeacher, constants.RoleStudent:
	default:
		return CatalogView{}, apperror.Forbidden("unknown role")
	}

	var u userModel.UserModel
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", p.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CatalogView{}, apperror.NotFound("user")
		}
		return CatalogView{}, errors.Wrap(err, "load user")
	}
	if u.SchoolID == nil {
		return CatalogView{}, apperror.Forbidden("account is not linked to a school")
	}
	view := CatalogView{SchoolID: *u.SchoolID, PublishedOnly: true}

	if p.Role == constants.RoleStudent {
		cls, err := r.StudentClass(ctx, &u)
		switch {
		case err == nil:
			view.Class = cls
		case apperror.HasCode(err, apperror.CodeStudentUnassigned):
		default:
			return CatalogView{}, err
		}
	}
	return view, nil
}

// CanAuthor: hanya sekolah pemilik (atau admin) yang boleh mengubah katalog.
func CanAuthor(p helperAuth.Principal, schoolID uuid.UUID) bool {
	return p.Role == constants.RoleAdmin || (p.Role == constants.RoleSchool && p.ID == schoolID)
}
