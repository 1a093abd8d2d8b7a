package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
)

// Resolver menjawab "kelas mana milik/diampu principal ini".
type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

// HomeroomClass: satu-satunya kelas aktif yang diwalikan guru.
func (r *Resolver) HomeroomClass(ctx context.Context, teacherID uuid.UUID) (*classModel.ClassModel, error) {
	var rows []classModel.ClassModel
	if err := r.DB.WithContext(ctx).
		Where("homeroom_teacher_id = ? AND is_active = ?", teacherID, true).
		Order("created_at ASC").
		Limit(2).
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load homeroom class")
	}
	if len(rows) == 0 {
		return nil, apperror.NotHomeroomTeacher()
	}
	if len(rows) > 1 {
		log.Printf("[ClassResolver] teacher %s is homeroom of more than one active class, using %s", teacherID, rows[0].ID)
	}
	return &rows[0], nil
}

// TeachingClasses: kelas aktif di mana guru adalah wali atau co-teacher.
func (r *Resolver) TeachingClasses(ctx context.Context, teacherID uuid.UUID) ([]classModel.ClassModel, error) {
	var rows []classModel.ClassModel
	err := r.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Where(
			r.DB.Where("homeroom_teacher_id = ?", teacherID).
				Or("id IN (?)", r.DB.Model(&classModel.ClassTeacherModel{}).Select("class_id").Where("teacher_id = ?", teacherID)),
		).
		Order("grade ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load teaching classes")
	}
	return rows, nil
}

// TeachingDirectory: TeachingClasses sebagai Directory; kosong → NotHomeroomTeacher.
func (r *Resolver) TeachingDirectory(ctx context.Context, teacherID uuid.UUID) (*Directory, error) {
	rows, err := r.TeachingClasses(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperror.NotHomeroomTeacher()
	}
	return NewDirectory(rows), nil
}

// StudentClass me-resolve class_ref murid ke kelas aktif.
// Referensi nama lama hanya diterima kalau cocok dengan tepat satu kelas aktif.
func (r *Resolver) StudentClass(ctx context.Context, student *userModel.UserModel) (*classModel.ClassModel, error) {
	ref, ok := ParseClassRef(student.ClassRef)
	if !ok {
		return nil, apperror.StudentUnassigned()
	}

	q := r.DB.WithContext(ctx).Where("is_active = ?", true)
	switch v := ref.(type) {
	case ByID:
		q = q.Where("id = ?", v.ID)
	case ByName:
		q = q.Where("name = ?", v.Name)
		if student.SchoolID != nil {
			q = q.Where("school_id = ?", *student.SchoolID)
		}
	}

	var rows []classModel.ClassModel
	if err := q.Limit(2).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load student class")
	}
	id, ok := NewDirectory(rows).Resolve(ref)
	if !ok {
		return nil, apperror.StudentUnassigned()
	}
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i], nil
		}
	}
	return nil, apperror.StudentUnassigned()
}

// StudentClassByID memuat user terlebih dahulu.
func (r *Resolver) StudentClassByID(ctx context.Context, studentID uuid.UUID) (*classModel.ClassModel, *userModel.UserModel, error) {
	var u userModel.UserModel
	if err := r.DB.WithContext(ctx).First(&u, "id = ?", studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("user")
		}
		return nil, nil, errors.Wrap(err, "load student")
	}
	cls, err := r.StudentClass(ctx, &u)
	if err != nil {
		return nil, &u, err
	}
	return cls, &u, nil
}

// IsTeacherOf: wali atau co-teacher kelas aktif tsb.
func (r *Resolver) IsTeacherOf(ctx context.Context, teacherID, classID uuid.UUID) (bool, error) {
	rows, err := r.TeachingClasses(ctx, teacherID)
	if err != nil {
		return false, err
	}
	return NewDirectory(rows).Contains(classID), nil
}
