package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoschool_backend/internals/constants"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type AssignmentService struct {
	DB       *gorm.DB
	Resolver *classService.Resolver
}

func NewAssignmentService(db *gorm.DB, resolver *classService.Resolver) *AssignmentService {
	return &AssignmentService{DB: db, Resolver: resolver}
}

type UpsertInput struct {
	ClassID     uuid.UUID
	LessonID    uuid.UUID
	Deadline    *time.Time
	IsPublished bool
}

// EffectiveDeadline: deadline assignment kelas menang atas deadline lesson;
// assignment tanpa deadline ikut lesson.
func EffectiveDeadline(lesson *lessonModel.LessonModel, a *assignmentModel.AssignmentModel) *time.Time {
	if a != nil && a.Deadline != nil {
		return a.Deadline
	}
	return lesson.Deadline
}

// Find: nil,nil kalau belum ada assignment untuk pasangan tsb.
func (s *AssignmentService) Find(ctx context.Context, classID, lessonID uuid.UUID) (*assignmentModel.AssignmentModel, error) {
	var rows []assignmentModel.AssignmentModel
	if err := s.DB.WithContext(ctx).
		Where("class_id = ? AND lesson_id = ?", classID, lessonID).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load assignment")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Upsert: create-or-replace per (class, lesson), hanya oleh wali kelas (atau admin).
func (s *AssignmentService) Upsert(ctx context.Context, p helperAuth.Principal, in UpsertInput) (*assignmentModel.AssignmentModel, error) {
	var cls classModel.ClassModel
	if err := s.DB.WithContext(ctx).First(&cls, "id = ? AND is_active = ?", in.ClassID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("class")
		}
		return nil, errors.Wrap(err, "load class")
	}
	if p.Role != constants.RoleAdmin {
		if cls.HomeroomTeacherID == nil || *cls.HomeroomTeacherID != p.ID {
			return nil, apperror.NotHomeroomTeacher()
		}
	}

	var lesson lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&lesson, "id = ?", in.LessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("lesson")
		}
		return nil, errors.Wrap(err, "load lesson")
	}
	if lesson.SchoolID != cls.SchoolID {
		return nil, apperror.Forbidden("lesson belongs to another school")
	}

	teacherID := p.ID
	if cls.HomeroomTeacherID != nil {
		teacherID = *cls.HomeroomTeacherID
	}
	row := assignmentModel.AssignmentModel{
		ClassID:     cls.ID,
		LessonID:    lesson.ID,
		TeacherID:   teacherID,
		Deadline:    in.Deadline,
		IsPublished: in.IsPublished,
	}
	if err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "class_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"teacher_id", "deadline", "is_published", "updated_at"}),
		}).
		Create(&row).Error; err != nil {
		return nil, errors.Wrap(err, "upsert assignment")
	}

	// id hasil Create bisa berbeda dari baris lama saat conflict
	saved, err := s.Find(ctx, cls.ID, lesson.ID)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, errors.New("assignment vanished after upsert")
	}
	return saved, nil
}

type ListFilter struct {
	ClassID  *uuid.UUID
	LessonID *uuid.UUID
}

// List: teacher → kelas yang diampu; school → kelas miliknya; admin → semua.
func (s *AssignmentService) List(ctx context.Context, p helperAuth.Principal, f ListFilter) ([]assignmentModel.AssignmentModel, error) {
	q := s.DB.WithContext(ctx).Model(&assignmentModel.AssignmentModel{})
	switch p.Role {
	case constants.RoleAdmin:
	case constants.RoleSchool:
		q = q.Where("class_id IN (?)", s.DB.Model(&classModel.ClassModel{}).Select("id").Where("school_id = ?", p.ID))
	case constants.RoleTeacher:
		dir, err := s.Resolver.TeachingDirectory(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		q = q.Where("class_id IN ?", dir.IDs())
	case constants.RoleStudent:
		cls, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if apperror.HasCode(err, apperror.CodeStudentUnassigned) {
			return []assignmentModel.AssignmentModel{}, nil
		}
		if err != nil {
			return nil, err
		}
		q = q.Where("class_id = ? AND is_published = ?", cls.ID, true)
	default:
		return nil, apperror.Forbidden("unknown role")
	}
	if f.ClassID != nil {
		q = q.Where("class_id = ?", *f.ClassID)
	}
	if f.LessonID != nil {
		q = q.Where("lesson_id = ?", *f.LessonID)
	}

	var rows []assignmentModel.AssignmentModel
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	return rows, nil
}

func (s *AssignmentService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	var row assignmentModel.AssignmentModel
	if err := s.DB.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("assignment")
		}
		return errors.Wrap(err, "load assignment")
	}
	if p.Role != constants.RoleAdmin {
		var cls classModel.ClassModel
		if err := s.DB.WithContext(ctx).First(&cls, "id = ?", row.ClassID).Error; err != nil {
			return errors.Wrap(err, "load class")
		}
		if cls.HomeroomTeacherID == nil || *cls.HomeroomTeacherID != p.ID {
			return apperror.NotHomeroomTeacher()
		}
	}
	return s.DB.WithContext(ctx).Delete(&row).Error
}
