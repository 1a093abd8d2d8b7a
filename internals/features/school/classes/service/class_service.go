package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	"lingoschool_backend/internals/features/school/classes/dto"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// ClassService: CRUD kelas; roster lewat RosterService.
type ClassService struct {
	DB       *gorm.DB
	Resolver *Resolver
	Roster   *RosterService
}

func NewClassService(db *gorm.DB, resolver *Resolver, roster *RosterService) *ClassService {
	return &ClassService{DB: db, Resolver: resolver, Roster: roster}
}

type ClassDetail struct {
	Class      classModel.ClassModel
	Homeroom   *userModel.UserModel
	CoTeachers []userModel.UserModel
	Students   []userModel.UserModel
}

func (d ClassDetail) Response() dto.ClassDetailResponse {
	out := dto.ClassDetailResponse{
		ClassResponse: dto.ToClassResponse(d.Class),
		CoTeachers:    dto.ToMemberResponses(d.CoTeachers),
		Students:      dto.ToMemberResponses(d.Students),
	}
	if d.Homeroom != nil {
		m := dto.ToMemberResponse(*d.Homeroom)
		out.Homeroom = &m
	}
	return out
}

/* ===================== CREATE ===================== */

func (s *ClassService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateClassRequest) (*classModel.ClassModel, error) {
	var schoolID uuid.UUID
	switch p.Role {
	case constants.RoleSchool:
		schoolID = p.ID
	case constants.RoleAdmin:
		if req.SchoolID == nil {
			return nil, apperror.Validation("school_id is required")
		}
		schoolID = *req.SchoolID
	default:
		return nil, apperror.Forbidden(constants.RoleErrorSchool("class management"))
	}

	m := classModel.ClassModel{
		Name:     req.Name,
		Grade:    req.Grade,
		SchoolID: schoolID,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, apperror.Conflict("class " + m.Grade + " " + m.Name + " already exists")
		}
		return nil, errors.Wrap(err, "create class")
	}
	if req.HomeroomTeacherID != nil {
		if err := s.Roster.SetHomeroom(ctx, &m, req.HomeroomTeacherID); err != nil {
			// wali tidak valid → batalkan pembuatan kelas
			if delErr := s.DB.WithContext(ctx).Delete(&m).Error; delErr != nil {
				log.Printf("[ClassService] rollback class %s failed: %v", m.ID, delErr)
			}
			return nil, err
		}
	}
	log.Printf("[ClassService] class %s (%s %s) created for school %s", m.ID, m.Grade, m.Name, schoolID)
	return &m, nil
}

/* ===================== READ ===================== */

// List: admin semua (opsional school_id); school miliknya; teacher yang diampu; student kelasnya.
func (s *ClassService) List(ctx context.Context, p helperAuth.Principal, schoolID *uuid.UUID) ([]classModel.ClassModel, error) {
	switch p.Role {
	case constants.RoleTeacher:
		return s.Resolver.TeachingClasses(ctx, p.ID)
	case constants.RoleStudent:
		cls, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if apperror.HasCode(err, apperror.CodeStudentUnassigned) {
			return []classModel.ClassModel{}, nil
		}
		if err != nil {
			return nil, err
		}
		return []classModel.ClassModel{*cls}, nil
	}

	q := s.DB.WithContext(ctx).Model(&classModel.ClassModel{})
	switch p.Role {
	case constants.RoleAdmin:
		if schoolID != nil {
			q = q.Where("school_id = ?", *schoolID)
		}
	case constants.RoleSchool:
		q = q.Where("school_id = ?", p.ID)
	default:
		return nil, apperror.Forbidden("unknown role")
	}
	var rows []classModel.ClassModel
	if err := q.Order("grade ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list classes")
	}
	return rows, nil
}

// Get: detail + roster. Teacher hanya kelas yang diampu; student hanya kelasnya.
func (s *ClassService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*ClassDetail, error) {
	var cls *classModel.ClassModel
	switch p.Role {
	case constants.RoleAdmin, constants.RoleSchool:
		c, err := s.Roster.LoadOwned(ctx, id, p.ID, p.Role)
		if err != nil {
			return nil, err
		}
		cls = c
	case constants.RoleTeacher:
		dir, err := s.Resolver.TeachingDirectory(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		c, ok := dir.Get(id)
		if !ok {
			return nil, apperror.NotAuthorizedForClass()
		}
		cls = &c
	case constants.RoleStudent:
		c, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if c.ID != id {
			return nil, apperror.NotAuthorizedForClass()
		}
		cls = c
	default:
		return nil, apperror.Forbidden("unknown role")
	}
	return s.detail(ctx, cls)
}

func (s *ClassService) detail(ctx context.Context, cls *classModel.ClassModel) (*ClassDetail, error) {
	out := &ClassDetail{Class: *cls}
	if cls.HomeroomTeacherID != nil {
		var u userModel.UserModel
		err := s.DB.WithContext(ctx).First(&u, "id = ?", *cls.HomeroomTeacherID).Error
		switch {
		case err == nil:
			out.Homeroom = &u
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, errors.Wrap(err, "load homeroom teacher")
		}
	}
	var err error
	if out.CoTeachers, err = s.Roster.CoTeachers(ctx, cls); err != nil {
		return nil, err
	}
	if out.Students, err = s.Roster.Students(ctx, cls); err != nil {
		return nil, err
	}
	return out, nil
}

/* ===================== UPDATE / DELETE ===================== */

func (s *ClassService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateClassRequest) (*classModel.ClassModel, error) {
	cls, err := s.Roster.LoadOwned(ctx, id, p.ID, p.Role)
	if err != nil {
		return nil, err
	}
	oldName := cls.Name
	patch := map[string]any{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.Grade != nil {
		patch["grade"] = *req.Grade
	}
	if req.IsActive != nil {
		patch["is_active"] = *req.IsActive
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(cls).Updates(patch).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return nil, apperror.Conflict("class name already used in this grade")
			}
			return nil, errors.Wrap(err, "update class")
		}
	}
	if req.Name != nil && *req.Name != oldName {
		log.Printf("[ClassService] class %s renamed %q -> %q; legacy name refs no longer match", cls.ID, oldName, *req.Name)
	}
	var fresh classModel.ClassModel
	if err := s.DB.WithContext(ctx).First(&fresh, "id = ?", cls.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload class")
	}
	return &fresh, nil
}

// Delete: ditolak kalau kelas masih punya exam; co-teacher, assignment & ref murid dibersihkan.
func (s *ClassService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	cls, err := s.Roster.LoadOwned(ctx, id, p.ID, p.Role)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var exams int64
		if err := tx.Model(&examModel.ExamModel{}).Where("class_id = ?", cls.ID).Count(&exams).Error; err != nil {
			return errors.Wrap(err, "count class exams")
		}
		if exams > 0 {
			return apperror.Conflict("class still has exams; deactivate it instead")
		}
		if err := tx.Where("class_id = ?", cls.ID).Delete(&classModel.ClassTeacherModel{}).Error; err != nil {
			return errors.Wrap(err, "delete class teachers")
		}
		if err := tx.Where("class_id = ?", cls.ID).Delete(&assignmentModel.AssignmentModel{}).Error; err != nil {
			return errors.Wrap(err, "delete class assignments")
		}
		if err := tx.Model(&userModel.UserModel{}).
			Where("class_ref = ?", cls.ID.String()).
			Update("class_ref", nil).Error; err != nil {
			return errors.Wrap(err, "detach students")
		}
		return errors.Wrap(tx.Delete(cls).Error, "delete class")
	})
}
