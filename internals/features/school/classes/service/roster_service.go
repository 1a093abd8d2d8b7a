package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lingoschool_backend/internals/constants"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	userModel "lingoschool_backend/internals/features/users/user/model"
	"lingoschool_backend/internals/helpers/apperror"
)

/* =========================================================
   Roster & homeroom
========================================================= */

type RosterService struct {
	DB *gorm.DB
}

func NewRosterService(db *gorm.DB) *RosterService {
	return &RosterService{DB: db}
}

// LoadOwned: kelas harus milik sekolah principal (admin bebas).
func (s *RosterService) LoadOwned(ctx context.Context, classID, actorID uuid.UUID, actorRole constants.Role) (*classModel.ClassModel, error) {
	var cls classModel.ClassModel
	if err := s.DB.WithContext(ctx).First(&cls, "id = ?", classID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("class")
		}
		return nil, errors.Wrap(err, "load class")
	}
	if actorRole != constants.RoleAdmin && cls.SchoolID != actorID {
		return nil, apperror.Forbidden("class belongs to another school")
	}
	return &cls, nil
}

func (s *RosterService) loadMember(ctx context.Context, db *gorm.DB, id uuid.UUID, role constants.Role, schoolID uuid.UUID) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(string(role))
		}
		return nil, errors.Wrap(err, "load user")
	}
	if u.Role != role {
		return nil, apperror.Validation("user " + id.String() + " is not a " + string(role))
	}
	if u.SchoolID == nil || *u.SchoolID != schoolID {
		return nil, apperror.Forbidden("user belongs to another school")
	}
	return &u, nil
}

// SetHomeroom: teacherID nil = kosongkan. Guru hanya boleh jadi wali satu kelas aktif.
func (s *RosterService) SetHomeroom(ctx context.Context, cls *classModel.ClassModel, teacherID *uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if teacherID != nil {
			if _, err := s.loadMember(ctx, tx, *teacherID, constants.RoleTeacher, cls.SchoolID); err != nil {
				return err
			}
			var other int64
			if err := tx.Model(&classModel.ClassModel{}).
				Where("homeroom_teacher_id = ? AND is_active = ? AND id <> ?", *teacherID, true, cls.ID).
				Count(&other).Error; err != nil {
				return errors.Wrap(err, "check homeroom")
			}
			if other > 0 {
				return apperror.Conflict("teacher is already homeroom of another active class")
			}
		}
		if err := tx.Model(&classModel.ClassModel{}).
			Where("id = ?", cls.ID).
			Update("homeroom_teacher_id", teacherID).Error; err != nil {
			return errors.Wrap(err, "update homeroom")
		}
		cls.HomeroomTeacherID = teacherID
		return nil
	})
}

func (s *RosterService) AddTeacher(ctx context.Context, cls *classModel.ClassModel, teacherID uuid.UUID) error {
	if _, err := s.loadMember(ctx, s.DB, teacherID, constants.RoleTeacher, cls.SchoolID); err != nil {
		return err
	}
	row := classModel.ClassTeacherModel{ClassID: cls.ID, TeacherID: teacherID}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
}

func (s *RosterService) RemoveTeacher(ctx context.Context, cls *classModel.ClassModel, teacherID uuid.UUID) error {
	res := s.DB.WithContext(ctx).
		Where("class_id = ? AND teacher_id = ?", cls.ID, teacherID).
		Delete(&classModel.ClassTeacherModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "remove co-teacher")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("class teacher")
	}
	return nil
}

// AddStudents menulis class_ref bentuk ByID untuk setiap murid.
func (s *RosterService) AddStudents(ctx context.Context, cls *classModel.ClassModel, studentIDs []uuid.UUID) (int, error) {
	if len(studentIDs) == 0 {
		return 0, apperror.Validation("student_ids is required")
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range studentIDs {
			if _, err := s.loadMember(ctx, tx, id, constants.RoleStudent, cls.SchoolID); err != nil {
				return err
			}
		}
		return tx.Model(&userModel.UserModel{}).
			Where("id IN ?", studentIDs).
			Update("class_ref", StoredRef(cls.ID)).Error
	})
	if err != nil {
		return 0, err
	}
	return len(studentIDs), nil
}

// RemoveStudent: hanya mengosongkan bila ref murid memang menunjuk kelas ini.
func (s *RosterService) RemoveStudent(ctx context.Context, cls *classModel.ClassModel, studentID uuid.UUID) error {
	u, err := s.loadMember(ctx, s.DB, studentID, constants.RoleStudent, cls.SchoolID)
	if err != nil {
		return err
	}
	if !NewDirectory([]classModel.ClassModel{*cls}).MatchesRaw(u.ClassRef) {
		return apperror.NotFound("student in class")
	}
	return s.DB.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("id = ?", studentID).
		Update("class_ref", nil).Error
}

// Students: murid dengan ref id kelas ini, atau ref nama lama yang sama (dalam sekolah yang sama).
func (s *RosterService) Students(ctx context.Context, cls *classModel.ClassModel) ([]userModel.UserModel, error) {
	var rows []userModel.UserModel
	err := s.DB.WithContext(ctx).
		Where("role = ?", constants.RoleStudent).
		Where(
			s.DB.Where("class_ref = ?", cls.ID.String()).
				Or("school_id = ? AND class_ref = ?", cls.SchoolID, cls.Name),
		).
		Order("full_name ASC, username ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load roster")
	}
	return rows, nil
}

func (s *RosterService) CoTeachers(ctx context.Context, cls *classModel.ClassModel) ([]userModel.UserModel, error) {
	var rows []userModel.UserModel
	err := s.DB.WithContext(ctx).
		Where("id IN (?)", s.DB.Model(&classModel.ClassTeacherModel{}).Select("teacher_id").Where("class_id = ?", cls.ID)).
		Order("full_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load co-teachers")
	}
	return rows, nil
}
