package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	authRepo "lingoschool_backend/internals/features/users/auth/repository"
	authService "lingoschool_backend/internals/features/users/auth/service"
	"lingoschool_backend/internals/features/users/user/dto"
	userModel "lingoschool_backend/internals/features/users/user/model"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

/* =========================================================
   User administration (admin: semua; school: guru & murid miliknya)
========================================================= */

type UserService struct {
	DB     *gorm.DB
	Roster *classService.RosterService
}

func NewUserService(db *gorm.DB, roster *classService.RosterService) *UserService {
	return &UserService{DB: db, Roster: roster}
}

type ListFilter struct {
	Role     *constants.Role
	SchoolID *uuid.UUID
	Search   string
}

// Create: sekolah hanya boleh membuat teacher/student dan school_id dipaksa ke dirinya.
func (s *UserService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateUserRequest) (*userModel.UserModel, error) {
	role, err := constants.ParseRole(req.Role)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	schoolID := req.SchoolID
	switch p.Role {
	case constants.RoleAdmin:
	case constants.RoleSchool:
		if role != constants.RoleTeacher && role != constants.RoleStudent {
			return nil, apperror.Forbidden("schools can only create teachers and students")
		}
		schoolID = &p.ID
	default:
		return nil, apperror.Forbidden(constants.RoleErrorSchool("user management"))
	}

	switch role {
	case constants.RoleTeacher, constants.RoleStudent:
		if schoolID == nil {
			return nil, apperror.Validation("school_id is required for " + string(role))
		}
		if err := s.ensureSchool(ctx, *schoolID); err != nil {
			return nil, err
		}
	default:
		schoolID = nil
	}
	if req.ClassID != nil && role != constants.RoleStudent {
		return nil, apperror.Validation("class_id is only valid for students")
	}

	db := s.DB.WithContext(ctx)
	if taken, err := authRepo.UsernameTaken(db, req.Username); err != nil {
		return nil, errors.Wrap(err, "check username")
	} else if taken {
		return nil, apperror.Conflict("username is already taken")
	}
	if req.Email != nil {
		if taken, err := authRepo.EmailTaken(db, *req.Email, nil); err != nil {
			return nil, errors.Wrap(err, "check email")
		} else if taken {
			return nil, apperror.Conflict("email is already registered")
		}
	}

	var classRef *string
	if req.ClassID != nil {
		cls, err := s.Roster.LoadOwned(ctx, *req.ClassID, *schoolID, constants.RoleSchool)
		if err != nil {
			return nil, err
		}
		classRef = classService.StoredRef(cls.ID)
	}

	hash, err := authService.HashPassword(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := userModel.UserModel{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         role,
		SchoolID:     schoolID,
		ClassRef:     classRef,
	}
	if err := authRepo.CreateUser(db, &u); err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, apperror.Conflict("username or email is already registered")
		}
		return nil, errors.Wrap(err, "create user")
	}
	log.Printf("[UserService] %s %s created %s %s (%s)", p.Role, p.ID, u.Role, u.Username, u.ID)
	return &u, nil
}

func (s *UserService) ensureSchool(ctx context.Context, id uuid.UUID) error {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("id = ? AND role = ?", id, constants.RoleSchool).Count(&n).Error; err != nil {
		return errors.Wrap(err, "check school")
	}
	if n == 0 {
		return apperror.Validation("school_id does not reference a school account")
	}
	return nil
}

func (s *UserService) List(ctx context.Context, p helperAuth.Principal, f ListFilter, paging helper.Paging) ([]userModel.UserModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&userModel.UserModel{})
	switch p.Role {
	case constants.RoleAdmin:
		if f.SchoolID != nil {
			q = q.Where("school_id = ?", *f.SchoolID)
		}
	case constants.RoleSchool:
		q = q.Where("school_id = ?", p.ID)
	default:
		return nil, 0, apperror.Forbidden(constants.RoleErrorSchool("user management"))
	}
	if f.Role != nil {
		q = q.Where("role = ?", *f.Role)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	var rows []userModel.UserModel
	if err := q.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return rows, total, nil
}

// loadManaged: admin → siapa saja; school → hanya user dengan school_id dirinya.
func (s *UserService) loadManaged(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*userModel.UserModel, error) {
	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user")
		}
		return nil, errors.Wrap(err, "load user")
	}
	switch p.Role {
	case constants.RoleAdmin:
		return &u, nil
	case constants.RoleSchool:
		if u.SchoolID != nil && *u.SchoolID == p.ID {
			return &u, nil
		}
		return nil, apperror.Forbidden("user belongs to another school")
	default:
		return nil, apperror.Forbidden(constants.RoleErrorSchool("user management"))
	}
}

func (s *UserService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*userModel.UserModel, error) {
	return s.loadManaged(ctx, p, id)
}

// Update: allow-list; school_id hanya admin dan hanya untuk teacher/student.
func (s *UserService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateUserRequest) (*userModel.UserModel, error) {
	u, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	patch := map[string]any{}
	if req.FullName != nil {
		patch["full_name"] = *req.FullName
	}
	if req.Email != nil {
		taken, err := authRepo.EmailTaken(db, *req.Email, &u.ID)
		if err != nil {
			return nil, errors.Wrap(err, "check email")
		}
		if taken {
			return nil, apperror.Conflict("email is already registered")
		}
		patch["email"] = *req.Email
	}
	if req.TwoFactorEnabled != nil {
		hasEmail := (u.Email != nil && *u.Email != "") || req.Email != nil
		if *req.TwoFactorEnabled && !hasEmail {
			return nil, apperror.Validation("an email address is required for two-factor")
		}
		patch["two_factor_enabled"] = *req.TwoFactorEnabled
	}
	if req.SchoolID != nil {
		if p.Role != constants.RoleAdmin {
			return nil, apperror.Forbidden("only admin may move users between schools")
		}
		if u.Role != constants.RoleTeacher && u.Role != constants.RoleStudent {
			return nil, apperror.Validation("only teachers and students belong to a school")
		}
		if err := s.ensureSchool(ctx, *req.SchoolID); err != nil {
			return nil, err
		}
		patch["school_id"] = *req.SchoolID
		if u.SchoolID == nil || *u.SchoolID != *req.SchoolID {
			// kelas lama milik sekolah lain
			patch["class_ref"] = nil
		}
	}

	if len(patch) > 0 {
		if err := db.Model(u).Updates(patch).Error; err != nil {
			return nil, errors.Wrap(err, "update user")
		}
	}
	var out userModel.UserModel
	if err := db.First(&out, "id = ?", u.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload user")
	}
	return &out, nil
}

func (s *UserService) SetDisabled(ctx context.Context, p helperAuth.Principal, id uuid.UUID, disabled bool) (*userModel.UserModel, error) {
	if id == p.ID {
		return nil, apperror.Validation("you cannot change your own account status")
	}
	u, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(u).Update("is_disabled", disabled).Error; err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	log.Printf("[UserService] user %s disabled=%v by %s", u.ID, disabled, p.ID)
	u.IsDisabled = disabled
	return u, nil
}

// ResetPassword: admin/sekolah mengganti password user; OTP yang tertunda ikut dibuang.
func (s *UserService) ResetPassword(ctx context.Context, p helperAuth.Principal, id uuid.UUID, newPassword string) error {
	u, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return err
	}
	hash, err := authService.HashPassword(newPassword)
	if err != nil {
		return errors.Wrap(err, "hash password")
	}
	if err := authRepo.ClearOTP(s.DB.WithContext(ctx), u.ID, map[string]any{"password_hash": hash}); err != nil {
		return errors.Wrap(err, "reset password")
	}
	log.Printf("[UserService] password of %s reset by %s", u.ID, p.ID)
	return nil
}

// Delete:
//   - school: ditolak selama masih punya kelas atau anggota
//   - teacher: ditolak kalau masih punya exam; wali & co-teacher dilepas
//   - student: submissions tetap disimpan
func (s *UserService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	if id == p.ID {
		return apperror.Validation("you cannot delete your own account")
	}
	u, err := s.loadManaged(ctx, p, id)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch u.Role {
		case constants.RoleSchool:
			var classes, members int64
			if err := tx.Model(&classModel.ClassModel{}).Where("school_id = ?", u.ID).Count(&classes).Error; err != nil {
				return errors.Wrap(err, "count classes")
			}
			if err := tx.Model(&userModel.UserModel{}).Where("school_id = ?", u.ID).Count(&members).Error; err != nil {
				return errors.Wrap(err, "count members")
			}
			if classes > 0 || members > 0 {
				return apperror.Conflict("school still has classes or members")
			}
		case constants.RoleTeacher:
			var exams int64
			if err := tx.Model(&examModel.ExamModel{}).Where("teacher_id = ?", u.ID).Count(&exams).Error; err != nil {
				return errors.Wrap(err, "count exams")
			}
			if exams > 0 {
				return apperror.Conflict("teacher still owns exams")
			}
			if err := tx.Model(&classModel.ClassModel{}).Where("homeroom_teacher_id = ?", u.ID).
				Update("homeroom_teacher_id", nil).Error; err != nil {
				return errors.Wrap(err, "release homeroom")
			}
			if err := tx.Where("teacher_id = ?", u.ID).Delete(&classModel.ClassTeacherModel{}).Error; err != nil {
				return errors.Wrap(err, "remove co-teacher")
			}
		}
		if err := tx.Delete(&userModel.UserModel{}, "id = ?", u.ID).Error; err != nil {
			return errors.Wrap(err, "delete user")
		}
		log.Printf("[UserService] %s %s deleted by %s", u.Role, u.ID, p.ID)
		return nil
	})
}

/* ===================== Teachers ===================== */

// ListTeachers: guru milik sekolah + kelas wali (kalau ada).
func (s *UserService) ListTeachers(ctx context.Context, p helperAuth.Principal, schoolID *uuid.UUID) ([]dto.TeacherResponse, error) {
	q := s.DB.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("role = ?", constants.RoleTeacher)
	switch p.Role {
	case constants.RoleAdmin:
		if schoolID != nil {
			q = q.Where("school_id = ?", *schoolID)
		}
	case constants.RoleSchool:
		q = q.Where("school_id = ?", p.ID)
	default:
		return nil, apperror.Forbidden(constants.RoleErrorSchool("teacher directory"))
	}

	var teachers []userModel.UserModel
	if err := q.Order("full_name ASC, username ASC").Find(&teachers).Error; err != nil {
		return nil, errors.Wrap(err, "list teachers")
	}
	if len(teachers) == 0 {
		return []dto.TeacherResponse{}, nil
	}

	ids := make([]uuid.UUID, 0, len(teachers))
	for _, t := range teachers {
		ids = append(ids, t.ID)
	}
	var homerooms []classModel.ClassModel
	if err := s.DB.WithContext(ctx).
		Where("homeroom_teacher_id IN ? AND is_active = ?", ids, true).
		Find(&homerooms).Error; err != nil {
		return nil, errors.Wrap(err, "load homerooms")
	}
	byTeacher := make(map[uuid.UUID]classModel.ClassModel, len(homerooms))
	for _, c := range homerooms {
		byTeacher[*c.HomeroomTeacherID] = c
	}

	out := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		row := dto.TeacherResponse{UserResponse: dto.ToUserResponse(&teachers[i])}
		if c, ok := byTeacher[teachers[i].ID]; ok {
			id, name := c.ID, c.Name
			row.HomeroomClassID, row.HomeroomClassName = &id, &name
		}
		out = append(out, row)
	}
	return out, nil
}
