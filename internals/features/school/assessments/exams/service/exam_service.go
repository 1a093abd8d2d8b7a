package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/exams/dto"
	examModel "lingoschool_backend/internals/features/school/assessments/exams/model"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
)

type ExamService struct {
	DB       *gorm.DB
	Resolver *classService.Resolver
	Time     *dbtime.Policy
}

func NewExamService(db *gorm.DB, resolver *classService.Resolver, policy *dbtime.Policy) *ExamService {
	return &ExamService{DB: db, Resolver: resolver, Time: policy}
}

// Create: guru membuat exam untuk kelas yang ia ampu (wali atau co-teacher).
func (s *ExamService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateExamRequest) (*examModel.ExamModel, error) {
	if p.Role != constants.RoleTeacher {
		return nil, apperror.Forbidden(constants.RoleErrorTeacher("exam authoring"))
	}
	dir, err := s.Resolver.TeachingDirectory(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !dir.Contains(req.ClassID) {
		return nil, apperror.NotAuthorizedForClass()
	}

	start, err := s.Time.ParseClientTime(req.StartTime)
	if err != nil {
		return nil, apperror.Validation("start_time: " + err.Error())
	}
	end, err := s.Time.ParseClientTime(req.EndTime)
	if err != nil {
		return nil, apperror.Validation("end_time: " + err.Error())
	}
	if !end.After(start) {
		return nil, apperror.Validation("end_time must be after start_time")
	}

	m := examModel.ExamModel{
		Title:       req.Title,
		ExamType:    constants.ExamType(req.ExamType),
		ClassID:     req.ClassID,
		TeacherID:   p.ID,
		StartTime:   start,
		EndTime:     end,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, errors.Wrap(err, "create exam")
	}
	log.Printf("[ExamService] exam %s (%s) for class %s by %s", m.ID, m.ExamType, m.ClassID, p.ID)
	return &m, nil
}

// List: teacher → miliknya; student → published untuk kelasnya; school → exam kelas miliknya.
func (s *ExamService) List(ctx context.Context, p helperAuth.Principal, classID *uuid.UUID) ([]examModel.ExamModel, error) {
	q := s.DB.WithContext(ctx).Model(&examModel.ExamModel{})
	switch p.Role {
	case constants.RoleAdmin:
	case constants.RoleSchool:
		q = q.Where("class_id IN (?)", s.DB.Model(&classModel.ClassModel{}).Select("id").Where("school_id = ?", p.ID))
	case constants.RoleTeacher:
		q = q.Where("teacher_id = ?", p.ID)
	case constants.RoleStudent:
		cls, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if apperror.HasCode(err, apperror.CodeStudentUnassigned) {
			return []examModel.ExamModel{}, nil
		}
		if err != nil {
			return nil, err
		}
		q = q.Where("class_id = ? AND is_published = ?", cls.ID, true)
	default:
		return nil, apperror.Forbidden("unknown role")
	}
	if classID != nil {
		q = q.Where("class_id = ?", *classID)
	}

	var rows []examModel.ExamModel
	if err := q.Order("start_time DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list exams")
	}
	return rows, nil
}

func (s *ExamService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*examModel.ExamModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch p.Role {
	case constants.RoleAdmin:
		return m, nil
	case constants.RoleSchool:
		var cls classModel.ClassModel
		if err := s.DB.WithContext(ctx).Select("id", "school_id").First(&cls, "id = ?", m.ClassID).Error; err != nil {
			return nil, errors.Wrap(err, "load exam class")
		}
		if cls.SchoolID == p.ID {
			return m, nil
		}
	case constants.RoleTeacher:
		if m.OwnedBy(p.ID) {
			return m, nil
		}
		ok, err := s.Resolver.IsTeacherOf(ctx, p.ID, m.ClassID)
		if err != nil {
			return nil, err
		}
		if ok {
			return m, nil
		}
	case constants.RoleStudent:
		cls, _, err := s.Resolver.StudentClassByID(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if cls.ID == m.ClassID && m.IsPublished {
			return m, nil
		}
	}
	return nil, apperror.NotFound("exam")
}

func (s *ExamService) load(ctx context.Context, id uuid.UUID) (*examModel.ExamModel, error) {
	var m examModel.ExamModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("exam")
		}
		return nil, errors.Wrap(err, "load exam")
	}
	return &m, nil
}

func (s *ExamService) loadOwned(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*examModel.ExamModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != constants.RoleAdmin && !m.OwnedBy(p.ID) {
		return nil, apperror.Forbidden("only the exam owner may modify this exam")
	}
	return m, nil
}

// Update: partial merge; window divalidasi ulang terhadap nilai gabungan.
func (s *ExamService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateExamRequest) (*examModel.ExamModel, error) {
	m, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	start, end := m.StartTime, m.EndTime
	if req.StartTime != nil {
		if start, err = s.Time.ParseClientTime(*req.StartTime); err != nil {
			return nil, apperror.Validation("start_time: " + err.Error())
		}
		patch["start_time"] = start
	}
	if req.EndTime != nil {
		if end, err = s.Time.ParseClientTime(*req.EndTime); err != nil {
			return nil, apperror.Validation("end_time: " + err.Error())
		}
		patch["end_time"] = end
	}
	if !end.After(start) {
		return nil, apperror.Validation("end_time must be after start_time")
	}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.ExamType != nil {
		patch["exam_type"] = constants.ExamType(*req.ExamType)
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			return nil, errors.Wrap(err, "update exam")
		}
	}
	return s.load(ctx, m.ID)
}

// Delete: soal exam ikut terhapus; submission tetap sebagai riwayat.
func (s *ExamService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadOwned(ctx, p, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", m.ID).Delete(&questionModel.QuestionModel{}).Error; err != nil {
			return errors.Wrap(err, "delete exam questions")
		}
		return errors.Wrap(tx.Delete(m).Error, "delete exam")
	})
}
