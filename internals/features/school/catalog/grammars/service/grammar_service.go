package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/catalog/grammars/dto"
	grammarModel "lingoschool_backend/internals/features/school/catalog/grammars/model"
	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type GrammarService struct {
	DB      *gorm.DB
	Lessons *lessonService.LessonService
}

func NewGrammarService(db *gorm.DB, lessons *lessonService.LessonService) *GrammarService {
	return &GrammarService{DB: db, Lessons: lessons}
}

func (s *GrammarService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateGrammarRequest) (*grammarModel.GrammarModel, error) {
	lesson, err := s.Lessons.ForAuthor(ctx, p, req.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson.LessonType != constants.SkillGrammar {
		return nil, apperror.Validation("grammar can only be added to a grammar lesson")
	}
	order, err := helper.ResolveOrder(ctx, s.DB, req.Order, "grammars", "lesson_id", lesson.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve grammar order")
	}
	m := grammarModel.GrammarModel{
		LessonID:    lesson.ID,
		Title:       req.Title,
		Structure:   req.Structure,
		Explanation: req.Explanation,
		Examples:    datatypes.JSONSlice[string](req.Examples),
		Order:       order,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, errors.Wrap(err, "create grammar")
	}
	return &m, nil
}

func (s *GrammarService) ListByLesson(ctx context.Context, p helperAuth.Principal, lessonID uuid.UUID) ([]grammarModel.GrammarModel, error) {
	_, view, err := s.Lessons.Readable(ctx, p, lessonID)
	if err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("lesson_id = ?", lessonID)
	if view.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var rows []grammarModel.GrammarModel
	if err := helper.OrderByPosition(q).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list grammars")
	}
	return rows, nil
}

func (s *GrammarService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*grammarModel.GrammarModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, view, err := s.Lessons.Readable(ctx, p, m.LessonID)
	if err != nil {
		return nil, err
	}
	if view.PublishedOnly && !m.IsPublished {
		return nil, apperror.NotFound("grammar")
	}
	return m, nil
}

func (s *GrammarService) load(ctx context.Context, id uuid.UUID) (*grammarModel.GrammarModel, error) {
	var m grammarModel.GrammarModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("grammar")
		}
		return nil, errors.Wrap(err, "load grammar")
	}
	return &m, nil
}

func (s *GrammarService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateGrammarRequest) (*grammarModel.GrammarModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Lessons.ForAuthor(ctx, p, m.LessonID); err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Structure != nil {
		patch["structure"] = *req.Structure
	}
	if req.Explanation != nil {
		patch["explanation"] = *req.Explanation
	}
	if req.Examples != nil {
		patch["examples"] = datatypes.JSONSlice[string](req.Examples)
	}
	if req.Order != nil {
		patch["order_index"] = *req.Order
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}
	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			return nil, errors.Wrap(err, "update grammar")
		}
	}
	return s.load(ctx, m.ID)
}

func (s *GrammarService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.Lessons.ForAuthor(ctx, p, m.LessonID); err != nil {
		return err
	}
	return errors.Wrap(s.DB.WithContext(ctx).Delete(m).Error, "delete grammar")
}
