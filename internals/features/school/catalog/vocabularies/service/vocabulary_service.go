package service

import (
	"context"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	"lingoschool_backend/internals/features/school/catalog/vocabularies/dto"
	vocabularyModel "lingoschool_backend/internals/features/school/catalog/vocabularies/model"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type VocabularyService struct {
	DB      *gorm.DB
	Lessons *lessonService.LessonService
	Store   storage.BlobStore
}

func NewVocabularyService(db *gorm.DB, lessons *lessonService.LessonService, store storage.BlobStore) *VocabularyService {
	return &VocabularyService{DB: db, Lessons: lessons, Store: store}
}

func (s *VocabularyService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateVocabularyRequest, image *multipart.FileHeader) (*vocabularyModel.VocabularyModel, error) {
	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		return nil, apperror.Validation("lesson_id is not a valid id")
	}
	lesson, err := s.Lessons.ForAuthor(ctx, p, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson.LessonType != constants.SkillVocabulary {
		return nil, apperror.Validation("vocabulary can only be added to a vocabulary lesson")
	}

	order, err := helper.ResolveOrder(ctx, s.DB, req.Order, "vocabularies", "lesson_id", lesson.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve vocabulary order")
	}
	m := vocabularyModel.VocabularyModel{
		LessonID:      lesson.ID,
		Word:          req.Word,
		Meaning:       req.Meaning,
		Pronunciation: req.Pronunciation,
		PartOfSpeech:  req.PartOfSpeech,
		Example:       req.Example,
		Synonyms:      datatypes.JSONSlice[string](req.Synonyms),
		AudioURL:      req.AudioURL,
		Order:         order,
		IsPublished:   req.IsPublished == nil || *req.IsPublished,
	}
	if image != nil {
		url, err := s.Store.Upload(ctx, constants.FolderVocabularies, image)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		m.ImageURL = &url
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		storage.Cleanup(ctx, s.Store, m.ImageURL)
		return nil, errors.Wrap(err, "create vocabulary")
	}
	log.Printf("[VocabularyService] %q added to lesson %s (order=%d)", m.Word, lesson.ID, m.Order)
	return &m, nil
}

// ListByLesson: akses mengikuti lesson; teacher/student hanya melihat yang published.
func (s *VocabularyService) ListByLesson(ctx context.Context, p helperAuth.Principal, lessonID uuid.UUID) ([]vocabularyModel.VocabularyModel, error) {
	_, view, err := s.Lessons.Readable(ctx, p, lessonID)
	if err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("lesson_id = ?", lessonID)
	if view.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var rows []vocabularyModel.VocabularyModel
	if err := helper.OrderByPosition(q).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list vocabularies")
	}
	return rows, nil
}

func (s *VocabularyService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*vocabularyModel.VocabularyModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, view, err := s.Lessons.Readable(ctx, p, m.LessonID)
	if err != nil {
		return nil, err
	}
	if view.PublishedOnly && !m.IsPublished {
		return nil, apperror.NotFound("vocabulary")
	}
	return m, nil
}

func (s *VocabularyService) load(ctx context.Context, id uuid.UUID) (*vocabularyModel.VocabularyModel, error) {
	var m vocabularyModel.VocabularyModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("vocabulary")
		}
		return nil, errors.Wrap(err, "load vocabulary")
	}
	return &m, nil
}

func (s *VocabularyService) loadForAuthor(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*vocabularyModel.VocabularyModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Lessons.ForAuthor(ctx, p, m.LessonID); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *VocabularyService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateVocabularyRequest, image *multipart.FileHeader) (*vocabularyModel.VocabularyModel, error) {
	m, err := s.loadForAuthor(ctx, p, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Word != nil {
		patch["word"] = *req.Word
	}
	if req.Meaning != nil {
		patch["meaning"] = *req.Meaning
	}
	if req.Pronunciation != nil {
		patch["pronunciation"] = *req.Pronunciation
	}
	if req.PartOfSpeech != nil {
		patch["part_of_speech"] = *req.PartOfSpeech
	}
	if req.Example != nil {
		patch["example"] = *req.Example
	}
	if req.Synonyms != nil {
		patch["synonyms"] = datatypes.JSONSlice[string](req.Synonyms)
	}
	if req.AudioURL != nil {
		patch["audio_url"] = *req.AudioURL
	}
	if req.Order != nil {
		patch["order_index"] = *req.Order
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}

	var stale *string
	if image != nil {
		url, err := s.Store.Upload(ctx, constants.FolderVocabularies, image)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		patch["image_url"] = url
		stale = m.ImageURL
	} else if req.RemoveImage && m.ImageURL != nil {
		patch["image_url"] = nil
		stale = m.ImageURL
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			if u, ok := patch["image_url"].(string); ok {
				storage.Cleanup(ctx, s.Store, &u)
			}
			return nil, errors.Wrap(err, "update vocabulary")
		}
		storage.Cleanup(ctx, s.Store, stale)
	}
	return s.load(ctx, m.ID)
}

func (s *VocabularyService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadForAuthor(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(m).Error; err != nil {
		return errors.Wrap(err, "delete vocabulary")
	}
	storage.Cleanup(ctx, s.Store, m.ImageURL)
	return nil
}
