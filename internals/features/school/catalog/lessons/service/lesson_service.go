package service

import (
	"context"
	"log"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	assignmentModel "lingoschool_backend/internals/features/school/assessments/assignments/model"
	assignmentService "lingoschool_backend/internals/features/school/assessments/assignments/service"
	questionModel "lingoschool_backend/internals/features/school/assessments/questions/model"
	grammarModel "lingoschool_backend/internals/features/school/catalog/grammars/model"
	"lingoschool_backend/internals/features/school/catalog/lessons/dto"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	unitModel "lingoschool_backend/internals/features/school/catalog/units/model"
	vocabularyModel "lingoschool_backend/internals/features/school/catalog/vocabularies/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
	"lingoschool_backend/internals/helpers/storage"
)

type LessonService struct {
	DB          *gorm.DB
	Resolver    *classService.Resolver
	Assignments *assignmentService.AssignmentService
	Store       storage.BlobStore
	Time        *dbtime.Policy
}

func NewLessonService(
	db *gorm.DB,
	resolver *classService.Resolver,
	assignments *assignmentService.AssignmentService,
	store storage.BlobStore,
	policy *dbtime.Policy,
) *LessonService {
	return &LessonService{DB: db, Resolver: resolver, Assignments: assignments, Store: store, Time: policy}
}

// LessonView: lesson + deadline efektif untuk principal yang membaca.
type LessonView struct {
	Lesson   lessonModel.LessonModel
	Deadline *time.Time
}

func (v LessonView) Response() dto.LessonResponse {
	return dto.ToLessonResponse(v.Lesson, v.Deadline)
}

func Responses(rows []LessonView) []dto.LessonResponse {
	out := make([]dto.LessonResponse, 0, len(rows))
	for _, v := range rows {
		out = append(out, v.Response())
	}
	return out
}

/* =========================================================
   CREATE
========================================================= */

func (s *LessonService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateLessonRequest, video *multipart.FileHeader) (*lessonModel.LessonModel, error) {
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		return nil, apperror.Validation("unit_id is not a valid id")
	}
	var unit unitModel.UnitModel
	if err := s.DB.WithContext(ctx).First(&unit, "id = ?", unitID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("unit")
		}
		return nil, errors.Wrap(err, "load unit")
	}
	if !classService.CanAuthor(p, unit.SchoolID) {
		return nil, apperror.Forbidden("only the owning school may add lessons")
	}

	deadline, err := s.Time.ParseClientTimePtr(req.Deadline)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}
	order, err := helper.ResolveOrder(ctx, s.DB, req.Order, "lessons", "unit_id", unit.ID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve lesson order")
	}
	slug, err := s.uniqueSlug(ctx, unit.SchoolID, req.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	m := lessonModel.LessonModel{
		UnitID:      unit.ID,
		SchoolID:    unit.SchoolID,
		Title:       req.Title,
		Slug:        slug,
		LessonType:  constants.Skill(req.LessonType),
		Content:     req.Content,
		Order:       order,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
		Deadline:    deadline,
	}
	if video != nil {
		url, err := s.Store.Upload(ctx, constants.FolderVideos, video)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		m.VideoURL = &url
	}

	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		storage.Cleanup(ctx, s.Store, m.VideoURL)
		return nil, errors.Wrap(err, "create lesson")
	}
	log.Printf("[LessonService] lesson %s created in unit %s (order=%d)", m.ID, unit.ID, m.Order)
	return &m, nil
}

func (s *LessonService) uniqueSlug(ctx context.Context, schoolID uuid.UUID, title string, exclude uuid.UUID) (string, error) {
	slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "lessons", "slug", helper.Slugify(title, 150),
		func(q *gorm.DB) *gorm.DB {
			q = q.Where("school_id = ?", schoolID)
			if exclude != uuid.Nil {
				q = q.Where("id <> ?", exclude)
			}
			return q
		})
	if err != nil {
		return "", errors.Wrap(err, "lesson slug")
	}
	return slug, nil
}

/* =========================================================
   READ
========================================================= */

// List: lesson yang terlihat; murid tidak melihat lesson yang assignment kelasnya belum dipublish.
func (s *LessonService) List(ctx context.Context, p helperAuth.Principal, unitID *uuid.UUID) ([]LessonView, error) {
	view, err := s.Resolver.CatalogViewFor(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.Visible(ctx, view, unitID)
}

// Visible dipakai juga oleh detail unit.
func (s *LessonService) Visible(ctx context.Context, view classService.CatalogView, unitID *uuid.UUID) ([]LessonView, error) {
	q := view.Apply(s.DB.WithContext(ctx).Model(&lessonModel.LessonModel{}))
	if unitID != nil {
		q = q.Where("unit_id = ?", *unitID)
	}

	var overrides map[uuid.UUID]assignmentModel.AssignmentModel
	if view.Class != nil {
		q = q.Where("id NOT IN (?)", s.DB.Model(&assignmentModel.AssignmentModel{}).
			Select("lesson_id").
			Where("class_id = ? AND is_published = ?", view.Class.ID, false))

		var rows []assignmentModel.AssignmentModel
		if err := s.DB.WithContext(ctx).Where("class_id = ?", view.Class.ID).Find(&rows).Error; err != nil {
			return nil, errors.Wrap(err, "load class assignments")
		}
		overrides = make(map[uuid.UUID]assignmentModel.AssignmentModel, len(rows))
		for _, a := range rows {
			overrides[a.LessonID] = a
		}
	}

	var rows []lessonModel.LessonModel
	if err := helper.OrderByPosition(q).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list lessons")
	}

	out := make([]LessonView, 0, len(rows))
	for i := range rows {
		var a *assignmentModel.AssignmentModel
		if ov, ok := overrides[rows[i].ID]; ok {
			a = &ov
		}
		out = append(out, LessonView{
			Lesson:   rows[i],
			Deadline: s.Time.InSchoolPtr(assignmentService.EffectiveDeadline(&rows[i], a)),
		})
	}
	return out, nil
}

func (s *LessonService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*LessonView, error) {
	lv, _, err := s.Readable(ctx, p, id)
	return lv, err
}

// Readable: lesson + view principal; dipakai vocab/grammar untuk cek akses parent.
func (s *LessonService) Readable(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*LessonView, classService.CatalogView, error) {
	view, err := s.Resolver.CatalogViewFor(ctx, p)
	if err != nil {
		return nil, view, err
	}
	var m lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, view, apperror.NotFound("lesson")
		}
		return nil, view, errors.Wrap(err, "load lesson")
	}
	if !view.CanSee(m.SchoolID, m.IsPublished) {
		return nil, view, apperror.NotFound("lesson")
	}

	deadline := m.Deadline
	if view.Class != nil {
		a, err := s.Assignments.Find(ctx, view.Class.ID, m.ID)
		if err != nil {
			return nil, view, err
		}
		if a != nil && !a.IsPublished {
			return nil, view, apperror.NotFound("lesson")
		}
		deadline = assignmentService.EffectiveDeadline(&m, a)
	}
	return &LessonView{Lesson: m, Deadline: s.Time.InSchoolPtr(deadline)}, view, nil
}

// ForAuthor: lesson yang boleh diubah principal (sekolah pemilik / admin).
func (s *LessonService) ForAuthor(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*lessonModel.LessonModel, error) {
	return s.loadForAuthor(ctx, p, id)
}

/* =========================================================
   UPDATE / DELETE
========================================================= */

func (s *LessonService) loadForAuthor(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*lessonModel.LessonModel, error) {
	var m lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("lesson")
		}
		return nil, errors.Wrap(err, "load lesson")
	}
	if !classService.CanAuthor(p, m.SchoolID) {
		return nil, apperror.Forbidden("only the owning school may modify this lesson")
	}
	return &m, nil
}

// Update: partial merge atas allow-list; video baru menggantikan yang lama.
func (s *LessonService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateLessonRequest, video *multipart.FileHeader) (*lessonModel.LessonModel, error) {
	m, err := s.loadForAuthor(ctx, p, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Title != nil {
		slug, err := s.uniqueSlug(ctx, m.SchoolID, *req.Title, m.ID)
		if err != nil {
			return nil, err
		}
		patch["title"] = *req.Title
		patch["slug"] = slug
	}
	if req.LessonType != nil && constants.Skill(*req.LessonType) != m.LessonType {
		if err := s.ensureNoTypedContent(ctx, m.ID); err != nil {
			return nil, err
		}
		patch["lesson_type"] = constants.Skill(*req.LessonType)
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}
	if req.ClearDeadline {
		patch["deadline"] = nil
	} else if req.Deadline != nil {
		d, err := s.Time.ParseClientTimePtr(req.Deadline)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		patch["deadline"] = d
	}
	if req.Order != nil {
		patch["order_index"] = *req.Order
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}

	var stale *string
	if video != nil {
		url, err := s.Store.Upload(ctx, constants.FolderVideos, video)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		patch["video_url"] = url
		stale = m.VideoURL
	} else if req.RemoveVideo && m.VideoURL != nil {
		patch["video_url"] = nil
		stale = m.VideoURL
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			if u, ok := patch["video_url"].(string); ok {
				storage.Cleanup(ctx, s.Store, &u)
			}
			return nil, errors.Wrap(err, "update lesson")
		}
		storage.Cleanup(ctx, s.Store, stale)
	}

	var out lessonModel.LessonModel
	if err := s.DB.WithContext(ctx).First(&out, "id = ?", m.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload lesson")
	}
	return &out, nil
}

// ensureNoTypedContent: tipe lesson tidak boleh diganti selama masih punya vocab/grammar.
func (s *LessonService) ensureNoTypedContent(ctx context.Context, lessonID uuid.UUID) error {
	var vocab, grammar int64
	if err := s.DB.WithContext(ctx).Model(&vocabularyModel.VocabularyModel{}).Where("lesson_id = ?", lessonID).Count(&vocab).Error; err != nil {
		return errors.Wrap(err, "count vocabularies")
	}
	if err := s.DB.WithContext(ctx).Model(&grammarModel.GrammarModel{}).Where("lesson_id = ?", lessonID).Count(&grammar).Error; err != nil {
		return errors.Wrap(err, "count grammars")
	}
	if vocab+grammar > 0 {
		return apperror.Conflict("lesson still has vocabulary or grammar content; remove it before changing the type")
	}
	return nil
}

// Delete: konten turunan (vocab, grammar, soal, assignment) ikut terhapus.
// Submission tetap disimpan sebagai riwayat.
func (s *LessonService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadForAuthor(ctx, p, id)
	if err != nil {
		return err
	}

	var images []*string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vocab []vocabularyModel.VocabularyModel
		if err := tx.Select("id", "image_url").Where("lesson_id = ?", m.ID).Find(&vocab).Error; err != nil {
			return errors.Wrap(err, "load vocabularies")
		}
		for _, v := range vocab {
			images = append(images, v.ImageURL)
		}
		for _, child := range []any{
			&vocabularyModel.VocabularyModel{},
			&grammarModel.GrammarModel{},
			&questionModel.QuestionModel{},
			&assignmentModel.AssignmentModel{},
		} {
			if err := tx.Where("lesson_id = ?", m.ID).Delete(child).Error; err != nil {
				return errors.Wrap(err, "delete lesson content")
			}
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return err
	}

	storage.Cleanup(ctx, s.Store, append(images, m.VideoURL)...)
	log.Printf("[LessonService] lesson %s deleted by %s", m.ID, p.ID)
	return nil
}
