package service

import (
	"context"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	lessonModel "lingoschool_backend/internals/features/school/catalog/lessons/model"
	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	"lingoschool_backend/internals/features/school/catalog/units/dto"
	unitModel "lingoschool_backend/internals/features/school/catalog/units/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type UnitService struct {
	DB       *gorm.DB
	Resolver *classService.Resolver
	Lessons  *lessonService.LessonService
	Store    storage.BlobStore
}

func NewUnitService(db *gorm.DB, resolver *classService.Resolver, lessons *lessonService.LessonService, store storage.BlobStore) *UnitService {
	return &UnitService{DB: db, Resolver: resolver, Lessons: lessons, Store: store}
}

// Create: sekolah menulis untuk dirinya; admin wajib menyebut school_id.
func (s *UnitService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateUnitRequest, thumbnail *multipart.FileHeader) (*unitModel.UnitModel, error) {
	schoolID := p.ID
	switch p.Role {
	case constants.RoleSchool:
	case constants.RoleAdmin:
		id, err := uuid.Parse(req.SchoolID)
		if err != nil {
			return nil, apperror.Validation("school_id is required for admin")
		}
		schoolID = id
	default:
		return nil, apperror.Forbidden(constants.RoleErrorSchool("units"))
	}

	order, err := helper.ResolveOrder(ctx, s.DB, req.Order, "units", "school_id", schoolID)
	if err != nil {
		return nil, errors.Wrap(err, "resolve unit order")
	}
	slug, err := s.uniqueSlug(ctx, schoolID, req.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	m := unitModel.UnitModel{
		SchoolID:    schoolID,
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Order:       order,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	}
	if thumbnail != nil {
		url, err := s.Store.Upload(ctx, constants.FolderUnits, thumbnail)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		m.ThumbnailURL = &url
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		storage.Cleanup(ctx, s.Store, m.ThumbnailURL)
		return nil, errors.Wrap(err, "create unit")
	}
	log.Printf("[UnitService] unit %s created for school %s (order=%d)", m.ID, schoolID, m.Order)
	return &m, nil
}

func (s *UnitService) uniqueSlug(ctx context.Context, schoolID uuid.UUID, title string, exclude uuid.UUID) (string, error) {
	slug, err := helper.EnsureUniqueSlug(ctx, s.DB, "units", "slug", helper.Slugify(title, 150),
		func(q *gorm.DB) *gorm.DB {
			q = q.Where("school_id = ?", schoolID)
			if exclude != uuid.Nil {
				q = q.Where("id <> ?", exclude)
			}
			return q
		})
	if err != nil {
		return "", errors.Wrap(err, "unit slug")
	}
	return slug, nil
}

// List: school → miliknya (termasuk draft); teacher/student → published di sekolahnya.
func (s *UnitService) List(ctx context.Context, p helperAuth.Principal, paging helper.Paging) ([]unitModel.UnitModel, int64, error) {
	view, err := s.Resolver.CatalogViewFor(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	q := view.Apply(s.DB.WithContext(ctx).Model(&unitModel.UnitModel{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count units")
	}
	var rows []unitModel.UnitModel
	if err := helper.OrderByPosition(q).Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list units")
	}
	return rows, total, nil
}

// Get: unit + lesson yang terlihat oleh principal.
func (s *UnitService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*unitModel.UnitModel, []lessonService.LessonView, error) {
	view, err := s.Resolver.CatalogViewFor(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	var m unitModel.UnitModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("unit")
		}
		return nil, nil, errors.Wrap(err, "load unit")
	}
	if !view.CanSee(m.SchoolID, m.IsPublished) {
		return nil, nil, apperror.NotFound("unit")
	}
	lessons, err := s.Lessons.Visible(ctx, view, &m.ID)
	if err != nil {
		return nil, nil, err
	}
	return &m, lessons, nil
}

func (s *UnitService) loadForAuthor(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*unitModel.UnitModel, error) {
	var m unitModel.UnitModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("unit")
		}
		return nil, errors.Wrap(err, "load unit")
	}
	if !classService.CanAuthor(p, m.SchoolID) {
		return nil, apperror.Forbidden("only the owning school may modify this unit")
	}
	return &m, nil
}

func (s *UnitService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateUnitRequest, thumbnail *multipart.FileHeader) (*unitModel.UnitModel, error) {
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
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Order != nil {
		patch["order_index"] = *req.Order
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}

	var stale *string
	if thumbnail != nil {
		url, err := s.Store.Upload(ctx, constants.FolderUnits, thumbnail)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		patch["thumbnail_url"] = url
		stale = m.ThumbnailURL
	} else if req.RemoveThumbnail && m.ThumbnailURL != nil {
		patch["thumbnail_url"] = nil
		stale = m.ThumbnailURL
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			if u, ok := patch["thumbnail_url"].(string); ok {
				storage.Cleanup(ctx, s.Store, &u)
			}
			return nil, errors.Wrap(err, "update unit")
		}
		storage.Cleanup(ctx, s.Store, stale)
	}

	var out unitModel.UnitModel
	if err := s.DB.WithContext(ctx).First(&out, "id = ?", m.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload unit")
	}
	return &out, nil
}

// Delete: unit yang masih punya lesson ditolak.
func (s *UnitService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadForAuthor(ctx, p, id)
	if err != nil {
		return err
	}
	var lessons int64
	if err := s.DB.WithContext(ctx).Model(&lessonModel.LessonModel{}).Where("unit_id = ?", m.ID).Count(&lessons).Error; err != nil {
		return errors.Wrap(err, "count unit lessons")
	}
	if lessons > 0 {
		return apperror.Conflict("unit still has lessons")
	}
	if err := s.DB.WithContext(ctx).Delete(m).Error; err != nil {
		return errors.Wrap(err, "delete unit")
	}
	storage.Cleanup(ctx, s.Store, m.ThumbnailURL)
	log.Printf("[UnitService] unit %s deleted by %s", m.ID, p.ID)
	return nil
}
