package service

import (
	"context"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/announcements/dto"
	announcementModel "lingoschool_backend/internals/features/school/announcements/model"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	classService "lingoschool_backend/internals/features/school/classes/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type AnnouncementService struct {
	DB       *gorm.DB
	Resolver *classService.Resolver
	Store    storage.BlobStore
}

func NewAnnouncementService(db *gorm.DB, resolver *classService.Resolver, store storage.BlobStore) *AnnouncementService {
	return &AnnouncementService{DB: db, Resolver: resolver, Store: store}
}

type ListFilter struct {
	ClassID *uuid.UUID
	// Mine: hanya tulisan principal sendiri (termasuk draft)
	Mine bool
}

/* ===================== CREATE ===================== */

// Create: sekolah → seluruh sekolah atau satu kelas miliknya; wali kelas → kelasnya sendiri.
func (s *AnnouncementService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateAnnouncementRequest, attachment *multipart.FileHeader) (*announcementModel.AnnouncementModel, error) {
	var classID *uuid.UUID
	if req.ClassID != "" {
		id, err := uuid.Parse(req.ClassID)
		if err != nil {
			return nil, apperror.Validation("class_id is not a valid id")
		}
		classID = &id
	}

	m := announcementModel.AnnouncementModel{
		AuthorID:    p.ID,
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	}

	switch p.Role {
	case constants.RoleSchool, constants.RoleAdmin:
		schoolID := p.ID
		if p.Role == constants.RoleAdmin {
			id, err := uuid.Parse(req.SchoolID)
			if err != nil {
				return nil, apperror.Validation("school_id is required")
			}
			schoolID = id
		}
		if classID != nil {
			var cls classModel.ClassModel
			if err := s.DB.WithContext(ctx).First(&cls, "id = ?", *classID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperror.NotFound("class")
				}
				return nil, errors.Wrap(err, "load class")
			}
			if cls.SchoolID != schoolID {
				return nil, apperror.Forbidden("class belongs to another school")
			}
		}
		m.SchoolID = schoolID
		m.ClassID = classID
	case constants.RoleTeacher:
		home, err := s.Resolver.HomeroomClass(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if classID != nil && *classID != home.ID {
			return nil, apperror.NotAuthorizedForClass()
		}
		m.SchoolID = home.SchoolID
		m.ClassID = &home.ID
	default:
		return nil, apperror.Forbidden(constants.RoleErrorStaff("announcements"))
	}

	if attachment != nil {
		url, err := s.Store.Upload(ctx, constants.FolderAnnouncement, attachment)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		m.AttachmentURL = &url
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		storage.Cleanup(ctx, s.Store, m.AttachmentURL)
		return nil, errors.Wrap(err, "create announcement")
	}
	log.Printf("[AnnouncementService] %s by %s (%s) school=%s class=%v", m.ID, p.ID, p.Role, m.SchoolID, m.ClassID)
	return &m, nil
}

/* ===================== READ ===================== */

// List memakai scope yang sama dengan soal lesson; Mine melewati scope.
func (s *AnnouncementService) List(ctx context.Context, p helperAuth.Principal, f ListFilter, paging helper.Paging) ([]announcementModel.AnnouncementModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&announcementModel.AnnouncementModel{})
	if f.Mine && p.Role != constants.RoleStudent {
		q = q.Where("author_id = ?", p.ID)
	} else {
		scope, err := s.Resolver.ScopeFor(ctx, p)
		if err != nil {
			return nil, 0, err
		}
		q = scope.Apply(q)
	}
	if f.ClassID != nil {
		q = q.Where("class_id = ?", *f.ClassID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count announcements")
	}
	var rows []announcementModel.AnnouncementModel
	if err := q.Order("created_at DESC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list announcements")
	}
	return rows, total, nil
}

func (s *AnnouncementService) Get(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.AuthorID == p.ID {
		return m, nil
	}
	scope, err := s.Resolver.ScopeFor(ctx, p)
	if err != nil {
		return nil, err
	}
	var n int64
	if err := scope.Apply(s.DB.WithContext(ctx).Model(&announcementModel.AnnouncementModel{})).
		Where("id = ?", m.ID).Count(&n).Error; err != nil {
		return nil, errors.Wrap(err, "check announcement scope")
	}
	if n == 0 {
		return nil, apperror.NotFound("announcement")
	}
	return m, nil
}

func (s *AnnouncementService) load(ctx context.Context, id uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	var m announcementModel.AnnouncementModel
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("announcement")
		}
		return nil, errors.Wrap(err, "load announcement")
	}
	return &m, nil
}

// loadForEdit: penulis, sekolah pemilik, atau admin.
func (s *AnnouncementService) loadForEdit(ctx context.Context, p helperAuth.Principal, id uuid.UUID) (*announcementModel.AnnouncementModel, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.AuthorID == p.ID || classService.CanAuthor(p, m.SchoolID) {
		return m, nil
	}
	return nil, apperror.Forbidden("only the author or its school may change this announcement")
}

/* ===================== UPDATE / DELETE ===================== */

func (s *AnnouncementService) Update(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.UpdateAnnouncementRequest, attachment *multipart.FileHeader) (*announcementModel.AnnouncementModel, error) {
	m, err := s.loadForEdit(ctx, p, id)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Content != nil {
		patch["content"] = *req.Content
	}
	if req.IsPublished != nil {
		patch["is_published"] = *req.IsPublished
	}

	var stale, uploaded *string
	if attachment != nil {
		url, err := s.Store.Upload(ctx, constants.FolderAnnouncement, attachment)
		if err != nil {
			return nil, apperror.Upstream("storage", err)
		}
		uploaded = &url
		patch["attachment_url"] = url
		stale = m.AttachmentURL
	} else if req.RemoveAttachment && m.AttachmentURL != nil {
		patch["attachment_url"] = nil
		stale = m.AttachmentURL
	}

	if len(patch) > 0 {
		if err := s.DB.WithContext(ctx).Model(m).Updates(patch).Error; err != nil {
			storage.Cleanup(ctx, s.Store, uploaded)
			return nil, errors.Wrap(err, "update announcement")
		}
		storage.Cleanup(ctx, s.Store, stale)
	}
	return s.load(ctx, m.ID)
}

func (s *AnnouncementService) Delete(ctx context.Context, p helperAuth.Principal, id uuid.UUID) error {
	m, err := s.loadForEdit(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(m).Error; err != nil {
		return errors.Wrap(err, "delete announcement")
	}
	storage.Cleanup(ctx, s.Store, m.AttachmentURL)
	return nil
}
