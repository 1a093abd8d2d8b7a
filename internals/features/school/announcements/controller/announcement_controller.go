package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/announcements/dto"
	"lingoschool_backend/internals/features/school/announcements/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type AnnouncementController struct {
	Service *service.AnnouncementService
}

func NewAnnouncementController(svc *service.AnnouncementService) *AnnouncementController {
	return &AnnouncementController{Service: svc}
}

// POST /api/announcements (JSON atau multipart + attachment)
func (h *AnnouncementController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateAnnouncementRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	file, err := storage.FormFile(c, "attachment")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req, file)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Announcement created", dto.ToAnnouncementResponse(*m))
}

// GET /api/announcements?class_id=&mine=true&page=&per_page=
func (h *AnnouncementController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	f := service.ListFilter{Mine: c.QueryBool("mine", false)}
	if f.ClassID, err = helperAuth.ParseUUIDQuery(c, "class_id"); err != nil {
		return helper.FromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Service.List(c.UserContext(), p, f, paging)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, paging)
	return helper.JsonList(c, "ok", dto.ToAnnouncementResponses(rows), &pg)
}

// GET /api/announcements/:id
func (h *AnnouncementController) GetByID(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToAnnouncementResponse(*m))
}

// PATCH /api/announcements/:id
func (h *AnnouncementController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateAnnouncementRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	file, err := storage.FormFile(c, "attachment")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req, file)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Announcement updated", dto.ToAnnouncementResponse(*m))
}

// DELETE /api/announcements/:id
func (h *AnnouncementController) Delete(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), p, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Announcement deleted", fiber.Map{"id": id})
}
