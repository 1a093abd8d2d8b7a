package controller

import (
	"github.com/gofiber/fiber/v2"

	lessonService "lingoschool_backend/internals/features/school/catalog/lessons/service"
	"lingoschool_backend/internals/features/school/catalog/units/dto"
	"lingoschool_backend/internals/features/school/catalog/units/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type UnitController struct {
	Service *service.UnitService
}

func NewUnitController(svc *service.UnitService) *UnitController {
	return &UnitController{Service: svc}
}

// =========================================================
// CREATE - POST /api/units (JSON atau multipart + thumbnail)
// =========================================================
func (h *UnitController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUnitRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	thumb, err := storage.FormFile(c, "thumbnail")
	if err != nil {
		return helper.FromError(c, err)
	}

	m, err := h.Service.Create(c.UserContext(), p, req, thumb)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Unit created", dto.ToUnitResponse(*m))
}

// =========================================================
// LIST - GET /api/units?page=&per_page=
// =========================================================
func (h *UnitController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Service.List(c.UserContext(), p, paging)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, paging)
	return helper.JsonList(c, "ok", dto.ToUnitResponses(rows), &pg)
}

// GET /api/units/:id (beserta lesson)
func (h *UnitController) GetByID(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, lessons, err := h.Service.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.UnitDetailResponse{
		UnitResponse: dto.ToUnitResponse(*m),
		Lessons:      lessonService.Responses(lessons),
	})
}

// PATCH /api/units/:id
func (h *UnitController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateUnitRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	thumb, err := storage.FormFile(c, "thumbnail")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req, thumb)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Unit updated", dto.ToUnitResponse(*m))
}

// DELETE /api/units/:id
func (h *UnitController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Unit deleted", fiber.Map{"id": id})
}
