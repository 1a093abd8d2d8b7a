package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/catalog/lessons/dto"
	"lingoschool_backend/internals/features/school/catalog/lessons/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type LessonController struct {
	Service *service.LessonService
}

func NewLessonController(svc *service.LessonService) *LessonController {
	return &LessonController{Service: svc}
}

// POST /api/lessons (JSON atau multipart + video)
func (h *LessonController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateLessonRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	video, err := storage.FormFile(c, "video")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req, video)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Lesson created", dto.ToLessonResponse(*m, h.Service.Time.InSchoolPtr(m.Deadline)))
}

// GET /api/lessons?unit_id=
func (h *LessonController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	unitID, err := helperAuth.ParseUUIDQuery(c, "unit_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	rows, err := h.Service.List(c.UserContext(), p, unitID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", service.Responses(rows), nil)
}

// GET /api/lessons/:id (murid: deadline efektif dari assignment kelas)
func (h *LessonController) GetByID(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	lv, err := h.Service.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", lv.Response())
}

// PATCH /api/lessons/:id
func (h *LessonController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateLessonRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	video, err := storage.FormFile(c, "video")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req, video)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Lesson updated", dto.ToLessonResponse(*m, h.Service.Time.InSchoolPtr(m.Deadline)))
}

// DELETE /api/lessons/:id
func (h *LessonController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Lesson deleted", fiber.Map{"id": id})
}
