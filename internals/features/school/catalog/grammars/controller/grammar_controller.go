package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/catalog/grammars/dto"
	"lingoschool_backend/internals/features/school/catalog/grammars/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type GrammarController struct {
	Service *service.GrammarService
}

func NewGrammarController(svc *service.GrammarService) *GrammarController {
	return &GrammarController{Service: svc}
}

func (h *GrammarController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateGrammarRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Grammar created", dto.ToGrammarResponse(*m))
}

// GET /api/grammar?lesson_id=
func (h *GrammarController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	lessonID, err := helperAuth.ParseUUIDQuery(c, "lesson_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if lessonID == nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "lesson_id is required")
	}
	rows, err := h.Service.ListByLesson(c.UserContext(), p, *lessonID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToGrammarResponses(rows), nil)
}

func (h *GrammarController) GetByID(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.ToGrammarResponse(*m))
}

func (h *GrammarController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateGrammarRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Grammar updated", dto.ToGrammarResponse(*m))
}

func (h *GrammarController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Grammar deleted", fiber.Map{"id": id})
}
