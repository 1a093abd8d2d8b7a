package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/catalog/vocabularies/dto"
	"lingoschool_backend/internals/features/school/catalog/vocabularies/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type VocabularyController struct {
	Service *service.VocabularyService
}

func NewVocabularyController(svc *service.VocabularyService) *VocabularyController {
	return &VocabularyController{Service: svc}
}

// POST /api/vocabularies (JSON atau multipart + image)
func (h *VocabularyController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateVocabularyRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	image, err := storage.FormFile(c, "image")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req, image)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Vocabulary created", dto.ToVocabularyResponse(*m))
}

// GET /api/vocabularies?lesson_id=
func (h *VocabularyController) List(c *fiber.Ctx) error {
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
	return helper.JsonList(c, "ok", dto.ToVocabularyResponses(rows), nil)
}

func (h *VocabularyController) GetByID(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.ToVocabularyResponse(*m))
}

func (h *VocabularyController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateVocabularyRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	image, err := storage.FormFile(c, "image")
	if err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req, image)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Vocabulary updated", dto.ToVocabularyResponse(*m))
}

func (h *VocabularyController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Vocabulary deleted", fiber.Map{"id": id})
}
