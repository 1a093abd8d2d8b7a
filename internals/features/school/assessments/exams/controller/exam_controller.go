package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/assessments/exams/dto"
	"lingoschool_backend/internals/features/school/assessments/exams/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type ExamController struct {
	Service *service.ExamService
}

func NewExamController(svc *service.ExamService) *ExamController {
	return &ExamController{Service: svc}
}

// POST /api/exams
func (h *ExamController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateExamRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Exam created", dto.ToExamResponse(*m, h.Service.Time.Location))
}

// GET /api/exams?class_id=
func (h *ExamController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	classID, err := helperAuth.ParseUUIDQuery(c, "class_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	rows, err := h.Service.List(c.UserContext(), p, classID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToExamResponses(rows, h.Service.Time.Location), nil)
}

// GET /api/exams/:id
func (h *ExamController) GetByID(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.ToExamResponse(*m, h.Service.Time.Location))
}

// PATCH /api/exams/:id
func (h *ExamController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateExamRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Exam updated", dto.ToExamResponse(*m, h.Service.Time.Location))
}

// DELETE /api/exams/:id
func (h *ExamController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Exam deleted", fiber.Map{"id": id})
}
