package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/assessments/assignments/dto"
	"lingoschool_backend/internals/features/school/assessments/assignments/service"
	helper "lingoschool_backend/internals/helpers"
	"lingoschool_backend/internals/helpers/apperror"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/dbtime"
)

type AssignmentController struct {
	Service *service.AssignmentService
	Time    *dbtime.Policy
}

func NewAssignmentController(svc *service.AssignmentService, policy *dbtime.Policy) *AssignmentController {
	return &AssignmentController{Service: svc, Time: policy}
}

// PUT /api/assignments
func (h *AssignmentController) Upsert(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpsertAssignmentRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	deadline, err := h.Time.ParseClientTimePtr(req.Deadline)
	if err != nil {
		return helper.FromError(c, apperror.Validation("deadline: "+err.Error()))
	}

	m, err := h.Service.Upsert(c.UserContext(), p, service.UpsertInput{
		ClassID:     req.ClassID,
		LessonID:    req.LessonID,
		Deadline:    deadline,
		IsPublished: req.IsPublished == nil || *req.IsPublished,
	})
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Assignment saved", dto.ToAssignmentResponse(*m, h.Time.Location))
}

// GET /api/assignments?class_id=&lesson_id=
func (h *AssignmentController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var f service.ListFilter
	if f.ClassID, err = helperAuth.ParseUUIDQuery(c, "class_id"); err != nil {
		return helper.FromError(c, err)
	}
	if f.LessonID, err = helperAuth.ParseUUIDQuery(c, "lesson_id"); err != nil {
		return helper.FromError(c, err)
	}
	rows, err := h.Service.List(c.UserContext(), p, f)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToAssignmentResponses(rows, h.Time.Location), nil)
}

// DELETE /api/assignments/:id
func (h *AssignmentController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Assignment deleted", fiber.Map{"id": id})
}
