package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/assessments/questions/dto"
	"lingoschool_backend/internals/features/school/assessments/questions/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type QuestionController struct {
	Service *service.QuestionService
}

func NewQuestionController(svc *service.QuestionService) *QuestionController {
	return &QuestionController{Service: svc}
}

// GET /api/questions/lesson/:lessonId
func (h *QuestionController) ByLesson(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	lessonID, err := helperAuth.ParseUUIDParam(c, "lessonId")
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.FetchQuestionsForPrincipal(c.UserContext(), p, lessonID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /api/questions/exam/:examId
func (h *QuestionController) ByExam(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	examID, err := helperAuth.ParseUUIDParam(c, "examId")
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.FetchExamQuestions(c.UserContext(), p, examID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// POST /api/questions
func (h *QuestionController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateQuestionRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Create(c.UserContext(), p, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Question created", dto.ToQuestionResponse(*m, true))
}

// PATCH /api/questions/:id
func (h *QuestionController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateQuestionRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	m, err := h.Service.Update(c.UserContext(), p, id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Question updated", dto.ToQuestionResponse(*m, true))
}

// DELETE /api/questions/:id
func (h *QuestionController) Delete(c *fiber.Ctx) error {
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
	return helper.JsonDeleted(c, "Question deleted", fiber.Map{"id": id})
}
