package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/submissions/dto"
	"lingoschool_backend/internals/features/school/assessments/submissions/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type SubmissionController struct {
	Service *service.SubmissionService
}

func NewSubmissionController(svc *service.SubmissionService) *SubmissionController {
	return &SubmissionController{Service: svc}
}

/* =========================================================
   SUBMIT
========================================================= */

// POST /api/submissions/lesson/:lessonId
func (h *SubmissionController) SubmitLesson(c *fiber.Ctx) error {
	return h.submit(c, constants.SubmissionLesson, "lessonId")
}

// POST /api/submissions/exam/:examId
func (h *SubmissionController) SubmitExam(c *fiber.Ctx) error {
	return h.submit(c, constants.SubmissionExam, "examId")
}

func (h *SubmissionController) submit(c *fiber.Ctx, kind constants.SubmissionKind, param string) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	targetID, err := helperAuth.ParseUUIDParam(c, param)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.SubmitRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}

	res, err := h.Service.GradeAndRecordSubmission(c.UserContext(), p, kind, targetID, req.Answers)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Submission graded", res)
}

/* =========================================================
   READ
========================================================= */

// GET /api/submissions/me?kind=&lesson_id=&exam_id=&page=&per_page=
func (h *SubmissionController) ListMine(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}

	var f service.HistoryFilter
	switch k := constants.SubmissionKind(strings.ToLower(strings.TrimSpace(c.Query("kind")))); k {
	case "":
	case constants.SubmissionLesson, constants.SubmissionExam:
		f.Kind = &k
	default:
		return helper.JsonError(c, fiber.StatusBadRequest, "kind must be lesson or exam")
	}
	if f.LessonID, err = helperAuth.ParseUUIDQuery(c, "lesson_id"); err != nil {
		return helper.FromError(c, err)
	}
	if f.ExamID, err = helperAuth.ParseUUIDQuery(c, "exam_id"); err != nil {
		return helper.FromError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Service.ListMine(c.UserContext(), p, f, paging)
	if err != nil {
		return helper.FromError(c, err)
	}
	out := make([]dto.SubmissionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ToSubmissionResponse(r, false))
	}
	pg := helper.BuildPagination(total, paging)
	return helper.JsonList(c, "ok", out, &pg)
}

// GET /api/submissions/:id
func (h *SubmissionController) GetByID(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.ToSubmissionResponse(*m, true))
}

// GET /api/submissions/lesson/:lessonId/scores?class_id=
func (h *SubmissionController) LessonScores(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	lessonID, err := helperAuth.ParseUUIDParam(c, "lessonId")
	if err != nil {
		return helper.FromError(c, err)
	}
	classID, err := helperAuth.ParseUUIDQuery(c, "class_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.FetchClassScoresForTeacher(c.UserContext(), p, lessonID, classID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}

// GET /api/submissions/exam/:examId/scores
func (h *SubmissionController) ExamScores(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	examID, err := helperAuth.ParseUUIDParam(c, "examId")
	if err != nil {
		return helper.FromError(c, err)
	}
	res, err := h.Service.FetchExamScores(c.UserContext(), p, examID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", res)
}
