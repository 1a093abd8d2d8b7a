package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/exams/controller"
	"lingoschool_backend/internals/features/school/assessments/exams/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func ExamRoutes(r fiber.Router, svc *service.ExamService) {
	ctl := controller.NewExamController(svc)
	owner := authMiddleware.OnlyRoles(constants.RoleErrorTeacher("exam management"), constants.TeacherAndAdmin...)

	exams := r.Group("/exams")
	exams.Get("/", ctl.List)
	exams.Get("/:id", ctl.GetByID)
	exams.Post("/", authMiddleware.OnlyRoles(constants.RoleErrorTeacher("exam authoring"), constants.TeacherOnly...), ctl.Create)
	exams.Patch("/:id", owner, ctl.Update)
	exams.Delete("/:id", owner, ctl.Delete)
}
