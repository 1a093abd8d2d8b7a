package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/questions/controller"
	"lingoschool_backend/internals/features/school/assessments/questions/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

// QuestionRoutes: baca untuk semua role (di-scope service), tulis untuk staff.
func QuestionRoutes(r fiber.Router, svc *service.QuestionService) {
	ctl := controller.NewQuestionController(svc)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("question authoring"), constants.StaffRoles...)

	q := r.Group("/questions")
	q.Get("/lesson/:lessonId", ctl.ByLesson)
	q.Get("/exam/:examId", ctl.ByExam)
	q.Post("/", staff, ctl.Create)
	q.Patch("/:id", staff, ctl.Update)
	q.Delete("/:id", staff, ctl.Delete)
}
