package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/submissions/controller"
	"lingoschool_backend/internals/features/school/assessments/submissions/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func SubmissionRoutes(r fiber.Router, svc *service.SubmissionService) {
	ctl := controller.NewSubmissionController(svc)
	studentOnly := authMiddleware.OnlyRoles(constants.RoleErrorStudent("submissions"), constants.StudentOnly...)

	subs := r.Group("/submissions")
	subs.Post("/lesson/:lessonId", studentOnly, ctl.SubmitLesson)
	subs.Post("/exam/:examId", studentOnly, ctl.SubmitExam)
	subs.Get("/me", studentOnly, ctl.ListMine)
	subs.Get("/lesson/:lessonId/scores",
		authMiddleware.OnlyRoles(constants.RoleErrorTeacher("class scores"), constants.TeacherOnly...), ctl.LessonScores)
	subs.Get("/exam/:examId/scores",
		authMiddleware.OnlyRoles(constants.RoleErrorStaff("exam scores"), constants.StaffRoles...), ctl.ExamScores)
	subs.Get("/:id", ctl.GetByID)
}
