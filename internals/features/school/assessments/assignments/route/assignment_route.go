package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/assessments/assignments/controller"
	"lingoschool_backend/internals/features/school/assessments/assignments/service"
	"lingoschool_backend/internals/helpers/dbtime"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func AssignmentRoutes(r fiber.Router, svc *service.AssignmentService, policy *dbtime.Policy) {
	ctl := controller.NewAssignmentController(svc, policy)
	homeroom := authMiddleware.OnlyRoles(constants.RoleErrorTeacher("assignments"), constants.TeacherAndAdmin...)

	a := r.Group("/assignments")
	a.Get("/", ctl.List)
	a.Put("/", homeroom, ctl.Upsert)
	a.Delete("/:id", homeroom, ctl.Delete)
}
