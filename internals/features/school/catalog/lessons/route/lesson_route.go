package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/catalog/lessons/controller"
	"lingoschool_backend/internals/features/school/catalog/lessons/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

//	/api/lessons?unit_id=
//	/api/lessons/:id
func LessonRoutes(r fiber.Router, svc *service.LessonService) {
	ctl := controller.NewLessonController(svc)
	authorOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("lesson authoring"), constants.SchoolAndAdmin...)

	lessons := r.Group("/lessons")
	lessons.Get("/", ctl.List)
	lessons.Get("/:id", ctl.GetByID)
	lessons.Post("/", authorOnly, ctl.Create)
	lessons.Patch("/:id", authorOnly, ctl.Update)
	lessons.Delete("/:id", authorOnly, ctl.Delete)
}
