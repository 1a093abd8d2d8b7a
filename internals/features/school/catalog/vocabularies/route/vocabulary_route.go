package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/catalog/vocabularies/controller"
	"lingoschool_backend/internals/features/school/catalog/vocabularies/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func VocabularyRoutes(r fiber.Router, svc *service.VocabularyService) {
	ctl := controller.NewVocabularyController(svc)
	authorOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("vocabulary authoring"), constants.SchoolAndAdmin...)

	v := r.Group("/vocabularies")
	v.Get("/", ctl.List)
	v.Get("/:id", ctl.GetByID)
	v.Post("/", authorOnly, ctl.Create)
	v.Patch("/:id", authorOnly, ctl.Update)
	v.Delete("/:id", authorOnly, ctl.Delete)
}
