package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/catalog/grammars/controller"
	"lingoschool_backend/internals/features/school/catalog/grammars/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func GrammarRoutes(r fiber.Router, svc *service.GrammarService) {
	ctl := controller.NewGrammarController(svc)
	authorOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("grammar authoring"), constants.SchoolAndAdmin...)

	g := r.Group("/grammar")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Post("/", authorOnly, ctl.Create)
	g.Patch("/:id", authorOnly, ctl.Update)
	g.Delete("/:id", authorOnly, ctl.Delete)
}
