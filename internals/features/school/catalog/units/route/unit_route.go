package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/catalog/units/controller"
	"lingoschool_backend/internals/features/school/catalog/units/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

// UnitRoutes dipasang di group yang sudah melewati AuthMiddleware.
//
//	/api/units
//	/api/units/:id
func UnitRoutes(r fiber.Router, svc *service.UnitService) {
	ctl := controller.NewUnitController(svc)
	authorOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("unit authoring"), constants.SchoolAndAdmin...)

	units := r.Group("/units")
	units.Get("/", ctl.List)
	units.Get("/:id", ctl.GetByID)
	units.Post("/", authorOnly, ctl.Create)
	units.Patch("/:id", authorOnly, ctl.Update)
	units.Delete("/:id", authorOnly, ctl.Delete)
}
