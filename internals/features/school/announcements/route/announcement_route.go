package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/announcements/controller"
	"lingoschool_backend/internals/features/school/announcements/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

func AnnouncementRoutes(r fiber.Router, svc *service.AnnouncementService) {
	ctl := controller.NewAnnouncementController(svc)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("announcements"), constants.StaffRoles...)

	g := r.Group("/announcements")
	g.Get("/", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Post("/", staff, ctl.Create)
	g.Patch("/:id", staff, ctl.Update)
	g.Delete("/:id", staff, ctl.Delete)
}
