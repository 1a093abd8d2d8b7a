package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/users/user/controller"
	"lingoschool_backend/internals/features/users/user/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

// UserRoutes:
//
//	/api/users      (admin: semua; school: guru & murid miliknya)
//	/api/teachers   (direktori guru + kelas wali)
func UserRoutes(r fiber.Router, svc *service.UserService) {
	ctl := controller.NewUserController(svc)
	schoolOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("user management"), constants.SchoolAndAdmin...)

	users := r.Group("/users", schoolOnly)
	users.Get("/", ctl.List)
	users.Post("/", ctl.Create)
	users.Get("/:id", ctl.GetByID)
	users.Patch("/:id", ctl.Update)
	users.Delete("/:id", ctl.Delete)
	users.Patch("/:id/disable", ctl.Disable)
	users.Patch("/:id/enable", ctl.Enable)
	users.Patch("/:id/password", ctl.ResetPassword)

	teachers := r.Group("/teachers", schoolOnly)
	teachers.Get("/", ctl.ListTeachers)
	teachers.Post("/", ctl.CreateTeacher)
}
