package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/school/classes/controller"
	"lingoschool_backend/internals/features/school/classes/service"
	authMiddleware "lingoschool_backend/internals/middlewares/auth"
)

// ClassRoutes:
//
//	/api/classes            (list per role, create oleh sekolah)
//	/api/classes/me
//	/api/classes/:id        (+ homeroom, teachers, students)
func ClassRoutes(r fiber.Router, classes *service.ClassService, roster *service.RosterService) {
	ctl := controller.NewClassController(classes)
	rc := controller.NewRosterController(roster)
	schoolOnly := authMiddleware.OnlyRoles(constants.RoleErrorSchool("class management"), constants.SchoolAndAdmin...)

	g := r.Group("/classes")
	g.Get("/", ctl.List)
	g.Get("/me", ctl.List)
	g.Get("/:id", ctl.GetByID)
	g.Post("/", schoolOnly, ctl.Create)
	g.Patch("/:id", schoolOnly, ctl.Update)
	g.Delete("/:id", schoolOnly, ctl.Delete)

	g.Put("/:id/homeroom", schoolOnly, rc.SetHomeroom)
	g.Post("/:id/teachers", schoolOnly, rc.AddTeacher)
	g.Delete("/:id/teachers/:teacherId", schoolOnly, rc.RemoveTeacher)
	g.Post("/:id/students", schoolOnly, rc.AddStudents)
	g.Delete("/:id/students/:studentId", schoolOnly, rc.RemoveStudent)
}
