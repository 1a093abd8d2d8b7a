package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/school/classes/dto"
	classModel "lingoschool_backend/internals/features/school/classes/model"
	"lingoschool_backend/internals/features/school/classes/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

// RosterController: wali kelas, co-teacher & murid. Hanya sekolah pemilik / admin.
type RosterController struct {
	Service *service.RosterService
}

func NewRosterController(svc *service.RosterService) *RosterController {
	return &RosterController{Service: svc}
}

func (h *RosterController) owned(c *fiber.Ctx) (*classModel.ClassModel, error) {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return nil, err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Service.LoadOwned(c.UserContext(), id, p.ID, p.Role)
}

// PUT /api/classes/:id/homeroom
func (h *RosterController) SetHomeroom(c *fiber.Ctx) error {
	cls, err := h.owned(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.SetHomeroomRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.SetHomeroom(c.UserContext(), cls, req.TeacherID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Homeroom teacher updated", dto.ToClassResponse(*cls))
}

// POST /api/classes/:id/teachers
func (h *RosterController) AddTeacher(c *fiber.Ctx) error {
	cls, err := h.owned(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.AddTeacherRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.AddTeacher(c.UserContext(), cls, req.TeacherID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Teacher added", fiber.Map{"class_id": cls.ID, "teacher_id": req.TeacherID})
}

// DELETE /api/classes/:id/teachers/:teacherId
func (h *RosterController) RemoveTeacher(c *fiber.Ctx) error {
	cls, err := h.owned(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	teacherID, err := helperAuth.ParseUUIDParam(c, "teacherId")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.RemoveTeacher(c.UserContext(), cls, teacherID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Teacher removed", fiber.Map{"class_id": cls.ID, "teacher_id": teacherID})
}

// POST /api/classes/:id/students
func (h *RosterController) AddStudents(c *fiber.Ctx) error {
	cls, err := h.owned(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.AddStudentsRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	n, err := h.Service.AddStudents(c.UserContext(), cls, req.StudentIDs)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Students assigned", fiber.Map{"class_id": cls.ID, "assigned": n})
}

// DELETE /api/classes/:id/students/:studentId
func (h *RosterController) RemoveStudent(c *fiber.Ctx) error {
	cls, err := h.owned(c)
	if err != nil {
		return helper.FromError(c, err)
	}
	studentID, err := helperAuth.ParseUUIDParam(c, "studentId")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.RemoveStudent(c.UserContext(), cls, studentID); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "Student removed", fiber.Map{"class_id": cls.ID, "student_id": studentID})
}
