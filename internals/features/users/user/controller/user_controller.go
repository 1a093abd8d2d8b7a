package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/constants"
	"lingoschool_backend/internals/features/users/user/dto"
	"lingoschool_backend/internals/features/users/user/service"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
)

type UserController struct {
	Service *service.UserService
}

func NewUserController(svc *service.UserService) *UserController {
	return &UserController{Service: svc}
}

// GET /api/users?role=&school_id=&q=&page=&per_page=
func (h *UserController) List(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	f := service.ListFilter{Search: c.Query("q")}
	if raw := c.Query("role"); raw != "" {
		role, err := constants.ParseRole(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		f.Role = &role
	}
	if f.SchoolID, err = helperAuth.ParseUUIDQuery(c, "school_id"); err != nil {
		return helper.FromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Service.List(c.UserContext(), p, f, paging)
	if err != nil {
		return helper.FromError(c, err)
	}
	pg := helper.BuildPagination(total, paging)
	return helper.JsonList(c, "ok", dto.ToUserResponses(rows), &pg)
}

// POST /api/users
func (h *UserController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.Create(c.UserContext(), p, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "User created", dto.ToUserResponse(u))
}

// GET /api/users/:id
func (h *UserController) GetByID(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToUserResponse(u))
}

// PATCH /api/users/:id
func (h *UserController) Update(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.UpdateUserRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.Update(c.UserContext(), p, id, req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "User updated", dto.ToUserResponse(u))
}

// PATCH /api/users/:id/disable
func (h *UserController) Disable(c *fiber.Ctx) error { return h.setDisabled(c, true) }

// PATCH /api/users/:id/enable
func (h *UserController) Enable(c *fiber.Ctx) error { return h.setDisabled(c, false) }

func (h *UserController) setDisabled(c *fiber.Ctx, disabled bool) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.SetDisabled(c.UserContext(), p, id, disabled)
	if err != nil {
		return helper.FromError(c, err)
	}
	msg := "User enabled"
	if disabled {
		msg = "User disabled"
	}
	return helper.JsonUpdated(c, msg, dto.ToUserResponse(u))
}

// PATCH /api/users/:id/password
func (h *UserController) ResetPassword(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var req dto.ResetUserPasswordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.ResetPassword(c.UserContext(), p, id, req.NewPassword); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Password reset", nil)
}

// DELETE /api/users/:id
func (h *UserController) Delete(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	id, err := helperAuth.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := h.Service.Delete(c.UserContext(), p, id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonDeleted(c, "User deleted", fiber.Map{"id": id})
}

/* ===== Teachers ===== */

// GET /api/teachers?school_id=
func (h *UserController) ListTeachers(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	schoolID, err := helperAuth.ParseUUIDQuery(c, "school_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	rows, err := h.Service.ListTeachers(c.UserContext(), p, schoolID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

// POST /api/teachers
func (h *UserController) CreateTeacher(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeacherRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	u, err := h.Service.Create(c.UserContext(), p, req.AsUser())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Teacher created", dto.TeacherResponse{UserResponse: dto.ToUserResponse(u)})
}
