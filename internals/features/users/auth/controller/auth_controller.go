package controller

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/users/auth/dto"
	"lingoschool_backend/internals/features/users/auth/service"
	userDTO "lingoschool_backend/internals/features/users/user/dto"
	helper "lingoschool_backend/internals/helpers"
	helperAuth "lingoschool_backend/internals/helpers/auth"
	"lingoschool_backend/internals/helpers/storage"
)

type AuthController struct {
	Service *service.AuthService
}

func NewAuthController(svc *service.AuthService) *AuthController {
	return &AuthController{Service: svc}
}

/* ===== Public ===== */

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	resp, err := ac.Service.Register(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonCreated(c, "Registration successful", resp)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	resp, err := ac.Service.Login(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	if resp.RequiresOTP {
		return helper.JsonOK(c, "Verification code sent to your email", resp)
	}
	return helper.JsonOK(c, "Login successful", resp)
}

// POST /api/auth/login/verify-otp
func (ac *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	resp, err := ac.Service.VerifyLoginOTP(c.UserContext(), req)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Login successful", resp)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	resp, err := ac.Service.LoginGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "Login successful", resp)
}

// POST /api/auth/forgot-password
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := ac.Service.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "If the email is registered, a reset code has been sent", nil)
}

// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := ac.Service.ResetPassword(c.UserContext(), req); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Password reset successfully", nil)
}

/* ===== Authenticated ===== */

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePasswordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	if err := ac.Service.ChangePassword(c.UserContext(), p, req); err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Password changed", nil)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	if err := ac.Service.Logout(c.UserContext(), p, helper.GetRawAccessToken(c)); err != nil {
		return helper.FromError(c, err)
	}
	c.ClearCookie("access_token")
	return helper.JsonOK(c, "Logged out", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	u, err := ac.Service.Me(c.UserContext(), p)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonOK(c, "ok", userDTO.ToUserResponse(u))
}

// PATCH /api/auth/me (JSON atau multipart + avatar)
func (ac *AuthController) UpdateMe(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMeRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	avatar, err := storage.FormFile(c, "avatar")
	if err != nil {
		return helper.FromError(c, err)
	}
	u, err := ac.Service.UpdateMe(c.UserContext(), p, req, avatar)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Profile updated", userDTO.ToUserResponse(u))
}

// PATCH /api/auth/me/two-factor
func (ac *AuthController) SetTwoFactor(c *fiber.Ctx) error {
	p, err := helperAuth.GetPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TwoFactorRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return helper.FromError(c, err)
	}
	u, err := ac.Service.SetTwoFactor(c.UserContext(), p, *req.Enabled)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.JsonUpdated(c, "Two-factor setting updated", userDTO.ToUserResponse(u))
}
