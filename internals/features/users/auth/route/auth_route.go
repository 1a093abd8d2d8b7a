// file: internals/features/users/auth/route/auth_route.go
package route

import (
	"github.com/gofiber/fiber/v2"

	"lingoschool_backend/internals/features/users/auth/controller"
	"lingoschool_backend/internals/features/users/auth/service"
	rateLimiter "lingoschool_backend/internals/middlewares"
)

// AuthPublicRoutes: /api/auth/{register,login,login/verify-otp,login-google,forgot-password,reset-password}
// Harus didaftarkan sebelum grup yang memakai AuthMiddleware.
func AuthPublicRoutes(public fiber.Router, svc *service.AuthService) {
	ac := controller.NewAuthController(svc)

	pub := public.Group("/auth")
	pub.Post("/register", rateLimiter.RegisterRateLimiter(), ac.Register)
	pub.Post("/login", rateLimiter.LoginRateLimiter(), ac.Login)
	pub.Post("/login/verify-otp", rateLimiter.LoginRateLimiter(), ac.VerifyOTP)
	pub.Post("/login-google", rateLimiter.LoginRateLimiter(), ac.LoginGoogle)
	pub.Post("/forgot-password", rateLimiter.ForgotPasswordRateLimiter(), ac.ForgotPassword)
	pub.Post("/reset-password", rateLimiter.LoginRateLimiter(), ac.ResetPassword)
}

// AuthRoutes (butuh token): /api/auth/{change-password,logout,me,me/two-factor}
func AuthRoutes(protected fiber.Router, svc *service.AuthService) {
	ac := controller.NewAuthController(svc)

	prot := protected.Group("/auth")
	prot.Post("/change-password", ac.ChangePassword)
	prot.Post("/logout", ac.Logout)
	prot.Get("/me", ac.Me)
	prot.Patch("/me", ac.UpdateMe)
	prot.Patch("/me/two-factor", ac.SetTwoFactor)
}
