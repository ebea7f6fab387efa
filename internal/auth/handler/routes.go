package handler

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	auth := app.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/send-otp", h.SendOtp)
	auth.Post("/verify-otp", h.VerifyOtp)
	auth.Delete("/session", h.Logout)

	// Admin-only endpoints
	admin := auth.Group("/user", h.RequireAdmin())
	admin.Delete("/:id/sessions", h.ForceLogout)
}
