package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/middleware"
)

// RegisterAuthRoutes wires registration, login, OTP and account endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, tokens *auth.TokenIssuer, users identity.Repository) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/send-otp", h.SendOTP)
	group.Post("/verify-otp", h.VerifyOTP)
	group.Post("/reset-password", h.ResetPassword)

	guard := middleware.RequireAuth(tokens, users)
	group.Get("/me", guard, h.Me)
	group.Put("/profile", guard, h.UpdateAccount)
	group.Post("/deactivate", guard, h.Deactivate)
}
