package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/middleware"
	"github.com/agriconnect/agriconnect/internal/notification"
)

// RegisterNotificationRoutes wires the in-app notification endpoints.
func RegisterNotificationRoutes(r fiber.Router, h *notification.Handler, tokens *auth.TokenIssuer, users identity.Repository) {
	group := r.Group("/notifications", middleware.RequireAuth(tokens, users))
	group.Get("/", h.List)
	group.Put("/read-all", h.MarkAllRead)
	group.Put("/:id/read", h.MarkRead)
}
