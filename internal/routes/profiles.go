package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/middleware"
	"github.com/agriconnect/agriconnect/internal/profile"
)

// RegisterProfileRoutes wires the role-specific registration sugar and the
// role-scoped profile update endpoints.
func RegisterProfileRoutes(r fiber.Router, ph *profile.Handler, ah *auth.Handler, tokens *auth.TokenIssuer, users identity.Repository) {
	farmers := r.Group("/farmers")
	farmers.Post("/register", ah.RegisterRole(identity.RoleFarmer))
	farmers.Put("/profile", middleware.RequireAuth(tokens, users, identity.RoleFarmer), ph.UpdateFarmer)

	vendors := r.Group("/vendors")
	vendors.Post("/register", ah.RegisterRole(identity.RoleVendor))
	vendors.Put("/profile", middleware.RequireAuth(tokens, users, identity.RoleVendor), ph.UpdateVendor)

	customers := r.Group("/customers")
	customers.Post("/register", ah.RegisterRole(identity.RoleCustomer))
	customers.Put("/profile", middleware.RequireAuth(tokens, users, identity.RoleCustomer), ph.UpdateCustomer)
}
