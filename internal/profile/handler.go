package profile

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/apperror"
)

// Handler exposes the role-scoped profile update endpoints. Each route sits
// behind the auth guard with the matching role requirement, so the role tag
// can never change through these paths.
type Handler struct {
	repo Repository
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// UpdateFarmer partially updates the authenticated farmer's profile.
func (h *Handler) UpdateFarmer(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	var patch FarmerPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.repo.UpdateFarmer(c.UserContext(), uid, patch)
	return respond(c, rec, err)
}

// UpdateVendor partially updates the authenticated vendor's profile.
func (h *Handler) UpdateVendor(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	var patch VendorPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.repo.UpdateVendor(c.UserContext(), uid, patch)
	return respond(c, rec, err)
}

// UpdateCustomer partially updates the authenticated customer's profile.
func (h *Handler) UpdateCustomer(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	var patch CustomerPatch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.repo.UpdateCustomer(c.UserContext(), uid, patch)
	return respond(c, rec, err)
}

func respond(c *fiber.Ctx, rec Record, err error) error {
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NotFound("profile not found")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"profile": rec.Variant()})
}
