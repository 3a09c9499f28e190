package notification

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/apperror"
)

// Handler exposes notification endpoints. All routes sit behind the auth
// guard and operate only on the authenticated account's records.
type Handler struct {
	service *Service
}

// NewHandler constructs a notification HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the account's notifications.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	notifications, err := h.service.List(c.UserContext(), uid)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"notifications": notifications})
}

// MarkRead flags one notification as read.
func (h *Handler) MarkRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	if err := h.service.MarkRead(c.UserContext(), uid, c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NotFound("notification not found")
		}
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "read"})
}

// MarkAllRead flags every notification as read.
func (h *Handler) MarkAllRead(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	if err := h.service.MarkAllRead(c.UserContext(), uid); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "read"})
}
