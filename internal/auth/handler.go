package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/profile"
)

// Handler exposes the auth endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name      string  `json:"name"`
	Mobile    string  `json:"mobile"`
	Password  string  `json:"password"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	profile.Input
}

type authResponse struct {
	Token   string         `json:"token"`
	User    identity.User  `json:"user"`
	Profile any            `json:"profile,omitempty"`
}

// Register handles onboarding with the role taken from the body.
func (h *Handler) Register(c *fiber.Ctx) error {
	return h.register(c, "")
}

// RegisterRole returns a handler for the role-specific registration routes,
// where the path fixes the role regardless of the body.
func (h *Handler) RegisterRole(role identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.register(c, role)
	}
}

func (h *Handler) register(c *fiber.Ctx, forced identity.Role) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	role := req.Role
	if forced != "" {
		role = string(forced)
	}
	result, err := h.service.Register(c.UserContext(), RegisterInput{
		Name:      req.Name,
		Mobile:    req.Mobile,
		Password:  req.Password,
		Email:     req.Email,
		Role:      role,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
		Profile:   req.Input,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(authResponse{
		Token:   result.Token,
		User:    result.User,
		Profile: result.Profile.Variant(),
	})
}

type loginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// Login validates credentials and returns a token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	result, err := h.service.Login(c.UserContext(), LoginInput{
		Mobile:   req.Mobile,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(authResponse{Token: result.Token, User: result.User})
}

type otpRequest struct {
	Mobile string `json:"mobile"`
	Code   string `json:"code"`
}

// SendOTP issues a verification code for the mobile number.
func (h *Handler) SendOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.SendOTP(c.UserContext(), req.Mobile); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "otp sent"})
}

// VerifyOTP checks a code and marks the account verified.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.VerifyOTP(c.UserContext(), req.Mobile, req.Code); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "verified"})
}

type resetPasswordRequest struct {
	Mobile   string `json:"mobile"`
	Code     string `json:"code"`
	Password string `json:"password"`
}

// ResetPassword sets a new password after OTP verification.
func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.ResetPassword(c.UserContext(), req.Mobile, req.Code, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "password reset"})
}

// Me returns the authenticated account and its role profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	user, rec, err := h.service.Me(c.UserContext(), uid)
	if err != nil {
		return err
	}
	payload := fiber.Map{"user": user}
	if rec != nil {
		payload["profile"] = rec.Variant()
	}
	return c.Status(http.StatusOK).JSON(payload)
}

type accountPatchRequest struct {
	Name      *string  `json:"name"`
	Email     *string  `json:"email"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// UpdateAccount partially updates allow-listed credential fields.
func (h *Handler) UpdateAccount(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	var req accountPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, err := h.service.UpdateAccount(c.UserContext(), uid, identity.Patch{
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"user": user})
}

// Deactivate soft-disables the authenticated account.
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return apperror.Unauthenticated("unauthorized")
	}
	if err := h.service.Deactivate(c.UserContext(), uid); err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "deactivated"})
}
