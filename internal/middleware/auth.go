package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/identity"
)

// RequireAuth is the request-time auth guard: it extracts the bearer token,
// verifies it (reporting expired and invalid distinctly), loads the account,
// rejects inactive accounts, and enforces the role allow-list. On success the
// account id and role are attached to the request context.
func RequireAuth(tokens *auth.TokenIssuer, users identity.Repository, roles ...identity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return apperror.Unauthenticated("missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])

		claims, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return apperror.Unauthenticated("token expired")
			}
			return apperror.Unauthenticated("invalid token")
		}

		user, err := users.FindByID(c.UserContext(), claims.Subject)
		if err != nil {
			return apperror.Unauthenticated("account not found")
		}
		if !user.Active {
			return apperror.Unauthenticated("account is deactivated")
		}

		if len(roles) > 0 {
			allowed := false
			for _, role := range roles {
				if user.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				return apperror.Forbidden("insufficient role")
			}
		}

		c.Locals("user_id", user.ID)
		c.Locals("role", user.Role)
		return c.Next()
	}
}
