package routes

import (
	"context"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/notification"
)

// RegisterLiveRoutes wires the websocket endpoint feeding live notifications.
// Browsers cannot set headers on websocket upgrades, so the bearer token
// travels as a query parameter.
func RegisterLiveRoutes(r fiber.Router, hub *notification.Hub, tokens *auth.TokenIssuer, users identity.Repository) {
	r.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		claims, err := tokens.Verify(c.Query("token"))
		if err != nil {
			return apperror.Unauthenticated("invalid token")
		}
		user, err := users.FindByID(c.UserContext(), claims.Subject)
		if err != nil || !user.Active {
			return apperror.Unauthenticated("account not found")
		}
		c.Locals("user_id", user.ID)
		return c.Next()
	})

	r.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		uid, _ := conn.Locals("user_id").(string)
		if uid == "" {
			conn.Close()
			return
		}
		hub.Add(uid, conn)
		users.SetOnline(context.Background(), uid, true) // nolint:errcheck
		defer func() {
			hub.Remove(uid, conn)
			users.SetOnline(context.Background(), uid, false) // nolint:errcheck
			conn.Close()
		}()
		// Drain the connection until the client goes away; pushes happen
		// through the hub.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}
