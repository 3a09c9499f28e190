package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/config"
	"github.com/agriconnect/agriconnect/internal/notification"
	"github.com/agriconnect/agriconnect/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
	hub *notification.Hub
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	hub := notification.NewHub()

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: newErrorHandler(logger),
	})

	if err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger, Hub: hub}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, hub: hub}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and tears down live connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)
	s.hub.Close()
	return err
}

// newErrorHandler renders every error, whichever layer raised it, in the
// uniform envelope: success flag, message, optional field errors.
func newErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperror.As(err); ok {
			status := apperror.Status(appErr.Kind)
			if status >= http.StatusInternalServerError {
				logger.Error("request failed", "path", c.Path(), "error", err)
			}
			payload := fiber.Map{"success": false, "message": appErr.Message}
			if len(appErr.Fields) > 0 {
				payload["errors"] = appErr.Fields
			}
			return c.Status(status).JSON(payload)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{"success": false, "message": fiberErr.Message})
		}

		logger.Error("unhandled error", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "internal server error",
		})
	}
}
