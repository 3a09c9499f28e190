package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/agriconnect/agriconnect/internal/auth"
	"github.com/agriconnect/agriconnect/internal/config"
	"github.com/agriconnect/agriconnect/internal/email"
	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/middleware"
	"github.com/agriconnect/agriconnect/internal/notification"
	"github.com/agriconnect/agriconnect/internal/otp"
	"github.com/agriconnect/agriconnect/internal/profile"
	"github.com/agriconnect/agriconnect/internal/sms"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	Hub    *notification.Hub
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, 24*time.Hour, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Stores
	var (
		users     identity.Repository
		profiles  profile.Repository
		registrar auth.Registrar
		notifRepo notification.Repository
	)
	if d.DB != nil {
		userStore := identity.NewPostgresRepository(d.DB)
		profileStore := profile.NewPostgresRepository(d.DB)
		users = userStore
		profiles = profileStore
		registrar = auth.NewPostgresRegistrar(d.DB, userStore, profileStore)
		notifRepo = notification.NewPostgresRepository(d.DB)
	} else {
		userStore := identity.NewMemoryRepository()
		profileStore := profile.NewMemoryRepository()
		users = userStore
		profiles = profileStore
		registrar = auth.NewMemoryRegistrar(userStore, profileStore)
		notifRepo = notification.NewMemoryRepository()
	}

	var codes otp.Ledger
	if d.Cache != nil {
		codes = otp.NewRedisLedger(d.Cache)
	} else {
		codes = otp.NewMemoryLedger()
	}

	// Providers
	var mailer email.Mailer
	if d.Cfg.SMTPHost != "" {
		mailer = email.NewSMTPMailer(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUser, d.Cfg.SMTPPass, d.Cfg.SMTPFrom)
	} else {
		mailer = email.NewLogMailer(d.Logger)
	}
	smsSender := sms.NewLogSender(d.Logger)

	// Services and handlers
	notifier := notification.NewService(notifRepo, d.Hub, d.Logger)
	otps := otp.NewService(codes, smsSender, mailer, d.Cfg.OTPTTL, d.Logger)
	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.TokenTTL)
	limiter := auth.NewLoginLimiter(d.Cache, d.Cfg.LoginAttempts, d.Cfg.LoginWindow)
	authSvc := auth.NewService(auth.Deps{
		Users:     users,
		Profiles:  profiles,
		Registrar: registrar,
		Hasher:    identity.NewHasher(d.Cfg.BcryptCost),
		Tokens:    tokens,
		OTPs:      otps,
		Limiter:   limiter,
		Notifier:  notifier,
		Mailer:    mailer,
		Logger:    d.Logger,
	})

	authHandler := auth.NewHandler(authSvc)
	profileHandler := profile.NewHandler(profiles)
	notifHandler := notification.NewHandler(notifier)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAuthRoutes(api, authHandler, tokens, users)
	RegisterProfileRoutes(api, profileHandler, authHandler, tokens, users)
	RegisterNotificationRoutes(api, notifHandler, tokens, users)
	RegisterLiveRoutes(api, d.Hub, tokens, users)

	return nil
}
