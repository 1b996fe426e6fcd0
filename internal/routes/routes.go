package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/teamzaps/zaps/internal/auth"
	"github.com/teamzaps/zaps/internal/bot"
	"github.com/teamzaps/zaps/internal/config"
	"github.com/teamzaps/zaps/internal/feed"
	"github.com/teamzaps/zaps/internal/funding"
	"github.com/teamzaps/zaps/internal/history"
	"github.com/teamzaps/zaps/internal/identity"
	"github.com/teamzaps/zaps/internal/journal"
	"github.com/teamzaps/zaps/internal/middleware"
	"github.com/teamzaps/zaps/internal/payments"
	"github.com/teamzaps/zaps/internal/wallet"
)

// devJWTSecret signs tab tokens in development when JWT_SECRET is unset.
const devJWTSecret = "development-only-secret"

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	b, err := newBackends(d.Cfg, d.DB, d.Cache, d.Logger)
	if err != nil {
		return err
	}

	secret := d.Cfg.JWTSecret
	if secret == "" && d.Cfg.IsDevelopment() {
		secret = devJWTSecret
	}
	verifier, err := auth.NewVerifier(secret, d.Cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("token verifier: %w", err)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Services and handlers
	identitySvc := identity.NewService(b.directory, d.Logger)
	walletSvc := wallet.NewService(identitySvc, b.ledger, d.Logger)
	paymentSvc := payments.NewService(b.ledger, walletSvc, b.notifier, b.journal, d.Logger)
	feedSvc := feed.NewService(walletSvc, history.NewReader(b.ledger), identitySvc, d.Logger)
	zapBot := bot.New(paymentSvc, walletSvc, identitySvc, feedSvc, d.Logger)

	RegisterHealthRoutes(app, d)
	RegisterBotRoutes(app, bot.NewHandler(zapBot))

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	if d.Cfg.IsDevelopment() {
		RegisterAuthRoutes(api, auth.NewHandler(verifier))
	}

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(verifier))
	if d.Cache != nil {
		protected.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterDirectoryRoutes(protected, identity.NewHandler(identitySvc))
	RegisterWalletRoutes(protected, wallet.NewHandler(walletSvc), feed.NewHandler(feedSvc))
	RegisterZapRoutes(protected, payments.NewHandler(paymentSvc), journal.NewHandler(b.journal),
		middleware.ZapRateLimit(d.Cache, d.Cfg.ZapRateLimit, d.Logger))

	if treasury := b.treasury(d.Cfg, walletSvc); treasury != nil {
		fundingSvc, err := funding.NewService(paymentSvc, walletSvc, treasury, d.Logger)
		if err != nil {
			return err
		}
		RegisterFundingRoutes(protected, funding.NewHandler(fundingSvc),
			middleware.RequireAdmin(d.Cfg.AdminIdentities, d.Cfg.IsDevelopment()))
	} else {
		d.Logger.Info("TREASURY_WALLET_ID not set, top-ups disabled")
	}

	return nil
}
