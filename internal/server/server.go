// Package server assembles the Fiber application.
package server

import (
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Options are the runtime knobs of New that do not come from Config.
type Options struct {
	// EventsEnabled is reported by /health.
	EventsEnabled bool
	// DisableAccessLog turns off the per-request logger middleware.
	DisableAccessLog bool
}

// New returns the Fiber app with every route registered under /api/v1.
func New(cfg *config.Config, svc Services, opts Options, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ErrorHandler: handlers.ErrorHandler(log.Named("http")),
		BodyLimit:    1 << 20,
	})

	app.Use(recover.New())
	if !opts.DisableAccessLog {
		app.Use(logger.New())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.TrimRight(cfg.App.FrontendURL, "/"),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Cache-Control, Expires, Pragma",
		AllowCredentials: true,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": opts.EventsEnabled,
		})
	})

	httpLog := log.Named("http")
	authRequired := middleware.AuthRequired(svc.Auth, httpLog)
	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)

	apiV1 := app.Group("/api/v1")
	handlers.NewAuthHandler(svc.Auth, !cfg.IsDevelopment(), httpLog).RegisterRoutes(apiV1, authRequired, limiter.Limit())
	handlers.NewProductHandler(svc.Products, httpLog).RegisterRoutes(apiV1, authRequired)
	handlers.NewCartHandler(svc.Carts, httpLog).RegisterRoutes(apiV1, authRequired)
	handlers.NewAddressHandler(svc.Addresses, httpLog).RegisterRoutes(apiV1, authRequired)
	handlers.NewOrderHandler(svc.Orders, svc.Carts, httpLog).RegisterRoutes(apiV1, authRequired)

	return app
}
