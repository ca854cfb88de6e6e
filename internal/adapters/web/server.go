package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// AppConfig configures NewApp.
type AppConfig struct {
	AppName       string
	AllowedOrigin string
	ProxyPath     string
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewApp builds the Fiber app with the middleware stack and routes.
// Recover sits inside the request logger so panics are logged as 500s.
func NewApp(handlers *Handlers, rateLimiter *RateLimiter, cfg AppConfig) *fiber.App {
	if cfg.ProxyPath == "" {
		cfg.ProxyPath = "/image-proxy"
	}
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New(RequestIDConfig()))
	app.Use(RequestIDToContextMiddleware())
	app.Use(RequestLoggerMiddleware())
	app.Use(recover.New())
	app.Use(cors.New(CORSConfig(cfg.AllowedOrigin)))

	SetupRoutes(app, handlers, rateLimiter, cfg.ProxyPath, cfg.Metrics)
	return app
}
