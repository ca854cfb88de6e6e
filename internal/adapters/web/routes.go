package web

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// SetupRoutes configures the application routes. metrics may be nil.
func SetupRoutes(app *fiber.App, handlers *Handlers, rateLimiter *RateLimiter, proxyPath string, metrics http.Handler) {
	app.Get("/", handlers.Home)
	app.Get("/healthz", handlers.Healthz)
	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics))
	}

	// JSON API. Preflights are answered by the cors middleware; a bare
	// OPTIONS without CORS headers still gets 204.
	app.Post("/scrape", rateLimiter.Middleware(), handlers.Scrape)
	app.Options("/scrape", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Get(proxyPath, handlers.ImageProxy)

	// Home form target.
	app.Get("/view", handlers.Open)

	// Card preview, mirrors the source URL structure.
	// Example: /acme/status/1765000000000000000
	app.Get("/:handle/status/:id", handlers.ViewPost)
}
