package web

import (
	"context"
	"errors"
	"strings"
	"time"

	"postcard/internal/adapters/imageproxy"
	"postcard/internal/domain"
	"postcard/pkg/log"
	"postcard/templates/pages"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Scraper resolves a post URL or demo keyword.
type Scraper interface {
	Execute(ctx context.Context, input string) (*domain.PostRecord, error)
}

// ImageFetcher relays an allow-listed image.
type ImageFetcher interface {
	Fetch(ctx context.Context, target string) (*imageproxy.Image, error)
}

// ProxyMetrics counts image proxy responses.
type ProxyMetrics interface {
	ProxyRequest(status int)
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type scrapeRequest struct {
	URL string `json:"url" form:"url"`
}

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	scraper        Scraper
	images         ImageFetcher
	metrics        ProxyMetrics
	requestTimeout time.Duration
}

// NewHandlers creates a new Handlers instance. A nil metrics recorder is
// replaced by a no-op.
func NewHandlers(scraper Scraper, images ImageFetcher, metrics ProxyMetrics, requestTimeout time.Duration) *Handlers {
	if metrics == nil {
		metrics = noopProxyMetrics{}
	}
	if requestTimeout <= 0 {
		requestTimeout = 28 * time.Second
	}
	return &Handlers{
		scraper:        scraper,
		images:         images,
		metrics:        metrics,
		requestTimeout: requestTimeout,
	}
}

// render is a helper to render templ components.
func render(c *fiber.Ctx, status int, component templ.Component) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))(c)
}

// Scrape resolves the posted URL into a PostRecord. The URL is read from a
// JSON body, falling back to a form field.
func (h *Handlers) Scrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		req.URL = c.FormValue("url")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), h.requestTimeout)
	defer cancel()

	record, err := h.scraper.Execute(ctx, req.URL)
	if err != nil {
		status, title := statusFor(err)
		logFailure(ctx, status, "scrape failed", "input", req.URL, "error", err)
		return c.Status(status).JSON(ErrorResponse{Error: title, Message: friendlyError(err)})
	}

	return c.JSON(record)
}

// ImageProxy relays an allow-listed image with long-lived cache headers.
func (h *Handlers) ImageProxy(c *fiber.Ctx) error {
	target := c.Query("url")

	img, err := h.images.Fetch(c.UserContext(), target)
	if err != nil {
		status, title := proxyStatusFor(err)
		h.metrics.ProxyRequest(status)
		logFailure(c.UserContext(), status, "image proxy failed", "target", target, "error", err)
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		return c.Status(status).JSON(ErrorResponse{Error: title})
	}

	h.metrics.ProxyRequest(fiber.StatusOK)
	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, imageproxy.CacheControl)
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	return c.Send(img.Body)
}

// Home renders the landing page with URL input.
func (h *Handlers) Home(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, pages.Home(domain.DemoKeywords()))
}

// Open handles the home form. Post links redirect to their card route so
// the address bar holds a shareable URL; anything else (demo keywords,
// typos) is resolved in place and rendered as a card or an error page.
func (h *Handlers) Open(c *fiber.Ctx) error {
	input := strings.TrimSpace(c.Query("url"))
	if ref, err := domain.ParsePostURL(input); err == nil {
		return c.Redirect("/"+ref.Handle+"/status/"+ref.ID, fiber.StatusSeeOther)
	}
	return h.renderPost(c, input)
}

// ViewPost renders a card preview by handle and ID (mirrors the source URL
// structure), e.g. /acme/status/42.
func (h *Handlers) ViewPost(c *fiber.Ctx) error {
	return h.renderPost(c, "https://x.com/"+c.Params("handle")+"/status/"+c.Params("id"))
}

func (h *Handlers) renderPost(c *fiber.Ctx, input string) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.requestTimeout)
	defer cancel()

	record, err := h.scraper.Execute(ctx, input)
	if err != nil {
		status, title := statusFor(err)
		logFailure(ctx, status, "card preview failed", "input", input, "error", err)
		return render(c, status, pages.Error(title, friendlyError(err)))
	}

	return render(c, fiber.StatusOK, pages.Post(record))
}

// Healthz reports liveness.
func (h *Handlers) Healthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ErrorHandler answers unhandled errors and recovered panics. Fiber errors
// such as 404 keep their status; anything else is a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
	}
	log.GlobalErrorCtx(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "Load failed",
		Message: friendlyError(err),
	})
}

// statusFor maps a scrape error to an HTTP status and short title.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrURLRequired):
		return fiber.StatusBadRequest, "URL required"
	case errors.Is(err, domain.ErrInvalidURL):
		return fiber.StatusBadRequest, "Invalid URL"
	case errors.Is(err, domain.ErrPostUnavailable):
		return fiber.StatusServiceUnavailable, "Post unavailable"
	default:
		return fiber.StatusInternalServerError, "Load failed"
	}
}

func proxyStatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrProxyURLInvalid):
		return fiber.StatusBadRequest, "Invalid image URL"
	case errors.Is(err, domain.ErrProxyHostNotAllowed):
		return fiber.StatusForbidden, "Host not allowed"
	default:
		return fiber.StatusBadGateway, "Image fetch failed"
	}
}

// friendlyError returns a neutral, non-blaming error message.
func friendlyError(err error) string {
	keywords := strings.Join(domain.DemoKeywords(), ", ")
	switch {
	case errors.Is(err, domain.ErrURLRequired):
		return "Paste a post link from x.com or twitter.com, or try a demo keyword: " + keywords + "."
	case errors.Is(err, domain.ErrInvalidURL):
		return "That doesn't look like a post URL. Try a link like https://x.com/user/status/123, or a demo keyword: " + keywords + "."
	case errors.Is(err, domain.ErrPostUnavailable):
		return "This post couldn't be loaded. It might be private, deleted or temporarily unavailable. You can still try a demo keyword: " + keywords + "."
	default:
		return "Unable to load this post right now. Please try again in a moment."
	}
}

func logFailure(ctx context.Context, status int, msg string, kv ...any) {
	if status >= fiber.StatusInternalServerError {
		log.GlobalErrorCtx(ctx, msg, kv...)
		return
	}
	log.GlobalWarnCtx(ctx, msg, kv...)
}

type noopProxyMetrics struct{}

func (noopProxyMetrics) ProxyRequest(int) {}
