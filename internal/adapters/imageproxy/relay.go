package imageproxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"postcard/internal/adapters/upstream"
	"postcard/internal/domain"
)

// DefaultAllowedHosts lists the media hosts the proxy relays. Entries
// starting with "." match any subdomain.
var DefaultAllowedHosts = []string{"pbs.twimg.com", "video.twimg.com", ".twimg.com", "unavatar.io"}

// CacheControl is sent with every relayed image.
const CacheControl = "public, max-age=86400, s-maxage=86400, stale-while-revalidate=604800"

const (
	defaultTimeout  = 12 * time.Second
	defaultMaxBytes = 15 << 20
	maxRedirects    = 5
)

// Image is a relayed upstream image.
type Image struct {
	Body        []byte
	ContentType string
}

// Config configures a Relay.
type Config struct {
	AllowedHosts []string
	Timeout      time.Duration
	MaxBytes     int64
	UserAgent    string
	Referer      string
}

// Relay fetches allow-listed images over https.
type Relay struct {
	client    *http.Client
	allowed   []string
	maxBytes  int64
	userAgent string
	referer   string
}

// NewRelay creates a Relay. Zero values fall back to defaults.
func NewRelay(cfg Config) *Relay {
	if len(cfg.AllowedHosts) == 0 {
		cfg.AllowedHosts = DefaultAllowedHosts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Referer == "" {
		cfg.Referer = upstream.DefaultReferer
	}
	allowed := make([]string, 0, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed = append(allowed, h)
		}
	}
	r := &Relay{
		client:    &http.Client{Timeout: cfg.Timeout},
		allowed:   allowed,
		maxBytes:  cfg.MaxBytes,
		userAgent: cfg.UserAgent,
		referer:   cfg.Referer,
	}
	r.client.CheckRedirect = r.checkRedirect
	return r
}

// checkRedirect applies the scheme and host checks to every hop, so an
// allowed host cannot bounce the relay elsewhere.
func (r *Relay) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: too many redirects", domain.ErrUpstreamUnavailable)
	}
	_, err := r.Validate(req.URL.String())
	return err
}

// Validate parses target and checks the scheme and host.
func (r *Relay) Validate(target string) (*url.URL, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: missing url", domain.ErrProxyURLInvalid)
	}
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrProxyURLInvalid, target)
	}
	if u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", domain.ErrProxyURLInvalid, u.Scheme)
	}
	if !HostAllowed(u.Hostname(), r.allowed) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProxyHostNotAllowed, u.Hostname())
	}
	return u, nil
}

// Fetch validates target and downloads it.
func (r *Relay) Fetch(ctx context.Context, target string) (*Image, error) {
	u, err := r.Validate(target)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	req.Header.Set("Referer", r.referer)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		// A rejected redirect is an upstream fault, not a bad client URL.
		if errors.Is(err, domain.ErrProxyURLInvalid) || errors.Is(err, domain.ErrProxyHostNotAllowed) {
			return nil, fmt.Errorf("%w: redirect rejected: %v", domain.ErrUpstreamUnavailable, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || strings.HasPrefix(contentType, "application/octet-stream") {
		contentType = GuessContentType(resp.Request.URL)
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, fmt.Errorf("%w: content type %q is not an image", domain.ErrUpstreamUnavailable, contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	if int64(len(body)) > r.maxBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrUpstreamUnavailable, r.maxBytes)
	}
	return &Image{Body: body, ContentType: contentType}, nil
}

// HostAllowed reports whether host matches an allow-list entry exactly or,
// for entries starting with ".", as a subdomain.
func HostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, a := range allowed {
		if strings.HasPrefix(a, ".") {
			if strings.HasSuffix(host, a) {
				return true
			}
			continue
		}
		if host == a {
			return true
		}
	}
	return false
}

// GuessContentType infers an image type from the path extension, or from
// the "format" query parameter the media CDN uses for extensionless paths.
func GuessContentType(u *url.URL) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(u.Path)), ".")
	if ext == "" {
		ext = strings.ToLower(u.Query().Get("format"))
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
