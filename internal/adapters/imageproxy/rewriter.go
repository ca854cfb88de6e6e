// Package imageproxy rewrites external media URLs to the same-origin proxy
// route and relays allow-listed images through it.
package imageproxy

import (
	"net/url"
	"strings"
)

// DefaultPath is the route the proxy handler is mounted on.
const DefaultPath = "/image-proxy"

// Rewriter turns absolute media URLs into same-origin proxy URLs.
type Rewriter struct {
	path string
}

// NewRewriter creates a Rewriter targeting path, or DefaultPath when empty.
func NewRewriter(path string) *Rewriter {
	if path == "" {
		path = DefaultPath
	}
	return &Rewriter{path: path}
}

// Rewrite returns the proxy URL for raw. Empty, relative and non-http
// values are returned unchanged.
func (r *Rewriter) Rewrite(raw string) string {
	if raw == "" || strings.HasPrefix(raw, "/") || !strings.HasPrefix(raw, "http") {
		return raw
	}
	return r.path + "?url=" + url.QueryEscape(raw)
}

// RewriteAll rewrites every URL in urls, dropping empty entries.
// The result is never nil.
func (r *Rewriter) RewriteAll(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		out = append(out, r.Rewrite(u))
	}
	return out
}
