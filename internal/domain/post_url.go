package domain

import (
	"regexp"
	"strings"
)

// postURLRegex matches Twitter/X post URLs and extracts handle and post ID.
// Accepts twitter.com and x.com, optionally prefixed by www. or mobile.
// The ID must end the path segment; anything after it (query, /photo/1,
// fragment) is ignored.
var postURLRegex = regexp.MustCompile(
	`(?i)^https?://(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/(\w+)/status/(\d+)(?:[/?#]|$)`,
)

// PostRef identifies a post by the handle and ID found in its URL.
type PostRef struct {
	Handle string
	ID     string
}

// CanonicalURL returns the twitter.com permalink for the post.
func (r PostRef) CanonicalURL() string {
	return "https://twitter.com/" + r.Handle + "/status/" + r.ID
}

// ParsePostURL extracts the handle and post ID from a Twitter/X URL.
// Returns ErrURLRequired for blank input and ErrInvalidURL for anything
// that is not a post link.
func ParsePostURL(raw string) (PostRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PostRef{}, ErrURLRequired
	}
	matches := postURLRegex.FindStringSubmatch(raw)
	if len(matches) < 3 {
		return PostRef{}, ErrInvalidURL
	}
	return PostRef{Handle: matches[1], ID: matches[2]}, nil
}
