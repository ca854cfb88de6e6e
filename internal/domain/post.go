package domain

import (
	"strings"
	"time"
)

// MaxImages is the number of images a post card can display.
const MaxImages = 4

// PostRecord is the canonical, renderer-facing representation of a post.
type PostRecord struct {
	Author    Author  `json:"author" yaml:"author"`
	Content   Content `json:"content" yaml:"content"`
	Timestamp string  `json:"timestamp" yaml:"timestamp"`
}

// Author holds the post author's identity.
// Handle is always "@" followed by the handle taken from the requested URL.
type Author struct {
	Name      string `json:"name" yaml:"name"`
	Handle    string `json:"handle" yaml:"handle"`
	AvatarURL string `json:"avatar" yaml:"avatar"`
	Verified  bool   `json:"verified" yaml:"verified"`
}

// Content holds the cleaned text and the proxied image URLs.
type Content struct {
	Text   string   `json:"text" yaml:"text"`
	Images []string `json:"images" yaml:"images"`
}

// Candidate is what a single source yields after normalization.
// URLs are still the raw upstream URLs; Timestamp is zero when the source
// did not carry a parsable creation time.
type Candidate struct {
	Author    Author
	Text      string
	Images    []string
	Timestamp time.Time
}

// Usable reports whether the candidate carries anything worth rendering.
func (c Candidate) Usable() bool {
	return c.Text != "" || len(c.Images) > 0
}

// MediaKind classifies a media URL.
type MediaKind string

const (
	MediaPhoto     MediaKind = "photo"
	MediaThumbnail MediaKind = "thumbnail"
)

// NormalizedMedia is a classified media URL requesting the large jpg rendition.
type NormalizedMedia struct {
	URL  string
	Kind MediaKind
}

// FormatTimestamp renders t as an ISO-8601 UTC string with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FallbackAvatarURL returns the avatar-by-handle URL used when a source
// carries no avatar.
func FallbackAvatarURL(handle string) string {
	return "https://unavatar.io/twitter/" + strings.TrimPrefix(handle, "@")
}
