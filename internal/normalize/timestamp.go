package normalize

import (
	"strings"
	"time"
)

// timestampLayouts covers the ISO form of the JSON feed, the legacy
// "Wed Oct 10 20:19:24 +0000 2018" form and the oEmbed date line.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RubyDate,
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseTimestamp parses a source creation time. It returns the zero time
// when s is empty or in no known layout.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
