package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

const maxShortlinkPasses = 10

var (
	trailingMediaLink = regexp.MustCompile(`(?i)(?:\s+|^)(?:https?://)?pic\.(?:twitter|x)\.com/[a-z0-9]+$`)
	trailingShortLink = regexp.MustCompile(`(?i)(?:\s+|^)(?:https?://)?t\.co/[a-z0-9]+$`)
	mediaPermalink    = regexp.MustCompile(`(?i)(?:twitter|x)\.com/.+/(?:photo|video)/\d+`)

	blanksBeforeNewline = regexp.MustCompile(`[ \t]+\n`)
	extraNewlines       = regexp.MustCompile(`\n{3,}`)
	repeatedBlanks      = regexp.MustCompile(`[ \t]{2,}`)
)

// StripTrailingShortlinks removes media and t.co shortlinks stacked at the
// end of text. Links followed by other words are left alone.
func StripTrailingShortlinks(text string) string {
	out := strings.TrimRightFunc(text, unicode.IsSpace)
	for i := 0; i < maxShortlinkPasses; i++ {
		next := trailingMediaLink.ReplaceAllString(out, "")
		next = trailingShortLink.ReplaceAllString(next, "")
		next = strings.TrimRightFunc(next, unicode.IsSpace)
		if next == out {
			break
		}
		out = next
	}
	return out
}

// MediaStubURLs returns the shortlinks of entities whose display or expanded
// form points at attached media. Ordinary outbound links are not returned.
func MediaStubURLs(tweet map[string]any) []string {
	var entities []map[string]any
	entities = append(entities, objects(field(tweet, "entities", "urls"))...)
	entities = append(entities, objects(field(tweet, "entities", "media"))...)
	entities = append(entities, objects(field(tweet, "extended_entities", "media"))...)

	var stubs []string
	seen := make(map[string]bool)
	for _, e := range entities {
		short := str(e["url"])
		if short == "" || seen[short] || !isMediaStub(str(e["display_url"]), str(e["expanded_url"])) {
			continue
		}
		seen[short] = true
		stubs = append(stubs, short)
	}
	return stubs
}

func isMediaStub(display, expanded string) bool {
	for _, s := range []string{display, expanded} {
		lower := strings.ToLower(s)
		if strings.Contains(lower, "pic.twitter.com") || strings.Contains(lower, "pic.x.com") {
			return true
		}
	}
	return mediaPermalink.MatchString(expanded)
}

// CleanText strips media shortlinks and collapses whitespace. Media stubs
// from the entity list are only removed when the post has images.
func CleanText(text string, hasImages bool, mediaStubs []string) string {
	if hasImages {
		for _, stub := range mediaStubs {
			re, err := regexp.Compile(regexp.QuoteMeta(stub) + `\b`)
			if err != nil {
				continue
			}
			text = re.ReplaceAllString(text, "")
		}
	}

	text = StripTrailingShortlinks(text)
	text = blanksBeforeNewline.ReplaceAllString(text, "\n")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	text = repeatedBlanks.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
