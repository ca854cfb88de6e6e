package normalize

import (
	"regexp"
	"strings"

	"postcard/internal/domain"
)

var smallAvatarSuffix = regexp.MustCompile(`(?i)_(?:normal|bigger|mini)(\.(?:jpg|png|jpeg|webp))$`)

// UpgradeAvatarURL drops the query string, which often carries expiring
// tokens, and swaps small size suffixes for the 400x400 rendition.
func UpgradeAvatarURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	return smallAvatarSuffix.ReplaceAllString(raw, "_400x400${1}")
}

// ExtractAuthor builds the author from an embedded user object. The handle
// always comes from the requested URL; user may be nil.
func ExtractAuthor(user map[string]any, handle string) domain.Author {
	name := strings.TrimSpace(str(user["name"]))
	if name == "" {
		name = handle
	}

	avatar := UpgradeAvatarURL(firstString(user, "profile_image_url_https", "profile_image_url"))
	if avatar == "" {
		avatar = domain.FallbackAvatarURL(handle)
	}

	verified, _ := user["verified"].(bool)
	blue, _ := user["is_blue_verified"].(bool)

	return domain.Author{
		Name:      name,
		Handle:    "@" + handle,
		AvatarURL: avatar,
		Verified:  verified || blue,
	}
}
