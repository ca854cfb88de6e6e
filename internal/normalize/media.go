package normalize

import (
	"net/url"
	"strings"

	"postcard/internal/domain"
)

const largeJPGRendition = "format=jpg&name=large"

// mediaURLKeys are the alternate names media objects use for their URL.
var mediaURLKeys = []string{"media_url_https", "media_url", "url", "mediaUrl", "src"}

// Paths under the CDN that never hold post content.
var rejectedMediaPaths = []string{"/profile_images/", "/card_img/", "/semantic_core_img/"}

var thumbnailMediaPaths = []string{"/ext_tw_video_thumb/", "/amplify_video_thumb/", "/tweet_video_thumb/"}

// ClassifyMedia accepts photo and video-thumbnail URLs served by the media
// CDN and rewrites them to request the large jpg rendition.
func ClassifyMedia(raw string) (domain.NormalizedMedia, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return domain.NormalizedMedia{}, false
	}

	host := strings.ToLower(u.Hostname())
	if host != "pbs.twimg.com" && !strings.HasSuffix(host, ".twimg.com") {
		return domain.NormalizedMedia{}, false
	}
	for _, p := range rejectedMediaPaths {
		if strings.Contains(u.Path, p) {
			return domain.NormalizedMedia{}, false
		}
	}

	var kind domain.MediaKind
	switch {
	case strings.Contains(u.Path, "/media/"):
		kind = domain.MediaPhoto
	case containsAny(u.Path, thumbnailMediaPaths):
		kind = domain.MediaThumbnail
	default:
		return domain.NormalizedMedia{}, false
	}

	return domain.NormalizedMedia{
		URL:  u.Scheme + "://" + u.Host + u.Path + "?" + largeJPGRendition,
		Kind: kind,
	}, true
}

// CollectMediaCandidates gathers raw media URLs from every known media
// field of tweet, in field order.
func CollectMediaCandidates(tweet map[string]any) []string {
	var out []string
	add := func(s string) {
		if s != "" {
			out = append(out, s)
		}
	}

	for _, p := range objects(tweet["photos"]) {
		add(str(p["url"]))
	}
	for _, d := range objects(tweet["mediaDetails"]) {
		add(str(d["media_url_https"]))
	}
	for _, list := range []any{
		field(tweet, "entities", "media"),
		field(tweet, "extended_entities", "media"),
		tweet["media"],
		tweet["media_details"],
	} {
		for _, m := range objects(list) {
			add(firstString(m, mediaURLKeys...))
		}
	}
	add(str(field(tweet, "video", "poster")))
	return out
}

// SelectImages classifies candidates, drops thumbnails when a photo exists,
// removes duplicates keeping first-seen order and caps the result.
func SelectImages(candidates []string) []string {
	var media []domain.NormalizedMedia
	hasPhoto := false
	for _, c := range candidates {
		m, ok := ClassifyMedia(c)
		if !ok {
			continue
		}
		hasPhoto = hasPhoto || m.Kind == domain.MediaPhoto
		media = append(media, m)
	}

	images := make([]string, 0, domain.MaxImages)
	seen := make(map[string]bool)
	for _, m := range media {
		if hasPhoto && m.Kind == domain.MediaThumbnail {
			continue
		}
		if seen[m.URL] {
			continue
		}
		seen[m.URL] = true
		images = append(images, m.URL)
		if len(images) == domain.MaxImages {
			break
		}
	}
	return images
}

// ExtractMedia returns the post images found in tweet.
func ExtractMedia(tweet map[string]any) []string {
	return SelectImages(CollectMediaCandidates(tweet))
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
