package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"postcard/internal/domain"
	"postcard/test/fixtures"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return data
}

func TestFromSyndication_PhotoPost_ExtractsAllFields(t *testing.T) {
	// Arrange
	data := decode(t, fixtures.SyndicationPhotoPost())

	// Act
	c := FromSyndication(data, "acme")

	// Assert
	wantText := "Shipping the new card renderer today.\n\nIt exports straight to PNG."
	if c.Text != wantText {
		t.Errorf("Text: got %q, want %q", c.Text, wantText)
	}
	wantImages := []string{
		"https://pbs.twimg.com/media/photo1.jpg?format=jpg&name=large",
		"https://pbs.twimg.com/media/photo2.png?format=jpg&name=large",
	}
	if strings.Join(c.Images, ",") != strings.Join(wantImages, ",") {
		t.Errorf("Images: got %v, want %v", c.Images, wantImages)
	}
	if c.Author.Name != "Acme Corp" {
		t.Errorf("Name: got %q", c.Author.Name)
	}
	if c.Author.Handle != "@acme" {
		t.Errorf("Handle: got %q", c.Author.Handle)
	}
	if c.Author.AvatarURL != "https://pbs.twimg.com/profile_images/1/avatar_400x400.jpg" {
		t.Errorf("AvatarURL: got %q", c.Author.AvatarURL)
	}
	if !c.Author.Verified {
		t.Error("blue verification should mark the author verified")
	}
	want := time.Date(2024, 3, 5, 17, 4, 11, 0, time.UTC)
	if !c.Timestamp.Equal(want) {
		t.Errorf("Timestamp: got %v, want %v", c.Timestamp, want)
	}
}

func TestFromSyndication_VideoPost_UsesPosterThumbnail(t *testing.T) {
	// Arrange
	data := decode(t, fixtures.SyndicationVideoPost())

	// Act
	c := FromSyndication(data, "launch")

	// Assert
	if len(c.Images) != 1 || c.Images[0] != "https://pbs.twimg.com/ext_tw_video_thumb/99/pu/img/poster.jpg?format=jpg&name=large" {
		t.Errorf("Images: got %v", c.Images)
	}
	if c.Text != "Watch the launch" {
		t.Errorf("Text: got %q", c.Text)
	}
	if !c.Author.Verified {
		t.Error("expected verified author")
	}
	if c.Author.AvatarURL != "https://pbs.twimg.com/profile_images/2/team_400x400.png" {
		t.Errorf("AvatarURL: got %q", c.Author.AvatarURL)
	}
	if c.Timestamp.IsZero() {
		t.Error("expected legacy created_at to parse")
	}
}

func TestFromSyndication_ScreenNameNeverBecomesHandle(t *testing.T) {
	// Arrange
	data := map[string]any{
		"text": "hello",
		"user": map[string]any{"name": "Someone Else", "screen_name": "impostor"},
	}

	// Act
	c := FromSyndication(data, "acme")

	// Assert
	if c.Author.Handle != "@acme" {
		t.Errorf("Handle: got %q, want @acme", c.Author.Handle)
	}
}

func TestFromSyndication_EmptyPayload_NotUsable(t *testing.T) {
	// Arrange
	data := decode(t, fixtures.SyndicationEmpty())

	// Act
	c := FromSyndication(data, "acme")

	// Assert
	if c.Usable() {
		t.Errorf("expected unusable candidate, got %+v", c)
	}
	if c.Author.AvatarURL != "https://unavatar.io/twitter/acme" {
		t.Errorf("AvatarURL: got %q", c.Author.AvatarURL)
	}
	if c.Author.Name != "acme" {
		t.Errorf("Name: got %q", c.Author.Name)
	}
}

func TestFromSyndication_TextWithPicLink(t *testing.T) {
	// Arrange
	data := map[string]any{
		"text":   "Hello pic.twitter.com/abc",
		"photos": []any{map[string]any{"url": "https://pbs.twimg.com/media/img1.jpg"}},
	}

	// Act
	c := FromSyndication(data, "acme")

	// Assert
	if c.Text != "Hello" {
		t.Errorf("Text: got %q, want Hello", c.Text)
	}
	if len(c.Images) != 1 || c.Images[0] != "https://pbs.twimg.com/media/img1.jpg?format=jpg&name=large" {
		t.Errorf("Images: got %v", c.Images)
	}
}

func TestFromSyndication_IsDeterministic(t *testing.T) {
	// Arrange
	raw := fixtures.SyndicationPhotoPost()

	// Act
	first := FromSyndication(decode(t, raw), "acme")
	second := FromSyndication(decode(t, raw), "acme")

	// Assert
	if first.Text != second.Text || strings.Join(first.Images, ",") != strings.Join(second.Images, ",") || first.Author != second.Author {
		t.Errorf("normalization is not deterministic: %+v vs %+v", first, second)
	}
}

func TestFromEmbedHTML_ExtractsTextImagesAndAvatar(t *testing.T) {
	// Act
	c, err := FromEmbedHTML(fixtures.EmbedPage(), "me")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Text != "First line & more\nSecond line" {
		t.Errorf("Text: got %q", c.Text)
	}
	if len(c.Images) != 1 || c.Images[0] != "https://pbs.twimg.com/media/embed1.jpg?format=jpg&name=large" {
		t.Errorf("Images: got %v", c.Images)
	}
	if c.Author.AvatarURL != "https://pbs.twimg.com/profile_images/3/me_400x400.webp" {
		t.Errorf("AvatarURL: got %q", c.Author.AvatarURL)
	}
	if c.Author.Name != "me" || c.Author.Handle != "@me" || c.Author.Verified {
		t.Errorf("Author: got %+v", c.Author)
	}
	if c.Timestamp.IsZero() {
		t.Error("expected time[datetime] to parse")
	}
}

func TestFromEmbedHTML_EmptyPage_NotUsable(t *testing.T) {
	// Act
	c, err := FromEmbedHTML(fixtures.EmbedPageEmpty(), "me")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Usable() {
		t.Errorf("expected unusable candidate, got %+v", c)
	}
}

func TestFromOEmbed_ExtractsTextAndDate(t *testing.T) {
	// Arrange
	var o OEmbed
	if err := json.Unmarshal([]byte(fixtures.OEmbedResponse()), &o); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	// Act
	c, err := FromOEmbed(o, "acme")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Text != "Old but gold\n\nstill works" {
		t.Errorf("Text: got %q", c.Text)
	}
	if c.Author.Name != "Acme 🚀 Corp" {
		t.Errorf("Name: got %q", c.Author.Name)
	}
	if c.Author.Handle != "@acme" {
		t.Errorf("Handle: got %q", c.Author.Handle)
	}
	if len(c.Images) != 0 {
		t.Errorf("oEmbed never yields images, got %v", c.Images)
	}
	want := time.Date(2023, 2, 24, 0, 0, 0, 0, time.UTC)
	if !c.Timestamp.Equal(want) {
		t.Errorf("Timestamp: got %v, want %v", c.Timestamp, want)
	}
}

func TestExtractText_PrefersLongestCandidate(t *testing.T) {
	tests := []struct {
		name  string
		tweet map[string]any
		want  string
	}{
		{
			name: "note text wins over truncated text",
			tweet: map[string]any{
				"text":       "short",
				"note_tweet": map[string]any{"note_tweet_results": map[string]any{"result": map[string]any{"text": "the long form body"}}},
			},
			want: "the long form body",
		},
		{
			name:  "legacy full_text",
			tweet: map[string]any{"legacy": map[string]any{"full_text": "legacy body"}},
			want:  "legacy body",
		},
		{
			name:  "tie keeps earlier field",
			tweet: map[string]any{"full_text": "aaaa", "text": "bbbb"},
			want:  "aaaa",
		},
		{
			name:  "falls back to deep search",
			tweet: map[string]any{"quoted": map[string]any{"rich_text": "found deep"}},
			want:  "found deep",
		},
		{
			name: "truncated text replaced by longer deep result",
			tweet: map[string]any{
				"text":    "A long thought that goes…",
				"payload": map[string]any{"body_text": "A long thought that goes on and on"},
			},
			want: "A long thought that goes on and on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.tweet); got != tt.want {
				t.Errorf("ExtractText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDeepSearchText_SkipsURLsAndHTML(t *testing.T) {
	// Arrange
	tree := map[string]any{
		"display_text":      "https://example.com/a/very/long/link/that/should/not/win",
		"html_text":         "<p>markup that is very long and should never be picked</p>",
		"alt_text":          "plain words",
		"display_url_text":  "example.com/a/very/long/display/path/without/any/scheme",
		"expanded_url_text": "example.com/another/long/expanded/path/without/scheme",
	}

	// Act
	got := DeepSearchText(tree)

	// Assert
	if got != "plain words" {
		t.Errorf("DeepSearchText() = %q, want %q", got, "plain words")
	}
}

func TestDeepSearchText_SelfReferenceTerminates(t *testing.T) {
	// Arrange
	tree := map[string]any{"text": "loop safe"}
	tree["self"] = tree
	list := []any{tree}
	tree["list"] = list

	// Act
	got := DeepSearchText(tree)

	// Assert
	if got != "loop safe" {
		t.Errorf("DeepSearchText() = %q", got)
	}
}

func TestDeepSearchText_RespectsDepthLimit(t *testing.T) {
	// Arrange
	var node any = map[string]any{"text": "too deep"}
	for i := 0; i < deepSearchMaxDepth+2; i++ {
		node = map[string]any{"child": node}
	}

	// Act
	got := DeepSearchText(node)

	// Assert
	if got != "" {
		t.Errorf("DeepSearchText() = %q, want empty", got)
	}
}

func TestStripTrailingShortlinks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single media link", "Hello pic.twitter.com/abc", "Hello"},
		{"stacked links", "Hello https://t.co/a1 pic.twitter.com/b2 https://t.co/c3  ", "Hello"},
		{"pic.x.com host", "Look pic.x.com/Zz9", "Look"},
		{"mid sentence link kept", "See https://t.co/abc for details", "See https://t.co/abc for details"},
		{"mid sentence media link kept", "Before pic.twitter.com/abc after", "Before pic.twitter.com/abc after"},
		{"only a link", "https://t.co/abc", ""},
		{"no link", "Just words", "Just words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTrailingShortlinks(tt.in); got != tt.want {
				t.Errorf("StripTrailingShortlinks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanText_TrailingOutboundLinkStripped(t *testing.T) {
	// The entity marks the link as an ordinary outbound link, but trailing
	// shortlinks are stripped regardless of entity metadata.
	got := CleanText("Check this thread https://t.co/abc123", false, nil)

	if got != "Check this thread" {
		t.Errorf("CleanText() = %q", got)
	}
}

func TestCleanText_MediaStubsOnlyRemovedWithImages(t *testing.T) {
	text := "Look https://t.co/m1 at this"
	stubs := []string{"https://t.co/m1"}

	if got := CleanText(text, true, stubs); got != "Look at this" {
		t.Errorf("with images: got %q", got)
	}
	if got := CleanText(text, false, stubs); got != text {
		t.Errorf("without images: got %q", got)
	}
}

func TestCleanText_CollapsesWhitespace(t *testing.T) {
	got := CleanText("  one   two \t\nthree\n\n\n\nfour  ", false, nil)

	if got != "one two\nthree\n\nfour" {
		t.Errorf("CleanText() = %q", got)
	}
}

func TestMediaStubURLs_IgnoresOutboundLinks(t *testing.T) {
	// Arrange
	tweet := map[string]any{
		"entities": map[string]any{
			"urls": []any{
				map[string]any{"url": "https://t.co/out", "display_url": "example.com/post", "expanded_url": "https://example.com/post"},
				map[string]any{"url": "https://t.co/pic", "display_url": "pic.twitter.com/pic", "expanded_url": "https://twitter.com/a/status/1/photo/1"},
			},
		},
		"extended_entities": map[string]any{
			"media": []any{
				map[string]any{"url": "https://t.co/vid", "expanded_url": "https://x.com/a/status/1/video/1"},
			},
		},
	}

	// Act
	got := MediaStubURLs(tweet)

	// Assert
	if strings.Join(got, ",") != "https://t.co/pic,https://t.co/vid" {
		t.Errorf("MediaStubURLs() = %v", got)
	}
}

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantOK   bool
		wantKind domain.MediaKind
		wantURL  string
	}{
		{"photo", "https://pbs.twimg.com/media/A.jpg?name=small", true, domain.MediaPhoto, "https://pbs.twimg.com/media/A.jpg?format=jpg&name=large"},
		{"amplify thumbnail", "https://pbs.twimg.com/amplify_video_thumb/1/img/B.jpg", true, domain.MediaThumbnail, "https://pbs.twimg.com/amplify_video_thumb/1/img/B.jpg?format=jpg&name=large"},
		{"gif thumbnail", "https://pbs.twimg.com/tweet_video_thumb/C.jpg", true, domain.MediaThumbnail, "https://pbs.twimg.com/tweet_video_thumb/C.jpg?format=jpg&name=large"},
		{"profile image", "https://pbs.twimg.com/profile_images/1/a.jpg", false, "", ""},
		{"card image", "https://pbs.twimg.com/card_img/1/a.jpg", false, "", ""},
		{"semantic preview", "https://pbs.twimg.com/semantic_core_img/1/a.jpg", false, "", ""},
		{"foreign host", "https://example.com/media/a.jpg", false, "", ""},
		{"lookalike host", "https://pbs.twimg.com.evil.io/media/a.jpg", false, "", ""},
		{"unknown path", "https://abs.twimg.com/emoji/a.png", false, "", ""},
		{"not a url", "media/a.jpg", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := ClassifyMedia(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ClassifyMedia(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if m.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", m.Kind, tt.wantKind)
			}
			if m.URL != tt.wantURL {
				t.Errorf("URL = %q, want %q", m.URL, tt.wantURL)
			}
		})
	}
}

func TestSelectImages_DedupesAndKeepsOrder(t *testing.T) {
	// Arrange
	in := []string{
		"https://pbs.twimg.com/media/b.jpg",
		"https://pbs.twimg.com/media/a.jpg",
		"https://pbs.twimg.com/media/b.jpg?name=orig",
		"https://pbs.twimg.com/media/a.jpg",
	}

	// Act
	got := SelectImages(in)

	// Assert
	want := "https://pbs.twimg.com/media/b.jpg?format=jpg&name=large,https://pbs.twimg.com/media/a.jpg?format=jpg&name=large"
	if strings.Join(got, ",") != want {
		t.Errorf("SelectImages() = %v", got)
	}
}

func TestSelectImages_PhotosDropThumbnails(t *testing.T) {
	// Arrange
	in := []string{
		"https://pbs.twimg.com/ext_tw_video_thumb/1/pu/img/t.jpg",
		"https://pbs.twimg.com/media/p.jpg",
	}

	// Act
	got := SelectImages(in)

	// Assert
	if len(got) != 1 || !strings.Contains(got[0], "/media/p.jpg") {
		t.Errorf("SelectImages() = %v", got)
	}
}

func TestSelectImages_CapsAtFour(t *testing.T) {
	// Arrange
	var in []string
	for _, c := range "abcdef" {
		in = append(in, "https://pbs.twimg.com/media/"+string(c)+".jpg")
	}

	// Act
	got := SelectImages(in)

	// Assert
	if len(got) != domain.MaxImages {
		t.Errorf("len = %d, want %d", len(got), domain.MaxImages)
	}
}

func TestCollectMediaCandidates_ReadsAlternateFields(t *testing.T) {
	// Arrange
	tweet := map[string]any{
		"media":         []any{map[string]any{"mediaUrl": "https://pbs.twimg.com/media/m1.jpg"}},
		"media_details": []any{map[string]any{"src": "https://pbs.twimg.com/media/m2.jpg"}},
		"entities":      map[string]any{"media": []any{map[string]any{"media_url": "http://pbs.twimg.com/media/m3.jpg"}}},
	}

	// Act
	got := CollectMediaCandidates(tweet)

	// Assert
	if len(got) != 3 {
		t.Fatalf("CollectMediaCandidates() = %v", got)
	}
	if got[0] != "http://pbs.twimg.com/media/m3.jpg" {
		t.Errorf("entities.media should be read first, got %v", got)
	}
}

func TestUpgradeAvatarURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://pbs.twimg.com/profile_images/1/a_normal.jpg", "https://pbs.twimg.com/profile_images/1/a_400x400.jpg"},
		{"https://pbs.twimg.com/profile_images/1/a_bigger.PNG?x=1", "https://pbs.twimg.com/profile_images/1/a_400x400.PNG"},
		{"https://pbs.twimg.com/profile_images/1/a_mini.jpeg", "https://pbs.twimg.com/profile_images/1/a_400x400.jpeg"},
		{"https://pbs.twimg.com/profile_images/1/a.jpg", "https://pbs.twimg.com/profile_images/1/a.jpg"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := UpgradeAvatarURL(tt.in); got != tt.want {
			t.Errorf("UpgradeAvatarURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-02-24T22:02:27.000Z", time.Date(2023, 2, 24, 22, 2, 27, 0, time.UTC)},
		{"Wed Oct 10 20:19:24 +0000 2018", time.Date(2018, 10, 10, 20, 19, 24, 0, time.UTC)},
		{"February 24, 2023", time.Date(2023, 2, 24, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Time{}},
		{"", time.Time{}},
	}

	for _, tt := range tests {
		if got := ParseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
