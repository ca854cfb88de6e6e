package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"postcard/internal/domain"
)

// OEmbed is the subset of the oEmbed response used for posts.
type OEmbed struct {
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
	HTML       string `json:"html"`
}

// FromSyndication normalizes a decoded syndication JSON payload.
func FromSyndication(data map[string]any, handle string) domain.Candidate {
	tweet := firstObject(data["tweet"], field(data, "data", "tweet"), data)
	user := firstObject(data["user"], tweet["user"], field(data, "data", "user"))

	images := ExtractMedia(tweet)
	text := CleanText(ExtractText(tweet), len(images) > 0, MediaStubURLs(tweet))

	return domain.Candidate{
		Author:    ExtractAuthor(user, handle),
		Text:      text,
		Images:    images,
		Timestamp: ParseTimestamp(str(tweet["created_at"])),
	}
}

// FromEmbedHTML normalizes the markup of the embed page. The page carries
// no trustworthy display name or verification flag.
func FromEmbedHTML(page, handle string) (domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("parse embed html: %w", err)
	}

	body := doc.Find(`p[class*="Tweet-text"]`).First()
	if body.Length() == 0 {
		body = doc.Find("p").First()
	}

	var avatar string
	var photos []string
	doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if strings.Contains(src, "profile_images") {
			if avatar == "" {
				avatar = src
			}
			return
		}
		if m, ok := ClassifyMedia(src); ok && m.Kind == domain.MediaPhoto {
			photos = append(photos, src)
		}
	})
	images := SelectImages(photos)

	avatar = UpgradeAvatarURL(avatar)
	if avatar == "" {
		avatar = domain.FallbackAvatarURL(handle)
	}

	created, _ := doc.Find("time[datetime]").First().Attr("datetime")

	return domain.Candidate{
		Author: domain.Author{
			Name:      handle,
			Handle:    "@" + handle,
			AvatarURL: avatar,
		},
		Text:      CleanText(blockText(body), len(images) > 0, nil),
		Images:    images,
		Timestamp: ParseTimestamp(created),
	}, nil
}

// FromOEmbed normalizes an oEmbed response. It never yields images, and
// author_name is only trusted as a display name.
func FromOEmbed(o OEmbed, handle string) (domain.Candidate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(o.HTML))
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("parse oembed html: %w", err)
	}

	// The date is the last link of the blockquote.
	links := doc.Find("blockquote a")
	if links.Length() == 0 {
		links = doc.Find("a")
	}

	name := strings.TrimSpace(o.AuthorName)
	if name == "" {
		name = handle
	}

	return domain.Candidate{
		Author: domain.Author{
			Name:      name,
			Handle:    "@" + handle,
			AvatarURL: domain.FallbackAvatarURL(handle),
		},
		Text:      CleanText(blockText(doc.Find("p").First()), false, nil),
		Images:    []string{},
		Timestamp: ParseTimestamp(links.Last().Text()),
	}, nil
}

// blockText returns the decoded text of sel with <br> turned into newlines.
func blockText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	sel.Find("br").Each(func(_ int, br *goquery.Selection) {
		br.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: "\n"})
	})
	return sel.Text()
}
