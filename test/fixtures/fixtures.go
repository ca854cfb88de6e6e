// Package fixtures provides canned upstream payloads for testing the sources
// and the normalizer.
package fixtures

// SyndicationPhotoPost is a syndication payload for a post with two photos,
// a note text and a trailing media shortlink.
func SyndicationPhotoPost() string {
	return `{
  "__typename": "Tweet",
  "created_at": "2024-03-05T17:04:11.000Z",
  "id_str": "1765000000000000000",
  "text": "Shipping the new card renderer today https://t.co/media1",
  "note_tweet": {
    "text": "Shipping the new card renderer today.\n\nIt exports straight to PNG. https://t.co/media1"
  },
  "entities": {
    "urls": [
      {"url": "https://t.co/media1", "display_url": "pic.twitter.com/media1", "expanded_url": "https://twitter.com/acme/status/1765000000000000000/photo/1"}
    ]
  },
  "user": {
    "name": "Acme Corp",
    "screen_name": "acme",
    "profile_image_url_https": "https://pbs.twimg.com/profile_images/1/avatar_normal.jpg?session=abc",
    "verified": false,
    "is_blue_verified": true
  },
  "photos": [
    {"url": "https://pbs.twimg.com/media/photo1.jpg", "width": 1200, "height": 800},
    {"url": "https://pbs.twimg.com/media/photo2.png", "width": 1200, "height": 800}
  ],
  "mediaDetails": [
    {"media_url_https": "https://pbs.twimg.com/media/photo1.jpg", "type": "photo"},
    {"media_url_https": "https://pbs.twimg.com/media/photo2.png", "type": "photo"}
  ]
}`
}

// SyndicationVideoPost is a syndication payload whose only media is a video
// poster, nested under a "tweet" envelope.
func SyndicationVideoPost() string {
	return `{
  "tweet": {
    "created_at": "Wed Oct 10 20:19:24 +0000 2018",
    "full_text": "Watch the launch https://t.co/vid",
    "video": {
      "poster": "https://pbs.twimg.com/ext_tw_video_thumb/99/pu/img/poster.jpg"
    },
    "user": {
      "name": "Launch Team",
      "profile_image_url_https": "https://pbs.twimg.com/profile_images/2/team_bigger.png",
      "verified": true
    }
  }
}`
}

// SyndicationEmpty is what the feed returns when the token is rejected.
func SyndicationEmpty() string {
	return `{}`
}

// EmbedPage is the HTML of the legacy embed endpoint.
func EmbedPage() string {
	return `
<!DOCTYPE html>
<html>
<head><title>Embedded post</title></head>
<body>
<div class="EmbeddedTweet">
    <img class="Avatar" src="https://pbs.twimg.com/profile_images/3/me_mini.webp" alt="">
    <p class="Tweet-text e-entry-title" lang="en">First line &amp; more<br>Second line <a href="https://t.co/pic1">pic.twitter.com/pic1</a></p>
    <img src="https://pbs.twimg.com/media/embed1.jpg" alt="">
    <img src="https://pbs.twimg.com/media/embed1.jpg" alt="">
    <img src="https://pbs.twimg.com/card_img/5/card.jpg" alt="">
    <img src="https://abs.twimg.com/emoji/v2/72x72/1f600.png" alt="">
    <time class="dt-updated" datetime="2023-02-24T22:02:27+00:00">10:02 PM - Feb 24, 2023</time>
</div>
</body>
</html>
`
}

// EmbedPageEmpty is an embed page with no post content.
func EmbedPageEmpty() string {
	return `<!DOCTYPE html><html><body><div class="EmbeddedTweet"></div></body></html>`
}

// OEmbedResponse is a publish oEmbed response for a text-only post.
func OEmbedResponse() string {
	return `{
  "url": "https://twitter.com/acme/status/42",
  "author_name": "Acme 🚀 Corp",
  "author_url": "https://twitter.com/acme",
  "html": "<blockquote class=\"twitter-tweet\"><p lang=\"en\" dir=\"ltr\">Old but gold<br><br>still works <a href=\"https://t.co/x1\">pic.twitter.com/x1</a></p>&mdash; Acme 🚀 Corp (@acme) <a href=\"https://twitter.com/acme/status/42\">February 24, 2023</a></blockquote>\n",
  "width": 550,
  "type": "rich",
  "provider_name": "Twitter",
  "version": "1.0"
}`
}
