package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"postcard/internal/domain"
	"postcard/internal/normalize"
)

// DefaultOEmbedURL is the publish endpoint serving oEmbed for posts.
const DefaultOEmbedURL = "https://publish.twitter.com"

// OEmbed loads a post from the oEmbed endpoint. It is the lowest fidelity
// source: text and date only.
type OEmbed struct {
	client  *Client
	baseURL string
}

// NewOEmbed creates the oEmbed source.
func NewOEmbed(client *Client, baseURL string) *OEmbed {
	if baseURL == "" {
		baseURL = DefaultOEmbedURL
	}
	return &OEmbed{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name identifies the source in logs and metrics.
func (o *OEmbed) Name() string { return "oembed" }

// Attempt fetches the oEmbed document for the canonical post URL.
func (o *OEmbed) Attempt(ctx context.Context, ref domain.PostRef) (domain.Candidate, error) {
	q := url.Values{}
	q.Set("omit_script", "1")
	q.Set("url", ref.CanonicalURL())

	body, err := o.client.Get(ctx, o.baseURL+"/oembed?"+q.Encode(), http.Header{
		"Accept": {"application/json"},
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("oembed: %w", err)
	}

	var doc normalize.OEmbed
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.Candidate{}, fmt.Errorf("oembed: %w: %v", domain.ErrUpstreamMalformed, err)
	}
	if doc.HTML == "" {
		return domain.Candidate{}, fmt.Errorf("oembed: %w: no html", domain.ErrUpstreamMalformed)
	}

	c, err := normalize.FromOEmbed(doc, ref.Handle)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("oembed: %w: %v", domain.ErrUpstreamMalformed, err)
	}
	return c, nil
}
