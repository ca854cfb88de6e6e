package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"postcard/internal/domain"
	"postcard/internal/normalize"
)

// Embed loads a post from the legacy HTML embed page.
type Embed struct {
	client  *Client
	baseURL string
}

// NewEmbed creates the embed page source.
func NewEmbed(client *Client, baseURL string) *Embed {
	if baseURL == "" {
		baseURL = DefaultSyndicationURL
	}
	return &Embed{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Name identifies the source in logs and metrics.
func (e *Embed) Name() string { return "embed" }

// Attempt fetches the embed page and scrapes it.
func (e *Embed) Attempt(ctx context.Context, ref domain.PostRef) (domain.Candidate, error) {
	q := url.Values{}
	q.Set("id", ref.ID)
	q.Set("lang", "en")

	body, err := e.client.Get(ctx, e.baseURL+"/tweet?"+q.Encode(), http.Header{
		"Accept": {"text/html,*/*;q=0.8"},
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("embed: %w", err)
	}

	c, err := normalize.FromEmbedHTML(string(body), ref.Handle)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("embed: %w: %v", domain.ErrUpstreamMalformed, err)
	}
	return c, nil
}
