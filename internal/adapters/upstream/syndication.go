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

// DefaultSyndicationURL serves both the JSON feed and the embed page.
const DefaultSyndicationURL = "https://cdn.syndication.twimg.com"

// featureFlags are the widget feature switches sent as a cookie; without
// them the feed omits verification badges and edit metadata.
var featureFlags = []string{
	"tfw_timeline_list:",
	"tfw_follower_count_sunset:true",
	"tfw_tweet_edit_backend:on",
	"tfw_refsrc_session:on",
	"tfw_fosnr_soft_interventions_enabled:on",
	"tfw_show_birdwatch_pivots_enabled:on",
	"tfw_show_business_verified_badge:on",
	"tfw_duplicate_scribes_to_settings:on",
	"tfw_use_profile_image_shape_enabled:on",
	"tfw_show_blue_verified_badge:on",
	"tfw_legacy_timeline_sunset:true",
	"tfw_show_gov_verified_badge:on",
	"tfw_show_business_affiliate_badge:on",
	"tfw_tweet_edit_frontend:on",
}

// Syndication loads a post from the JSON syndication feed.
type Syndication struct {
	client  *Client
	baseURL string
	token   TokenDeriver
}

// NewSyndication creates the JSON feed source. A nil token uses RadixToken.
func NewSyndication(client *Client, baseURL string, token TokenDeriver) *Syndication {
	if baseURL == "" {
		baseURL = DefaultSyndicationURL
	}
	if token == nil {
		token = RadixToken{}
	}
	return &Syndication{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// Name identifies the source in logs and metrics.
func (s *Syndication) Name() string { return "syndication" }

// Attempt fetches and normalizes the post. An empty JSON object, which the
// feed returns when it rejects the token, is reported as malformed.
func (s *Syndication) Attempt(ctx context.Context, ref domain.PostRef) (domain.Candidate, error) {
	q := url.Values{}
	q.Set("id", ref.ID)
	q.Set("lang", "en")
	q.Set("token", s.token.Token(ref.ID))

	body, err := s.client.Get(ctx, s.baseURL+"/tweet-result?"+q.Encode(), http.Header{
		"Accept": {"application/json"},
		"Cookie": {"features=" + strings.Join(featureFlags, ";")},
	})
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("syndication: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return domain.Candidate{}, fmt.Errorf("syndication: %w: %v", domain.ErrUpstreamMalformed, err)
	}
	if len(data) == 0 {
		return domain.Candidate{}, fmt.Errorf("syndication: %w: empty object", domain.ErrUpstreamMalformed)
	}

	return normalize.FromSyndication(data, ref.Handle), nil
}
