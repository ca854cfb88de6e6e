// Package bootstrap assembles the scrape pipeline from configuration. It is
// shared by the HTTP server and the CLI.
package bootstrap

import (
	"postcard/internal/adapters/imageproxy"
	"postcard/internal/adapters/upstream"
	"postcard/internal/config"
	"postcard/internal/usecases"
)

// TokenDeriver returns the syndication token strategy selected by TOKEN_MODE.
func TokenDeriver(cfg config.ScrapeConfig) upstream.TokenDeriver {
	if cfg.TokenMode == "static" {
		return upstream.StaticToken(cfg.StaticToken)
	}
	return upstream.RadixToken{}
}

// Sources returns the upstream sources in the order they are tried.
func Sources(cfg config.ScrapeConfig) []usecases.Source {
	client := upstream.NewClient(upstream.ClientConfig{
		UserAgent: cfg.UserAgent,
		Referer:   cfg.Referer,
		Timeout:   cfg.SourceTimeout,
	})
	return []usecases.Source{
		upstream.NewSyndication(client, cfg.SyndicationURL, TokenDeriver(cfg)),
		upstream.NewEmbed(client, cfg.SyndicationURL),
		upstream.NewOEmbed(client, cfg.OEmbedURL),
	}
}

// NewScraper builds the scrape use case. metrics may be nil.
func NewScraper(cfg *config.Config, metrics usecases.MetricsRecorder) *usecases.ScrapePostUseCase {
	return usecases.NewScrapePostUseCase(
		Sources(cfg.Scrape),
		imageproxy.NewRewriter(cfg.Proxy.Path),
		usecases.Options{
			SourceTimeout: cfg.Scrape.SourceTimeout,
			Diagnostics:   cfg.Diagnostics(),
			Metrics:       metrics,
		},
	)
}

// NewRelay builds the image proxy relay.
func NewRelay(cfg *config.Config) *imageproxy.Relay {
	ua := cfg.Scrape.UserAgent
	if ua == "" {
		ua = upstream.DefaultUserAgent
	}
	return imageproxy.NewRelay(imageproxy.Config{
		AllowedHosts: cfg.Proxy.AllowedHosts,
		Timeout:      cfg.Proxy.Timeout,
		MaxBytes:     cfg.Proxy.MaxBytes,
		UserAgent:    ua,
		Referer:      cfg.Scrape.Referer,
	})
}
