// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"postcard/pkg/log"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Scrape ScrapeConfig
	Proxy  ProxyConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host           string        `envconfig:"HOST" default:"0.0.0.0"`
	Port           int           `envconfig:"PORT" default:"3000"`
	AllowedOrigin  string        `envconfig:"ALLOWED_ORIGIN" default:"*"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"28s"`
	RatePerMinute  int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"10"`
	RateBurst      int           `envconfig:"RATE_BURST" default:"5"`
}

// ScrapeConfig holds upstream source configuration.
type ScrapeConfig struct {
	SourceTimeout  time.Duration `envconfig:"SOURCE_TIMEOUT" default:"9s"`
	UserAgent      string        `envconfig:"USER_AGENT"`
	Referer        string        `envconfig:"REFERER"`
	SyndicationURL string        `envconfig:"SYNDICATION_URL" default:"https://cdn.syndication.twimg.com"`
	OEmbedURL      string        `envconfig:"OEMBED_URL" default:"https://publish.twitter.com"`
	// TokenMode is "radix" (derived per post) or "static".
	TokenMode   string `envconfig:"TOKEN_MODE" default:"radix"`
	StaticToken string `envconfig:"STATIC_TOKEN"`
}

// ProxyConfig holds image proxy configuration.
type ProxyConfig struct {
	Path         string        `envconfig:"PROXY_PATH" default:"/image-proxy"`
	AllowedHosts []string      `envconfig:"PROXY_ALLOWED_HOSTS" default:"pbs.twimg.com,video.twimg.com,.twimg.com,unavatar.io"`
	Timeout      time.Duration `envconfig:"PROXY_TIMEOUT" default:"12s"`
	MaxBytes     int64         `envconfig:"PROXY_MAX_BYTES" default:"15728640"` // 15MB
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level log.Level `envconfig:"LOG_LEVEL" default:"info"`
	// Env is the deployment environment. "development" turns on
	// diagnostics.
	Env string `envconfig:"APP_ENV" default:"production"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Server.Port))
	}
	if c.Scrape.SourceTimeout <= 0 {
		errs = append(errs, errors.New("SOURCE_TIMEOUT must be positive"))
	}
	// Three sources run back to back inside one request deadline.
	if 3*c.Scrape.SourceTimeout > c.Server.RequestTimeout {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT (%s) must cover three SOURCE_TIMEOUT attempts (%s)",
			c.Server.RequestTimeout, 3*c.Scrape.SourceTimeout))
	}
	if c.Server.RatePerMinute < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_PER_MINUTE must be at least 1"))
	}
	if c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("RATE_BURST must be at least 1"))
	}
	switch c.Scrape.TokenMode {
	case "radix":
	case "static":
		if c.Scrape.StaticToken == "" {
			errs = append(errs, errors.New("STATIC_TOKEN is required when TOKEN_MODE=static"))
		}
	default:
		errs = append(errs, fmt.Errorf("TOKEN_MODE must be radix or static, got %q", c.Scrape.TokenMode))
	}
	if !strings.HasPrefix(c.Proxy.Path, "/") {
		errs = append(errs, fmt.Errorf("PROXY_PATH must start with /, got %q", c.Proxy.Path))
	}
	if len(c.Proxy.AllowedHosts) == 0 {
		errs = append(errs, errors.New("PROXY_ALLOWED_HOSTS must not be empty"))
	}

	return errors.Join(errs...)
}

// Address returns the listen address.
func (c *ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Diagnostics reports whether upstream error detail may be logged.
func (c *Config) Diagnostics() bool {
	return strings.EqualFold(c.Log.Env, "development")
}
