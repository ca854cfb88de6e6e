package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"postcard/internal/adapters/metrics"
	"postcard/internal/adapters/web"
	"postcard/internal/bootstrap"
	"postcard/internal/config"
	"postcard/pkg/log"
	"postcard/pkg/log/transporters"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fatal("failed to read .env", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("invalid configuration", err)
	}

	logger := log.New(cfg.Log.Level, transporters.NewStdout()).With("service", "postcard")
	log.SetDefault(logger)
	defer logger.Close()

	prom := metrics.NewPrometheus()
	scraper := bootstrap.NewScraper(cfg, prom)
	relay := bootstrap.NewRelay(cfg)

	handlers := web.NewHandlers(scraper, relay, prom, cfg.Server.RequestTimeout)
	rateLimiter := web.NewRateLimiter(cfg.Server.RatePerMinute, cfg.Server.RateBurst)
	defer rateLimiter.Stop()

	app := web.NewApp(handlers, rateLimiter, web.AppConfig{
		AppName:       "postcard",
		AllowedOrigin: cfg.Server.AllowedOrigin,
		ProxyPath:     cfg.Proxy.Path,
		Metrics:       prom.Handler(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.GlobalInfo("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.GlobalError("shutdown failed", "error", err)
		}
	}()

	log.GlobalInfo("starting postcard",
		"addr", cfg.Server.Address(),
		"source_timeout", cfg.Scrape.SourceTimeout.String(),
		"request_timeout", cfg.Server.RequestTimeout.String(),
		"diagnostics", cfg.Diagnostics(),
	)
	if err := app.Listen(cfg.Server.Address()); err != nil {
		log.GlobalError("server stopped", "error", err)
	}
}

// fatal logs before the real logger exists and exits.
func fatal(msg string, err error) {
	logger := log.New(log.Info, transporters.NewStdout())
	logger.Fatal(msg, "error", err)
	logger.Close()
	os.Exit(1)
}
