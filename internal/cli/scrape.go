package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"postcard/internal/bootstrap"
	"postcard/internal/config"
	"postcard/internal/domain"
	"postcard/pkg/log"
	"postcard/pkg/log/transporters"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	scrapeFormat  string
	scrapeVerbose bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url|keyword>",
	Short: "Resolve a post URL or demo keyword and print the record",
	Args:  cobra.ExactArgs(1),
	RunE:  scrapeAction,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeFormat, "format", "json", "output format: json, yaml")
	scrapeCmd.Flags().BoolVarP(&scrapeVerbose, "verbose", "v", false, "log every source attempt to stderr")
	rootCmd.AddCommand(scrapeCmd)
}

func scrapeAction(cmd *cobra.Command, args []string) error {
	if scrapeFormat != "json" && scrapeFormat != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", scrapeFormat)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := log.Warn
	if scrapeVerbose {
		level = log.Debug
		cfg.Log.Env = "development"
	}
	logger := log.New(level, transporters.NewText(cmd.ErrOrStderr()))
	log.SetDefault(logger)
	defer logger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
	defer cancel()

	record, err := bootstrap.NewScraper(cfg, nil).Execute(ctx, args[0])
	if err != nil {
		return fmt.Errorf("scrape %s: %w", args[0], err)
	}
	return printRecord(cmd.OutOrStdout(), record, scrapeFormat)
}

func printRecord(w io.Writer, record *domain.PostRecord, format string) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer func() { _ = enc.Close() }()
		return enc.Encode(record)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(record)
}

// exitCode maps a command error to a process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, domain.ErrURLRequired) || errors.Is(err, domain.ErrInvalidURL) {
		return 2
	}
	return 1
}

// Main runs the CLI and exits with a status derived from the error.
func Main() {
	err := Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	os.Exit(exitCode(err))
}
