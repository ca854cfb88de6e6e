package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postcard/internal/domain"
	"postcard/pkg/log"
)

// Source is one strategy for loading a post: it fetches and normalizes in
// a single step and reports classified upstream errors.
type Source interface {
	Name() string
	Attempt(ctx context.Context, ref domain.PostRef) (domain.Candidate, error)
}

// URLRewriter maps external media URLs to same-origin proxy URLs.
type URLRewriter interface {
	Rewrite(raw string) string
	RewriteAll(urls []string) []string
}

// MetricsRecorder observes pipeline outcomes.
type MetricsRecorder interface {
	SourceAttempt(source, outcome string)
	ScrapeCompleted(outcome string, d time.Duration)
}

// Options tunes the scrape pipeline.
type Options struct {
	// SourceTimeout bounds each source attempt.
	SourceTimeout time.Duration
	// Diagnostics adds raw upstream error text to the server logs.
	Diagnostics bool
	Metrics     MetricsRecorder
	Now         func() time.Time
}

// ScrapePostUseCase resolves a post URL or demo keyword into a PostRecord.
type ScrapePostUseCase struct {
	sources       []Source
	rewriter      URLRewriter
	sourceTimeout time.Duration
	diagnostics   bool
	metrics       MetricsRecorder
	now           func() time.Time
}

// NewScrapePostUseCase creates the pipeline. Sources are tried in the
// order given.
func NewScrapePostUseCase(sources []Source, rewriter URLRewriter, opts Options) *ScrapePostUseCase {
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 9 * time.Second
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ScrapePostUseCase{
		sources:       sources,
		rewriter:      rewriter,
		sourceTimeout: opts.SourceTimeout,
		diagnostics:   opts.Diagnostics,
		metrics:       opts.Metrics,
		now:           opts.Now,
	}
}

// Execute returns the post for input, which is either a post URL or a demo
// keyword. It fails with domain.ErrURLRequired or domain.ErrInvalidURL for
// bad input and domain.ErrPostUnavailable when no source produced content.
func (uc *ScrapePostUseCase) Execute(ctx context.Context, input string) (*domain.PostRecord, error) {
	start := time.Now()
	record, err := uc.execute(ctx, input)
	uc.metrics.ScrapeCompleted(outcome(err), time.Since(start))
	return record, err
}

func (uc *ScrapePostUseCase) execute(ctx context.Context, input string) (*domain.PostRecord, error) {
	if demo, ok := domain.LookupDemo(input); ok {
		log.GlobalDebugCtx(ctx, "serving demo post", "handle", demo.Handle)
		record := uc.assembleDemo(demo)
		return &record, nil
	}

	ref, err := domain.ParsePostURL(input)
	if err != nil {
		return nil, err
	}
	ctx = log.WithFields(ctx, "handle", ref.Handle, "post_id", ref.ID)

	for _, src := range uc.sources {
		if err := ctx.Err(); err != nil {
			return nil, abortErr(err)
		}

		c, err := uc.attempt(ctx, src, ref)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, abortErr(ctxErr)
			}
			result := outcome(err)
			uc.metrics.SourceAttempt(src.Name(), result)
			fields := []any{"source", src.Name(), "outcome", result}
			if uc.diagnostics {
				fields = append(fields, "error", err.Error())
			}
			log.GlobalWarnCtx(ctx, "source failed", fields...)
			continue
		}

		if !c.Usable() {
			uc.metrics.SourceAttempt(src.Name(), "empty")
			log.GlobalInfoCtx(ctx, "source returned no content", "source", src.Name())
			continue
		}

		uc.metrics.SourceAttempt(src.Name(), "ok")
		log.GlobalInfoCtx(ctx, "post resolved", "source", src.Name(), "images", len(c.Images))
		record := uc.assemble(c, ref)
		return &record, nil
	}

	return nil, domain.ErrPostUnavailable
}

// attempt runs one source under its own deadline. A panicking source is
// reported as an error so the next source still runs.
func (uc *ScrapePostUseCase) attempt(ctx context.Context, src Source, ref domain.PostRef) (c domain.Candidate, err error) {
	ctx, cancel := context.WithTimeout(ctx, uc.sourceTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			c, err = domain.Candidate{}, fmt.Errorf("%w: %s panicked: %v", domain.ErrUnexpected, src.Name(), r)
		}
	}()
	return src.Attempt(ctx, ref)
}

// abortErr maps a finished request context. Running out of the overall
// deadline means no source answered in time.
func abortErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrPostUnavailable, err)
	}
	return err
}

// outcome labels an error for metrics and logs.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrUpstreamMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrURLRequired), errors.Is(err, domain.ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, domain.ErrPostUnavailable):
		return "post_unavailable"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}

type noopMetrics struct{}

func (noopMetrics) SourceAttempt(string, string)          {}
func (noopMetrics) ScrapeCompleted(string, time.Duration) {}
