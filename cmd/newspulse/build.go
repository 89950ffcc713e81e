// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/pdiddy/newspulse/internal/archive"
	"github.com/pdiddy/newspulse/internal/cache"
	"github.com/pdiddy/newspulse/internal/llm"
	"github.com/pdiddy/newspulse/internal/metrics"
	"github.com/pdiddy/newspulse/internal/news"
	"github.com/pdiddy/newspulse/internal/pipeline"
	"github.com/pdiddy/newspulse/internal/report"
	"github.com/pdiddy/newspulse/internal/sentiment"
	"github.com/pdiddy/newspulse/pkg/types"
)

// app is a pipeline together with the resources it owns.
type app struct {
	pipeline *pipeline.Pipeline
	archive  *archive.Store
	cache    *cache.ReportCache
}

// Close releases the cache connection and the archive database.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.archive != nil {
		a.archive.Close()
	}
}

// buildApp wires the pipeline stages from cfg. Optional collaborators
// (cache, archive, digest) are attached only when configured; an
// unreachable cache is logged and skipped.
func buildApp(ctx context.Context, cfg types.PipelineConfig, logger *slog.Logger) (*app, error) {
	fetcher := news.NewNewsAPIBackend(&http.Client{Timeout: cfg.Fetch.Timeout}, cfg.Fetch)

	if cfg.Classifier.APIKey == "" {
		logger.Warn("no classifier credential configured; every article will be neutral",
			"backend", cfg.Classifier.Backend)
	}
	backend, err := sentiment.NewBackend(&http.Client{Timeout: cfg.Classifier.Timeout}, cfg.Classifier)
	if err != nil {
		return nil, err
	}
	classifier := sentiment.New(backend,
		sentiment.WithConcurrency(cfg.Classifier.Concurrency),
		sentiment.WithRateLimit(cfg.Classifier.RequestsPerSecond),
		sentiment.WithLogger(logger),
		sentiment.WithDegradedHook(metrics.RecordDegraded),
	)

	a := &app{pipeline: &pipeline.Pipeline{
		Fetcher:      fetcher,
		Classifier:   classifier,
		Logger:       logger,
		DefaultQuery: cfg.DefaultQuery,
		MaxArticles:  cfg.MaxArticles,
	}}

	if cfg.Summary.Enabled {
		if cfg.Summary.APIKey == "" {
			logger.Warn("digest enabled but no Anthropic credential configured; skipping")
		} else {
			a.pipeline.Summarizer = report.LLMSummarizer{Completer: llm.NewClient(cfg.Summary.APIKey, cfg.Summary.Model)}
		}
	}

	if cfg.Cache.Addr != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			logger.Warn("report cache unavailable", "error", err)
		} else {
			a.cache = c
			a.pipeline.Cache = c
		}
	}

	if cfg.Archive.Enabled {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		a.archive = store
		a.pipeline.Archive = store
	}

	return a, nil
}

// newLogger returns a text logger on stderr, or a discarding logger when
// verbose output is off.
func newLogger(verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
