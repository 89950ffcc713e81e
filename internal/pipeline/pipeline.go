// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the fetch → classify → aggregate stages for one
// request. Stages run strictly in sequence and each stage sees only the
// previous stage's output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdiddy/newspulse/internal/archive"
	"github.com/pdiddy/newspulse/internal/cache"
	"github.com/pdiddy/newspulse/internal/metrics"
	"github.com/pdiddy/newspulse/internal/news"
	"github.com/pdiddy/newspulse/internal/report"
	"github.com/pdiddy/newspulse/pkg/types"
)

const (
	// DefaultQuery is used when a request has no query.
	DefaultQuery = "stock market"

	// DefaultMaxArticles is used when a request has no article limit.
	DefaultMaxArticles = 20

	// NoArticlesMessage is set on responses for queries without results.
	NoArticlesMessage = "No articles found"
)

// ErrInvalidRequest wraps request validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Classifier maps articles to results of the same length and order.
type Classifier interface {
	Classify(ctx context.Context, articles []types.Article) []types.SentimentResult
}

// Cache stores responses by request.
type Cache interface {
	Get(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResponse, error)
	Put(ctx context.Context, req types.AnalysisRequest, resp types.AnalysisResponse) error
}

// Archive persists completed runs.
type Archive interface {
	Save(ctx context.Context, run archive.Run) (string, error)
}

// Pipeline wires the stages together. Fetcher and Classifier are
// required; the remaining collaborators are optional.
type Pipeline struct {
	Fetcher    news.Fetcher
	Classifier Classifier
	Summarizer report.Summarizer
	Cache      Cache
	Archive    Archive
	Logger     *slog.Logger

	// DefaultQuery and MaxArticles fill in missing request fields.
	DefaultQuery string
	MaxArticles  int
}

// Normalize fills missing request fields with the pipeline defaults.
func (p *Pipeline) Normalize(req types.AnalysisRequest) types.AnalysisRequest {
	if req.Query == "" {
		req.Query = p.DefaultQuery
		if req.Query == "" {
			req.Query = DefaultQuery
		}
	}
	if req.MaxArticles == 0 {
		req.MaxArticles = p.MaxArticles
		if req.MaxArticles <= 0 {
			req.MaxArticles = DefaultMaxArticles
		}
	}
	return req
}

// Run executes the pipeline for req. On failure it returns an error
// together with the failure envelope; fetch failures are returned as
// *news.FetchError. An empty fetch result is a success with a zero report
// and the classifier is not called.
func (p *Pipeline) Run(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResponse, error) {
	start := time.Now()
	log := p.logger()
	req = p.Normalize(req)

	if err := news.ValidateRequest(req.Query, req.MaxArticles); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		return failure(err), err
	}

	if p.Cache != nil {
		resp, err := p.Cache.Get(ctx, req)
		if err == nil {
			log.Info("serving cached report", "query", req.Query, "max_articles", req.MaxArticles)
			metrics.RecordRun("cached", time.Since(start).Seconds())
			return resp, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			log.Warn("cache lookup failed", "error", err)
		}
	}

	log.Info("fetching news", "query", req.Query, "max_articles", req.MaxArticles, "source", p.Fetcher.Name())
	articles, err := p.Fetcher.Fetch(ctx, req.Query, req.MaxArticles)
	if err != nil {
		log.Error("fetch failed", "query", req.Query, "error", err)
		metrics.RecordRun("fetch_error", time.Since(start).Seconds())
		return failure(err), err
	}
	log.Info("fetched articles", "count", len(articles))

	if len(articles) == 0 {
		r := report.Aggregate(nil)
		metrics.RecordRun("empty", time.Since(start).Seconds())
		return types.AnalysisResponse{
			Success: true,
			Query:   req.Query,
			Message: NoArticlesMessage,
			Report:  &r,
		}, nil
	}

	results := p.Classifier.Classify(ctx, articles)
	pairs, err := report.Pair(articles, results)
	if err != nil {
		return failure(err), err
	}

	r := report.Aggregate(pairs)
	if p.Summarizer != nil {
		r.Digest = p.digest(ctx, log, pairs)
	}
	log.Info("report generated",
		"total", r.Total, "positive", r.Positive, "negative", r.Negative, "neutral", r.Neutral)

	resp := types.AnalysisResponse{
		Success:          true,
		Query:            req.Query,
		ArticlesAnalyzed: len(pairs),
		Report:           &r,
	}

	if p.Archive != nil {
		id, err := p.Archive.Save(ctx, archive.Run{
			Query:       req.Query,
			MaxArticles: req.MaxArticles,
			Report:      r,
			Articles:    pairs,
		})
		if err != nil {
			log.Warn("archiving run failed", "error", err)
		} else {
			resp.RunID = id
		}
	}

	if p.Cache != nil {
		if err := p.Cache.Put(ctx, req, resp); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}

	metrics.RecordReport(r.Positive, r.Negative, r.Neutral)
	metrics.RecordRun("ok", time.Since(start).Seconds())
	return resp, nil
}

func (p *Pipeline) digest(ctx context.Context, log *slog.Logger, pairs []types.ScoredArticle) string {
	titles := make([]string, len(pairs))
	for i, a := range pairs {
		titles[i] = a.Title
	}
	d, err := report.Digest(ctx, p.Summarizer, titles)
	if err != nil {
		log.Warn("digest failed", "error", err)
		return ""
	}
	return d
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func failure(err error) types.AnalysisResponse {
	return types.AnalysisResponse{Success: false, Error: err.Error()}
}
