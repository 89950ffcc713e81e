// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sentiment classifies article titles through an external model.
//
// A Backend scores one piece of text. The Classifier runs a Backend over a
// batch of articles and guarantees one result per article, in input order:
// any per-article failure degrades to the neutral fallback instead of
// aborting the batch.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/pdiddy/newspulse/pkg/types"
)

// Backend scores a single text. Each backend (hosted inference, LLM)
// implements this interface per the Strategy pattern.
type Backend interface {
	Name() string
	Score(ctx context.Context, text string) (types.SentimentResult, error)
}

var (
	// ErrMissingCredential is returned by a backend that has no API key.
	ErrMissingCredential = errors.New("classifier credential is not configured")

	// ErrColdStart is returned when the model was still loading after the
	// single cold-start retry.
	ErrColdStart = errors.New("model still loading after retry")

	// ErrMalformedResponse is returned when the upstream answer lacks a
	// usable label or score.
	ErrMalformedResponse = errors.New("malformed classification response")
)

// DegradedHook is called once for every article that fell back to the
// neutral result.
type DegradedHook func(backend string, err error)

// Classifier maps articles to sentiment results through a Backend.
type Classifier struct {
	backend     Backend
	concurrency int
	limiter     *rate.Limiter
	logger      *slog.Logger
	onDegraded  DegradedHook
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithConcurrency classifies up to n articles in parallel. Values below 1
// mean sequential processing.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithRateLimit limits backend calls to rps per second. Zero disables it.
func WithRateLimit(rps float64) Option {
	return func(c *Classifier) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used to report degraded articles.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDegradedHook registers a callback for degraded articles.
func WithDegradedHook(h DegradedHook) Option {
	return func(c *Classifier) { c.onDegraded = h }
}

// New returns a Classifier backed by b.
func New(b Backend, opts ...Option) *Classifier {
	c := &Classifier{
		backend:     b,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the name of the configured backend.
func (c *Classifier) Backend() string { return c.backend.Name() }

// Classify returns one result per article, in the same order as articles.
// Only titles are classified. Articles whose classification fails receive
// types.NeutralFallback(); Classify itself never fails.
func (c *Classifier) Classify(ctx context.Context, articles []types.Article) []types.SentimentResult {
	results := make([]types.SentimentResult, len(articles))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, a := range articles {
		g.Go(func() error {
			results[i] = c.classifyOne(ctx, i, a.Title)
			return nil
		})
	}
	g.Wait()

	return results
}

func (c *Classifier) classifyOne(ctx context.Context, idx int, title string) types.SentimentResult {
	res, err := c.score(ctx, title)
	if err != nil {
		c.logger.Warn("classification degraded to neutral",
			"backend", c.backend.Name(), "index", idx, "error", err)
		if c.onDegraded != nil {
			c.onDegraded(c.backend.Name(), err)
		}
		return types.NeutralFallback()
	}
	return res
}

func (c *Classifier) score(ctx context.Context, title string) (types.SentimentResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return types.SentimentResult{}, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	res, err := c.backend.Score(ctx, title)
	if err != nil {
		return types.SentimentResult{}, err
	}
	return validate(res)
}

// validate normalizes the label and rejects results that cannot be
// aggregated. Unknown labels pass through; the aggregator counts them as
// neutral.
func validate(res types.SentimentResult) (types.SentimentResult, error) {
	res.Label = types.NormalizeLabel(string(res.Label))
	if res.Label == "" {
		return types.SentimentResult{}, fmt.Errorf("%w: empty label", ErrMalformedResponse)
	}
	if math.IsNaN(res.Score) || res.Score < 0 || res.Score > 1 {
		return types.SentimentResult{}, fmt.Errorf("%w: score %v outside [0,1]", ErrMalformedResponse, res.Score)
	}
	return res, nil
}
