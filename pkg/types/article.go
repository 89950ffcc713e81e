// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the newspulse pipeline:
// articles produced by the fetch stage, sentiment results produced by the
// classify stage, and the report produced by the aggregate stage.
package types

import "strings"

// Article is a news item reduced to its title and description.
type Article struct {
	// Title is the headline. The fetch stage discards articles without one.
	Title string `json:"title" yaml:"title"`

	// Description is the article teaser as returned by the news service.
	// It may be empty and is not used for classification.
	Description string `json:"description" yaml:"description"`
}

// SentimentLabel is a coarse sentiment category.
type SentimentLabel string

const (
	LabelPositive SentimentLabel = "positive"
	LabelNegative SentimentLabel = "negative"
	LabelNeutral  SentimentLabel = "neutral"
)

// NormalizeLabel lowercases and trims a label string from an upstream
// service. The result is not guaranteed to be a known label.
func NormalizeLabel(s string) SentimentLabel {
	return SentimentLabel(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether l is one of positive, negative, or neutral.
func (l SentimentLabel) Known() bool {
	switch l {
	case LabelPositive, LabelNegative, LabelNeutral:
		return true
	}
	return false
}

// FallbackScore is the confidence attached to the neutral fallback result.
const FallbackScore = 0.5

// SentimentResult is the classification of a single article title.
type SentimentResult struct {
	Label SentimentLabel `json:"label" yaml:"label"`

	// Score is the model confidence in [0, 1].
	Score float64 `json:"score" yaml:"score"`
}

// NeutralFallback returns the result substituted when a real
// classification could not be obtained.
func NeutralFallback() SentimentResult {
	return SentimentResult{Label: LabelNeutral, Score: FallbackScore}
}

// ScoredArticle pairs an article title with its classification. Pairs are
// built positionally: the i-th result belongs to the i-th article.
type ScoredArticle struct {
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Result      SentimentResult `json:"result" yaml:"result"`
}
