// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package news fetches recent articles for a query from a news search
// service and reduces them to title/description pairs.
package news

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/newspulse/pkg/types"
)

// MaxPageSize is the largest page the news search service accepts.
const MaxPageSize = 100

// Fetcher returns up to maxArticles articles for query, most recent first.
// Implementations must drop articles without a title and must not re-sort.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error)
}

// FetchError reports that the news service could not be reached or
// rejected the request. Fetch failures are fatal to a pipeline run.
type FetchError struct {
	Source string
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetching news from %s (HTTP %d): %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetching news from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrMissingAPIKey is wrapped in a FetchError when no news API key is configured.
var ErrMissingAPIKey = errors.New("news API key is not configured")

// ValidateRequest checks the fetch parameters before any network call.
func ValidateRequest(query string, maxArticles int) error {
	if query == "" {
		return fmt.Errorf("query is empty")
	}
	if maxArticles < 1 || maxArticles > MaxPageSize {
		return fmt.Errorf("max articles must be between 1 and %d, got %d", MaxPageSize, maxArticles)
	}
	return nil
}
