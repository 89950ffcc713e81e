// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/newspulse/pkg/types"
)

// newsAPIBase is the NewsAPI "everything" endpoint. Declared as a var so
// tests can substitute an httptest server.
var newsAPIBase = "https://newsapi.org/v2/everything"

// NewsAPIBackend queries the NewsAPI search endpoint.
type NewsAPIBackend struct {
	Client *http.Client
	Config types.FetchConfig
}

// NewNewsAPIBackend returns a backend using cfg. A nil client is replaced
// by one with cfg.Timeout.
func NewNewsAPIBackend(client *http.Client, cfg types.FetchConfig) *NewsAPIBackend {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &NewsAPIBackend{Client: client, Config: cfg}
}

// Name returns the backend identifier.
func (b *NewsAPIBackend) Name() string { return "newsapi" }

// Fetch queries NewsAPI for English articles sorted by publish date and
// returns those with a non-empty title, in upstream order.
func (b *NewsAPIBackend) Fetch(ctx context.Context, query string, maxArticles int) ([]types.Article, error) {
	if err := ValidateRequest(query, maxArticles); err != nil {
		return nil, err
	}
	if b.Config.APIKey == "" {
		return nil, &FetchError{Source: b.Name(), Err: ErrMissingAPIKey}
	}

	base := newsAPIBase
	if b.Config.BaseURL != "" {
		base = b.Config.BaseURL
	}

	params := url.Values{
		"q":        {query},
		"language": {"en"},
		"sortBy":   {"publishedAt"},
		"pageSize": {strconv.Itoa(maxArticles)},
		"apiKey":   {b.Config.APIKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Err: err}
	}
	defer resp.Body.Close()

	var nr newsAPIResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&nr)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("unexpected status %s", resp.Status)
		if decodeErr == nil && nr.Message != "" {
			msg = nr.Message
		}
		return nil, &FetchError{Source: b.Name(), Status: resp.StatusCode, Err: errors.New(msg)}
	}
	if decodeErr != nil {
		return nil, &FetchError{Source: b.Name(), Status: resp.StatusCode, Err: fmt.Errorf("parsing response: %w", decodeErr)}
	}
	if nr.Status == "error" {
		return nil, &FetchError{Source: b.Name(), Status: resp.StatusCode, Err: fmt.Errorf("%s: %s", nr.Code, nr.Message)}
	}

	articles := make([]types.Article, 0, len(nr.Articles))
	for _, a := range nr.Articles {
		if a.Title == nil || *a.Title == "" {
			continue
		}
		article := types.Article{Title: *a.Title}
		if a.Description != nil {
			article.Description = *a.Description
		}
		articles = append(articles, article)
		if len(articles) == maxArticles {
			break
		}
	}
	return articles, nil
}

// NewsAPI JSON structures. Title and description are pointers because the
// service returns null for removed articles.
type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	URL         string  `json:"url"`
	PublishedAt string  `json:"publishedAt"`
}
