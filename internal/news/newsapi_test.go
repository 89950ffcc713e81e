// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newspulse/pkg/types"
)

const sampleNewsAPIJSON = `{
  "status": "ok",
  "totalResults": 4,
  "articles": [
    {"title": "Stocks soar on earnings", "description": "Tech leads the rally.", "publishedAt": "2026-10-19T10:00:00Z"},
    {"title": "", "description": "Headline missing", "publishedAt": "2026-10-19T09:00:00Z"},
    {"title": null, "description": null, "publishedAt": "2026-10-19T08:00:00Z"},
    {"title": "Market falls sharply", "description": null, "publishedAt": "2026-10-19T07:00:00Z"}
  ]
}`

func withNewsAPIBase(t *testing.T, url string) {
	t.Helper()
	old := newsAPIBase
	newsAPIBase = url
	t.Cleanup(func() { newsAPIBase = old })
}

func newTestBackend(ts *httptest.Server) *NewsAPIBackend {
	return NewNewsAPIBackend(ts.Client(), types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "newspulse-test"},
		APIKey:     "test-key",
	})
}

func TestNewsAPIBackend_Fetch(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":        q.Get("q"),
			"language": q.Get("language"),
			"sortBy":   q.Get("sortBy"),
			"pageSize": q.Get("pageSize"),
			"apiKey":   q.Get("apiKey"),
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleNewsAPIJSON)
	}))
	defer ts.Close()
	withNewsAPIBase(t, ts.URL)

	articles, err := newTestBackend(ts).Fetch(context.Background(), "stock market", 10)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"q":        "stock market",
		"language": "en",
		"sortBy":   "publishedAt",
		"pageSize": "10",
		"apiKey":   "test-key",
	}, gotQuery)

	assert.Equal(t, []types.Article{
		{Title: "Stocks soar on earnings", Description: "Tech leads the rally."},
		{Title: "Market falls sharply", Description: ""},
	}, articles)
}

func TestNewsAPIBackend_FetchCapsAtMaxArticles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[{"title":"a"},{"title":"b"},{"title":"c"}]}`)
	}))
	defer ts.Close()
	withNewsAPIBase(t, ts.URL)

	articles, err := newTestBackend(ts).Fetch(context.Background(), "q", 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "a", articles[0].Title)
	assert.Equal(t, "b", articles[1].Title)
}

func TestNewsAPIBackend_FetchEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok","totalResults":0,"articles":[]}`)
	}))
	defer ts.Close()
	withNewsAPIBase(t, ts.URL)

	articles, err := newTestBackend(ts).Fetch(context.Background(), "nothing here", 5)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNewsAPIBackend_FetchErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`, http.StatusUnauthorized, "Your API key is invalid."},
		{"rate limited", http.StatusTooManyRequests, `{"status":"error","code":"rateLimited","message":"Too many requests."}`, http.StatusTooManyRequests, "Too many requests."},
		{"server error without body", http.StatusInternalServerError, ``, http.StatusInternalServerError, "unexpected status"},
		{"malformed JSON", http.StatusOK, `{not json`, http.StatusOK, "parsing response"},
		{"error status in body", http.StatusOK, `{"status":"error","code":"parameterInvalid","message":"bad q"}`, http.StatusOK, "parameterInvalid: bad q"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()
			withNewsAPIBase(t, ts.URL)

			_, err := newTestBackend(ts).Fetch(context.Background(), "q", 5)
			require.Error(t, err)

			var fe *FetchError
			require.True(t, errors.As(err, &fe), "want *FetchError, got %T", err)
			assert.Equal(t, tt.wantStatus, fe.Status)
			assert.Contains(t, err.Error(), tt.wantMsg)
			// Fetch failures are never retried.
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		})
	}
}

func TestNewsAPIBackend_MissingKey(t *testing.T) {
	b := NewNewsAPIBackend(nil, types.FetchConfig{})
	_, err := b.Fetch(context.Background(), "q", 5)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestNewsAPIBackend_UnreachableHost(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()
	withNewsAPIBase(t, url)

	b := NewNewsAPIBackend(nil, types.FetchConfig{APIKey: "k"})
	_, err := b.Fetch(context.Background(), "q", 5)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.Status)
}

func TestNewsAPIBackend_BaseURLOverride(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ok","articles":[{"title":"override"}]}`)
	}))
	defer ts.Close()

	b := NewNewsAPIBackend(ts.Client(), types.FetchConfig{APIKey: "k", BaseURL: ts.URL})
	articles, err := b.Fetch(context.Background(), "q", 5)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "override", articles[0].Title)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		maxArticles int
		wantErr     bool
	}{
		{"valid", "stock market", 20, false},
		{"upper bound", "q", MaxPageSize, false},
		{"empty query", "", 20, true},
		{"zero articles", "q", 0, true},
		{"negative articles", "q", -1, true},
		{"above page size", "q", MaxPageSize + 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.query, tt.maxArticles)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
