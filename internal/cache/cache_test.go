// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/newspulse/pkg/types"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ReportCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func sampleResponse() types.AnalysisResponse {
	return types.AnalysisResponse{
		Success:          true,
		Query:            "stock market",
		ArticlesAnalyzed: 2,
		Report: &types.Report{
			Summary:      "Analyzed 2 articles. Market sentiment is MIXED. Top headlines: a, b",
			Positive:     1,
			Negative:     1,
			Total:        2,
			TopHeadlines: []string{"a", "b"},
		},
	}
}

func TestReportCache_PutGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	req := types.AnalysisRequest{Query: "stock market", MaxArticles: 2}

	_, err := c.Get(ctx, req)
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Put(ctx, req, sampleResponse()))

	got, err := c.Get(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, sampleResponse(), got)

	// Query normalization: case and whitespace do not matter.
	got, err = c.Get(ctx, types.AnalysisRequest{Query: "  Stock   MARKET ", MaxArticles: 2})
	require.NoError(t, err)
	assert.Equal(t, "stock market", got.Query)

	// Different limit is a different entry.
	_, err = c.Get(ctx, types.AnalysisRequest{Query: "stock market", MaxArticles: 3})
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReportCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()
	req := types.AnalysisRequest{Query: "tesla", MaxArticles: 5}

	require.NoError(t, c.Put(ctx, req, sampleResponse()))
	assert.Equal(t, time.Minute, mr.TTL(Key(req)))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, req)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReportCache_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t, 0)
	req := types.AnalysisRequest{Query: "q", MaxArticles: 1}
	require.NoError(t, mr.Set(Key(req), "{not json"))

	_, err := c.Get(context.Background(), req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := New(context.Background(), types.CacheConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, DefaultTTL, c.ttl)

	_, err = New(context.Background(), types.CacheConfig{})
	assert.Error(t, err)

	down, err := miniredis.Run()
	require.NoError(t, err)
	addr := down.Addr()
	down.Close()
	_, err = New(context.Background(), types.CacheConfig{Addr: addr})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "newspulse:report:20:stock market", Key(types.AnalysisRequest{Query: "Stock  Market", MaxArticles: 20}))
}
