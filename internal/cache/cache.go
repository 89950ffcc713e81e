// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache stores recent analysis responses in Redis so repeated
// queries within the TTL skip the upstream services.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pdiddy/newspulse/pkg/types"
)

// DefaultTTL is used when the configured TTL is zero.
const DefaultTTL = 15 * time.Minute

const keyPrefix = "newspulse:report:"

// ErrMiss is returned by Get when no entry exists for the request.
var ErrMiss = errors.New("cache miss")

// ReportCache is a Redis-backed cache of analysis responses.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to the Redis server described by cfg and verifies the
// connection with PING.
func New(ctx context.Context, cfg types.CacheConfig) (*ReportCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("cache address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.TTL), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReportCache{client: client, ttl: ttl}
}

// Close releases the Redis connection.
func (c *ReportCache) Close() error {
	return c.client.Close()
}

// Key returns the cache key for a request. Queries are compared
// case-insensitively with collapsed whitespace.
func Key(req types.AnalysisRequest) string {
	q := strings.Join(strings.Fields(strings.ToLower(req.Query)), " ")
	return fmt.Sprintf("%s%d:%s", keyPrefix, req.MaxArticles, q)
}

// Get returns the cached response for req, or ErrMiss.
func (c *ReportCache) Get(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResponse, error) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.AnalysisResponse{}, ErrMiss
	}
	if err != nil {
		return types.AnalysisResponse{}, fmt.Errorf("reading cache: %w", err)
	}

	var resp types.AnalysisResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return types.AnalysisResponse{}, fmt.Errorf("decoding cached response: %w", err)
	}
	return resp, nil
}

// Put stores resp for req with the cache TTL.
func (c *ReportCache) Put(ctx context.Context, req types.AnalysisRequest, resp types.AnalysisResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if err := c.client.Set(ctx, Key(req), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}
