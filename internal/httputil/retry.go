// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryPolicy describes which response status triggers a retry, how many
// retries are allowed, and how long to wait before each one.
type RetryPolicy struct {
	// Status is the HTTP status code that triggers a retry.
	Status int

	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// Delay returns the wait before retry number attempt (0-based).
	Delay func(attempt int) time.Duration
}

// ColdStartPolicy retries exactly once on HTTP 503 after a fixed delay.
// Hosted inference services answer 503 while a model is being loaded.
func ColdStartPolicy(delay time.Duration) RetryPolicy {
	return RetryPolicy{
		Status:     http.StatusServiceUnavailable,
		MaxRetries: 1,
		Delay:      func(int) time.Duration { return delay },
	}
}

// DoWithRetry executes an HTTP request and retries while the response
// status equals policy.Status, up to policy.MaxRetries times.
//
// Before each retry the response body is drained and closed and the
// request body is rewound through req.GetBody. If the context is
// cancelled during a wait the function returns ctx.Err(). After
// exhausting retries the last matching response is returned so the
// caller can inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, policy RetryPolicy) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		attemptReq, err := rewind(ctx, req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != policy.Status || attempt >= policy.MaxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		var wait time.Duration
		if policy.Delay != nil {
			wait = policy.Delay(attempt)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// rewind clones req for the given attempt, restoring the body for retries.
func rewind(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	clone := req.Clone(ctx)
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("request body cannot be replayed for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewinding request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}
