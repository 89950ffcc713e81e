// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/newspulse/internal/httputil"
	"github.com/pdiddy/newspulse/pkg/types"
)

// inferenceBase is the hosted inference endpoint prefix; the model
// identifier is appended. Declared as a var so tests can substitute an
// httptest server.
var inferenceBase = "https://api-inference.huggingface.co/models/"

const (
	// DefaultInferenceModel is a financial-news sentiment model.
	DefaultInferenceModel = "ProsusAI/finbert"

	// DefaultColdStartDelay is the wait before retrying a model-loading response.
	DefaultColdStartDelay = 20 * time.Second

	defaultInferenceTimeout = 30 * time.Second
)

// InferenceBackend scores text with a hosted text-classification model.
type InferenceBackend struct {
	Client *http.Client
	Config types.ClassifierConfig
}

// NewInferenceBackend returns a backend using cfg. A nil client is
// replaced by one with cfg.Timeout (default 30s).
func NewInferenceBackend(client *http.Client, cfg types.ClassifierConfig) *InferenceBackend {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultInferenceTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	if cfg.Model == "" {
		cfg.Model = DefaultInferenceModel
	}
	if cfg.ColdStartDelay <= 0 {
		cfg.ColdStartDelay = DefaultColdStartDelay
	}
	return &InferenceBackend{Client: client, Config: cfg}
}

// Name returns the backend identifier.
func (b *InferenceBackend) Name() string { return string(types.BackendInference) }

// Score posts text to the model and returns its top label. A 503
// response is retried once after ColdStartDelay.
func (b *InferenceBackend) Score(ctx context.Context, text string) (types.SentimentResult, error) {
	if b.Config.APIKey == "" {
		return types.SentimentResult{}, ErrMissingCredential
	}

	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return types.SentimentResult{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return types.SentimentResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.Config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, httputil.ColdStartPolicy(b.Config.ColdStartDelay))
	if err != nil {
		return types.SentimentResult{}, fmt.Errorf("inference API request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusServiceUnavailable:
		return types.SentimentResult{}, ErrColdStart
	default:
		return types.SentimentResult{}, fmt.Errorf("inference API returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.SentimentResult{}, fmt.Errorf("reading inference response: %w", err)
	}
	return parseInferenceResponse(data)
}

func (b *InferenceBackend) endpoint() string {
	base := inferenceBase
	if b.Config.BaseURL != "" {
		base = b.Config.BaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + b.Config.Model
}

// parseInferenceResponse extracts the top label from a text-classification
// reply. The reply is a JSON array whose first element is either a
// label/score object or an array of them; in the nested form the first
// element of the inner array is the top result.
func parseInferenceResponse(data []byte) (types.SentimentResult, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return types.SentimentResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(outer) == 0 {
		return types.SentimentResult{}, fmt.Errorf("%w: empty result list", ErrMalformedResponse)
	}

	first := bytes.TrimSpace(outer[0])
	if len(first) > 0 && first[0] == '[' {
		var inner []json.RawMessage
		if err := json.Unmarshal(first, &inner); err != nil {
			return types.SentimentResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(inner) == 0 {
			return types.SentimentResult{}, fmt.Errorf("%w: empty nested result list", ErrMalformedResponse)
		}
		first = inner[0]
	}

	var ls inferenceLabelScore
	if err := json.Unmarshal(first, &ls); err != nil {
		return types.SentimentResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if ls.Label == nil || ls.Score == nil {
		return types.SentimentResult{}, fmt.Errorf("%w: missing label or score", ErrMalformedResponse)
	}
	return types.SentimentResult{
		Label: types.NormalizeLabel(*ls.Label),
		Score: *ls.Score,
	}, nil
}

// Inference API JSON structures.
type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceLabelScore struct {
	Label *string  `json:"label"`
	Score *float64 `json:"score"`
}
