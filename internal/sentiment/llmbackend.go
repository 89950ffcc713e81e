// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sentiment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/newspulse/internal/llm"
	"github.com/pdiddy/newspulse/pkg/types"
)

const llmSystemPrompt = `You classify the sentiment of financial news headlines.
Answer with a single JSON object and nothing else:
{"label": "positive" | "negative" | "neutral", "score": <confidence between 0 and 1>}`

// LLMBackend scores text by prompting a language model. It stands in for
// a locally hosted classification model.
type LLMBackend struct {
	completer llm.Completer
}

// NewLLMBackend returns a backend that prompts c. A nil completer makes
// every Score call fail with ErrMissingCredential.
func NewLLMBackend(c llm.Completer) *LLMBackend {
	return &LLMBackend{completer: c}
}

// Name returns the backend identifier.
func (b *LLMBackend) Name() string { return string(types.BackendLLM) }

// Score asks the model for a label and confidence for text.
func (b *LLMBackend) Score(ctx context.Context, text string) (types.SentimentResult, error) {
	if b.completer == nil {
		return types.SentimentResult{}, ErrMissingCredential
	}

	reply, err := b.completer.Complete(ctx, llmSystemPrompt, "Headline: "+text)
	if err != nil {
		return types.SentimentResult{}, err
	}

	var parsed struct {
		Label *string  `json:"label"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(llm.CleanJSON(reply)), &parsed); err != nil {
		return types.SentimentResult{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if parsed.Label == nil || parsed.Score == nil {
		return types.SentimentResult{}, fmt.Errorf("%w: missing label or score", ErrMalformedResponse)
	}
	return types.SentimentResult{
		Label: types.NormalizeLabel(*parsed.Label),
		Score: *parsed.Score,
	}, nil
}
