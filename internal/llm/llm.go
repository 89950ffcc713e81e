// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the Anthropic Messages API for the stages that prompt
// a language model: the LLM sentiment backend and the report digest.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = anthropic.ModelClaudeHaiku4_5

const defaultMaxTokens = 512

// ErrEmptyResponse is returned when the model answers without text.
var ErrEmptyResponse = errors.New("no response from model")

// Completer sends a single system+user prompt and returns the text reply.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Client is a Completer backed by the Anthropic API.
type Client struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewClient returns a Client for apiKey and model. Extra options are
// passed to the SDK (tests use option.WithBaseURL).
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	if model == "" {
		model = string(DefaultModel)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Client{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: defaultMaxTokens,
	}
}

// Complete sends the prompt and returns the first text block of the reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range resp.Content {
		if block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

// CleanJSON strips Markdown fences and surrounding prose from a model
// reply so the remaining text is a single JSON object.
func CleanJSON(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
