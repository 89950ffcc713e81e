// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/newspulse/internal/llm"
)

const (
	// MaxDigestInput bounds the text sent to the summarizer, in characters.
	MaxDigestInput = 500

	// digestHeadlines is the number of titles joined into the digest input.
	digestHeadlines = 20
)

const digestSystemPrompt = `You summarize batches of financial news headlines.
Write two or three plain sentences describing the main themes. No lists, no preamble.`

// Summarizer condenses text into a short summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// LLMSummarizer is a Summarizer that prompts a language model.
type LLMSummarizer struct {
	Completer llm.Completer
}

// Summarize asks the model for a short summary of text.
func (s LLMSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.Completer.Complete(ctx, digestSystemPrompt, text)
	if err != nil {
		return "", fmt.Errorf("summarizing headlines: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// DigestInput joins up to 20 titles with spaces and truncates the result
// to MaxDigestInput characters.
func DigestInput(titles []string) string {
	text := strings.Join(prefix(titles, digestHeadlines), " ")
	if utf8.RuneCountInString(text) <= MaxDigestInput {
		return text
	}
	return string([]rune(text)[:MaxDigestInput])
}

// Digest summarizes the titles with s. An empty title list yields an
// empty digest without calling s.
func Digest(ctx context.Context, s Summarizer, titles []string) (string, error) {
	input := DigestInput(titles)
	if input == "" {
		return "", nil
	}
	return s.Summarize(ctx, input)
}
