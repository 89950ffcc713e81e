// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// MaxTopHeadlines bounds Report.TopHeadlines.
const MaxTopHeadlines = 5

// Report is the aggregate view of one pipeline run. Positive, Negative and
// Neutral always sum to Total.
type Report struct {
	Summary      string   `json:"summary" yaml:"summary"`
	Positive     int      `json:"positive" yaml:"positive"`
	Negative     int      `json:"negative" yaml:"negative"`
	Neutral      int      `json:"neutral" yaml:"neutral"`
	Total        int      `json:"total" yaml:"total"`
	TopHeadlines []string `json:"top_headlines" yaml:"top_headlines"`

	// Digest is an optional model-written summary of the headlines. Empty
	// when no summarizer is configured or the summarizer failed.
	Digest string `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// AnalysisRequest is the input accepted by the pipeline entry points.
type AnalysisRequest struct {
	Query       string `json:"query" yaml:"query"`
	MaxArticles int    `json:"max_articles" yaml:"max_articles"`
}

// AnalysisResponse is the envelope returned by the pipeline entry points.
// On failure only Success and Error are set, and only those two fields are
// encoded.
type AnalysisResponse struct {
	Success          bool    `json:"success"`
	Query            string  `json:"query,omitempty"`
	ArticlesAnalyzed int     `json:"articles_analyzed"`
	Report           *Report `json:"report,omitempty"`
	Message          string  `json:"message,omitempty"`
	Error            string  `json:"error,omitempty"`

	// RunID identifies the archived run, when archiving is enabled.
	RunID string `json:"run_id,omitempty"`
}

// MarshalJSON encodes a failed response as {"success": false, "error": ...}
// and a successful one with all of its fields.
func (r AnalysisResponse) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{Error: r.Error})
	}
	type envelope AnalysisResponse
	return json.Marshal(envelope(r))
}
