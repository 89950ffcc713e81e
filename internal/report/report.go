// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report aggregates classified articles into a sentiment report.
// Aggregation is a pure function of its input; the optional digest is the
// only part that calls out to a model.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/newspulse/pkg/types"
)

// summaryHeadlines is the number of titles previewed in Report.Summary.
const summaryHeadlines = 3

// Pair zips articles with their classification results by position.
func Pair(articles []types.Article, results []types.SentimentResult) ([]types.ScoredArticle, error) {
	if len(articles) != len(results) {
		return nil, fmt.Errorf("pairing %d articles with %d results", len(articles), len(results))
	}
	pairs := make([]types.ScoredArticle, len(articles))
	for i, a := range articles {
		pairs[i] = types.ScoredArticle{
			Title:       a.Title,
			Description: a.Description,
			Result:      results[i],
		}
	}
	return pairs, nil
}

// Aggregate tallies labels across pairs and builds the summary. Labels
// other than positive and negative count as neutral, so the three counts
// always sum to Total. Headlines keep pipeline order.
func Aggregate(pairs []types.ScoredArticle) types.Report {
	r := types.Report{
		Total:        len(pairs),
		TopHeadlines: []string{},
	}

	titles := make([]string, len(pairs))
	for i, p := range pairs {
		titles[i] = p.Title
		switch types.NormalizeLabel(string(p.Result.Label)) {
		case types.LabelPositive:
			r.Positive++
		case types.LabelNegative:
			r.Negative++
		default:
			r.Neutral++
		}
	}

	r.TopHeadlines = append(r.TopHeadlines, prefix(titles, types.MaxTopHeadlines)...)
	r.Summary = buildSummary(r, prefix(titles, summaryHeadlines))
	return r
}

// Direction returns the overall sentiment word for the counts:
// POSITIVE, NEGATIVE, or MIXED on a tie (including zero-zero).
func Direction(positive, negative int) string {
	switch {
	case positive > negative:
		return "POSITIVE"
	case negative > positive:
		return "NEGATIVE"
	default:
		return "MIXED"
	}
}

func buildSummary(r types.Report, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyzed %d articles. ", r.Total)

	switch Direction(r.Positive, r.Negative) {
	case "POSITIVE":
		fmt.Fprintf(&b, "Overall sentiment is POSITIVE (%d/%d articles). ", r.Positive, r.Total)
	case "NEGATIVE":
		fmt.Fprintf(&b, "Overall sentiment is NEGATIVE (%d/%d articles). ", r.Negative, r.Total)
	default:
		b.WriteString("Market sentiment is MIXED. ")
	}

	b.WriteString("Top headlines: ")
	b.WriteString(strings.Join(headlines, ", "))
	return b.String()
}

func prefix(s []string, n int) []string {
	if len(s) < n {
		n = len(s)
	}
	return s[:n]
}

// FormatText writes a human-readable rendering of r to w.
func FormatText(r types.Report, query string, w io.Writer) {
	fmt.Fprintf(w, "Query:    %s\n", query)
	fmt.Fprintf(w, "Articles: %d\n", r.Total)
	fmt.Fprintf(w, "Positive: %d  Negative: %d  Neutral: %d\n", r.Positive, r.Negative, r.Neutral)
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Summary)

	if r.Digest != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Digest:")
		fmt.Fprintln(w, r.Digest)
	}

	if len(r.TopHeadlines) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top headlines:")
		for i, h := range r.TopHeadlines {
			fmt.Fprintf(w, "  %d. %s\n", i+1, h)
		}
	}
}
