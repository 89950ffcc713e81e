// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics provides Prometheus metrics for newspulse.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts pipeline runs by outcome (ok, empty, cached, fetch_error).
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"outcome"},
	)

	// RunDuration measures end-to-end pipeline duration.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "newspulse",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// ArticlesTotal counts classified articles by label.
	ArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "articles_total",
			Help:      "Total number of classified articles",
		},
		[]string{"label"},
	)

	// DegradedTotal counts articles that fell back to the neutral result.
	DegradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newspulse",
			Name:      "classification_degraded_total",
			Help:      "Total number of classifications replaced by the neutral fallback",
		},
		[]string{"backend"},
	)
)

// RecordRun records a finished pipeline run.
func RecordRun(outcome string, seconds float64) {
	RunsTotal.WithLabelValues(outcome).Inc()
	RunDuration.Observe(seconds)
}

// RecordReport records the label counts of a report.
func RecordReport(positive, negative, neutral int) {
	ArticlesTotal.WithLabelValues("positive").Add(float64(positive))
	ArticlesTotal.WithLabelValues("negative").Add(float64(negative))
	ArticlesTotal.WithLabelValues("neutral").Add(float64(neutral))
}

// RecordDegraded records one degraded classification. Its signature
// matches sentiment.DegradedHook.
func RecordDegraded(backend string, _ error) {
	DegradedTotal.WithLabelValues(backend).Inc()
}
