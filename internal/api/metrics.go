package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fallax",
		Name:      "analyses_total",
		Help:      "Completed analysis requests by outcome.",
	}, []string{"outcome"})

	analysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fallax",
		Name:      "analysis_duration_seconds",
		Help:      "End-to-end analysis latency.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
	})

	fallaciesDetected = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fallax",
		Name:      "fallacies_per_analysis",
		Help:      "Fallacies surviving the confidence filter, per analysis.",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
	})
)

const (
	outcomeOK            = "ok"
	outcomeIndeterminate = "indeterminate"
	outcomeInvalid       = "invalid_input"
	outcomeBudget        = "budget_exceeded"
	outcomeError         = "error"
)
