package ranker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vikor_runs_total",
		Help: "VIKOR computations by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vikor_run_duration_seconds",
		Help:    "Time spent computing and reporting one ranking.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	runAlternatives = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vikor_run_alternatives",
		Help:    "Number of alternatives per successful ranking.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 11),
	})
)
