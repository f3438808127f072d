// Package metrics holds the Prometheus instruments shared by services and the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coachlab"

var (
	ReadingsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_processed_total",
		Help:      "HRV readings processed, by readiness status.",
	}, []string{"status"})

	ReadingsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readings_rejected_total",
		Help:      "HRV readings with too few clean beats to compute metrics.",
	})

	ArtifactPercent = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rr_artifact_percent",
		Help:      "Share of RR intervals rejected during cleaning.",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
	})

	CPFits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cp_fits_total",
		Help:      "Critical power fits, by model and result.",
	}, []string{"model", "result"})

	SyncedActivities = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "synced_activities_total",
		Help:      "Power-meter rides stored from Strava.",
	})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Fit results
const (
	FitOK        = "ok"
	FitUntrusted = "untrusted"
)
