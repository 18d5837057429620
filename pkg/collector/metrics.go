package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report collection metrics
	collectionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bootdata_collection_duration_seconds",
			Help:    "Time taken to assemble a complete boot data report",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	collectionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bootdata_collection_total",
			Help: "Total number of report collection attempts",
		},
		[]string{"status"}, // success or error
	)

	probeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bootdata_probe_duration_seconds",
			Help:    "Time taken by individual probes",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"probe"},
	)

	sectionCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bootdata_report_sections",
			Help: "Number of sections in the last assembled report",
		},
	)
)
