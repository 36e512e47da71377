package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "riskadvisor_cycle_duration_seconds",
			Help:    "Time taken by one heuristic evaluation cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	cycleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskadvisor_cycles_total",
			Help: "Total number of evaluation cycles",
		},
		[]string{"status"}, // success or error
	)

	risksEmitted = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "riskadvisor_risks",
			Help: "Ranked risks produced by the last cycle",
		},
		[]string{"severity"},
	)

	aiCycleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskadvisor_ai_cycles_total",
			Help: "Total number of AI analysis cycles",
		},
		[]string{"status"},
	)

	pendingRecommendations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "riskadvisor_pending_recommendations",
			Help: "Recommendations currently in pending state",
		},
	)

	snapshotsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "riskadvisor_snapshots_collected_total",
			Help: "Fresh telemetry snapshots collected (cache misses)",
		},
	)
)
