// Package metrics declares the Prometheus collectors of the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration measures each pipeline stage.
	// Labels:
	//   - stage: contracts.Stage string (e.g. "S1_CATALOG")
	//   - outcome: "success", "failure", "memo"
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		},
		[]string{"stage", "outcome"},
	)

	// RowsLoaded counts rows read and kept per source table.
	// Labels:
	//   - source: table name (e.g. "title.basics")
	//   - kind: "read", "kept", "malformed"
	RowsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rows_loaded_total",
			Help: "Total number of source rows processed by the table loader",
		},
		[]string{"source", "kind"},
	)

	// MemoLookups counts memoization lookups.
	// Labels:
	//   - layer: "lru", "redis"
	//   - outcome: "hit", "miss", "error"
	MemoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_memo_lookups_total",
			Help: "Total number of stage memoization lookups",
		},
		[]string{"layer", "outcome"},
	)

	// Recommendations counts recommendation queries by outcome.
	// Labels:
	//   - outcome: "ok", "not_found", "ambiguous", "incomplete", "error"
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of similarity recommendation queries",
		},
		[]string{"outcome"},
	)

	// DatasetTitles reports the number of classified titles currently served.
	DatasetTitles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dataset_titles",
			Help: "Number of classified titles in the active dataset",
		},
	)
)

// ObserveStage records a stage duration
func ObserveStage(stage, outcome string, d time.Duration) {
	StageDuration.WithLabelValues(stage, outcome).Observe(d.Seconds())
}

// AddRows records loader row counts for one source
func AddRows(source string, read, kept, malformed int) {
	RowsLoaded.WithLabelValues(source, "read").Add(float64(read))
	RowsLoaded.WithLabelValues(source, "kept").Add(float64(kept))
	if malformed > 0 {
		RowsLoaded.WithLabelValues(source, "malformed").Add(float64(malformed))
	}
}
