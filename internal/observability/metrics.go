package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// air-quality ETL pipeline.
type Metrics struct {
	FetchAttempts   *prometheus.CounterVec // labels: city, outcome={success,error}
	CitiesFailed    prometheus.Counter
	RawFilesWritten prometheus.Counter

	RowsTransformed prometheus.Counter
	RowsDropped     prometheus.Counter

	BatchesInserted prometheus.Counter
	BatchesFailed   prometheus.Counter
	RowsLoaded      prometheus.Counter

	StageDuration *prometheus.HistogramVec // label: stage={extract,transform,load,analyze}
	PipelineRuns  prometheus.Counter
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchAttempts,
		m.CitiesFailed,
		m.RawFilesWritten,
		m.RowsTransformed,
		m.RowsDropped,
		m.BatchesInserted,
		m.BatchesFailed,
		m.RowsLoaded,
		m.StageDuration,
		m.PipelineRuns,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "fetch_attempts_total",
			Help:      "API fetch attempts by city and outcome.",
		}, []string{"city", "outcome"}),
		CitiesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "cities_failed_total",
			Help:      "Cities skipped after exhausting fetch retries.",
		}),
		RawFilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "raw_files_written_total",
			Help:      "Raw response files written to the staging area.",
		}),
		RowsTransformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "rows_transformed_total",
			Help:      "Staged rows produced by the transform stage.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "rows_dropped_total",
			Help:      "Rows dropped because every pollutant value was missing.",
		}),
		BatchesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "batches_inserted_total",
			Help:      "Row batches successfully inserted into the store.",
		}),
		BatchesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "batches_failed_total",
			Help:      "Row batches skipped after the insert retry also failed.",
		}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "rows_loaded_total",
			Help:      "Rows successfully inserted into the store.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "air_quality_etl",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "air_quality_etl",
			Name:      "pipeline_runs_total",
			Help:      "Completed end-to-end pipeline runs.",
		}),
	}
}
