package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for ingestion and enrichment.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rowsTotal        *prometheus.CounterVec
	scoringTotal     *prometheus.CounterVec
	scoringDuration  *prometheus.HistogramVec
	enrichmentStatus *prometheus.CounterVec
	batchesTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_rows_total",
				Help: "Data rows seen by the row parser, by outcome",
			},
			[]string{"outcome"},
		),
		scoringTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_scoring_calls_total",
				Help: "Remote sentiment scoring calls, by model and status",
			},
			[]string{"model", "status"},
		),
		scoringDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reviews_scoring_duration_seconds",
				Help:    "Latency of remote sentiment scoring calls",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"model"},
		),
		enrichmentStatus: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_enriched_total",
				Help: "Enriched review records, by enrichment status",
			},
			[]string{"status"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviews_batches_total",
				Help: "Batch enrichments attempted, by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.rowsTotal,
		m.scoringTotal,
		m.scoringDuration,
		m.enrichmentStatus,
		m.batchesTotal,
	)

	return m
}

// RowParsed records one data row outcome ("accepted", "blank", "malformed", "rejected").
func (m *Metrics) RowParsed(outcome string) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(outcome).Inc()
}

// ScoringCall records one remote scoring attempt.
func (m *Metrics) ScoringCall(model string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.scoringTotal.WithLabelValues(model, status).Inc()
	m.scoringDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// RecordEnriched records the final status of one enriched record.
func (m *Metrics) RecordEnriched(status string) {
	if m == nil {
		return
	}
	m.enrichmentStatus.WithLabelValues(status).Inc()
}

// Batch records a batch enrichment result ("completed", "unreachable").
func (m *Metrics) Batch(result string) {
	if m == nil {
		return
	}
	m.batchesTotal.WithLabelValues(result).Inc()
}
