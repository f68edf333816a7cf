// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for pipeline runs.
package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

// Run status label values.
const (
	RunStatusOK     = "ok"
	RunStatusFailed = "failed"
)

// PipelineMetrics holds all Prometheus metrics for pipeline runs.
type PipelineMetrics struct {
	RunsTotal    *prometheus.CounterVec
	RunSeconds   prometheus.Histogram
	ChunksPerRun prometheus.Histogram

	StageSeconds   *prometheus.HistogramVec
	FallbacksTotal *prometheus.CounterVec

	RecordItems     *prometheus.GaugeVec
	SessionOpsTotal *prometheus.CounterVec
}

// DefaultPipelineMetrics registers metrics with the default registerer.
func DefaultPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetrics(prometheus.DefaultRegisterer)
}

// NewPipelineMetrics creates pipeline metrics registered with reg.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	factory := promauto.With(reg)

	return &PipelineMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutes_runs_total",
				Help: "Total pipeline runs by outcome",
			},
			[]string{"status"},
		),
		RunSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minutes_run_seconds",
				Help:    "End-to-end pipeline latency",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		ChunksPerRun: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "minutes_chunks_per_run",
				Help:    "Number of chunks summarized per run",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
			},
		),
		StageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "minutes_stage_seconds",
				Help:    "Latency per pipeline stage",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		FallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutes_backend_fallbacks_total",
				Help: "Backend failures that routed a stage to its heuristic",
			},
			[]string{"stage", "code"},
		),
		RecordItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "minutes_record_items",
				Help: "Entries per field in the last produced record",
			},
			[]string{"field"},
		),
		SessionOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "minutes_session_operations_total",
				Help: "Review session store operations",
			},
			[]string{"operation", "status"},
		),
	}
}

// RecordRun records a finished run.
func (m *PipelineMetrics) RecordRun(status string, seconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunSeconds.Observe(seconds)
}

// RecordStage records one stage's latency.
func (m *PipelineMetrics) RecordStage(stage string, seconds float64) {
	m.StageSeconds.WithLabelValues(stage).Observe(seconds)
}

// RecordFallback counts a backend failure handled by a heuristic.
func (m *PipelineMetrics) RecordFallback(stage string, code mnerrors.ErrorCode) {
	m.FallbacksTotal.WithLabelValues(stage, string(code)).Inc()
}

// RecordChunks records how many chunks a run produced.
func (m *PipelineMetrics) RecordChunks(n int) {
	m.ChunksPerRun.Observe(float64(n))
}

// SetRecordItems sets the entry count for a record field.
func (m *PipelineMetrics) SetRecordItems(field string, n int) {
	m.RecordItems.WithLabelValues(field).Set(float64(n))
}

// RecordSessionOp counts a session store operation.
func (m *PipelineMetrics) RecordSessionOp(op string, err error) {
	status := RunStatusOK
	if err != nil {
		status = RunStatusFailed
	}
	m.SessionOpsTotal.WithLabelValues(op, status).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the Prometheus
// text format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics file: %w", err)
	}
	return nil
}
