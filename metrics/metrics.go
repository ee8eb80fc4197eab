// Package metrics records what each wrangling stage did to the dataset as
// prometheus metrics. A Recorder owns its registry, so a one-shot run can export
// the values through the node exporter textfile collector without touching the
// global default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

const namespace = "wrangle"

// Recorder implements preprocessing.Observer.
type Recorder struct {
	registry *prometheus.Registry

	rows           *prometheus.GaugeVec
	columns        *prometheus.GaugeVec
	droppedRows    *prometheus.CounterVec
	droppedColumns *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	partitionRows  *prometheus.GaugeVec
	lastRun        prometheus.Gauge
}

// NewRecorder creates a Recorder with a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_rows",
			Help:      "Rows in the dataset after the stage.",
		}, []string{"stage"}),
		columns: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_columns",
			Help:      "Columns in the dataset after the stage.",
		}, []string{"stage"}),
		droppedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Rows removed by the stage.",
		}, []string{"stage"}),
		droppedColumns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_columns_total",
			Help:      "Columns removed by the stage.",
		}, []string{"stage"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in the stage.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage"}),
		partitionRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "partition_rows",
			Help:      "Rows in each output partition.",
		}, []string{"partition"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}
	r.registry.MustRegister(r.rows, r.columns, r.droppedRows, r.droppedColumns,
		r.duration, r.partitionRows, r.lastRun)
	return r
}

// Registry exposes the registry, e.g. for promhttp or testutil.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveStage records the shape change of one stage. A stage that grows the
// dataset records zero dropped rows or columns.
func (r *Recorder) ObserveStage(stage string, before, after frame.Shape, elapsed time.Duration) {
	r.rows.WithLabelValues(stage).Set(float64(after.Rows))
	r.columns.WithLabelValues(stage).Set(float64(after.Cols))
	r.droppedRows.WithLabelValues(stage).Add(float64(max(before.Rows-after.Rows, 0)))
	r.droppedColumns.WithLabelValues(stage).Add(float64(max(before.Cols-after.Cols, 0)))
	r.duration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObservePartition records the row count of a train, validate or test partition.
func (r *Recorder) ObservePartition(partition string, rows int) {
	r.partitionRows.WithLabelValues(partition).Set(float64(rows))
}

// MarkFinished stamps the run completion time.
func (r *Recorder) MarkFinished(t time.Time) {
	r.lastRun.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric in the text exposition format to path,
// replacing the file atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}
