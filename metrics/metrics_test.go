package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrangle/core/frame"
)

func TestObserveStage(t *testing.T) {
	r := NewRecorder()

	r.ObserveStage("prune", frame.Shape{Rows: 10, Cols: 5}, frame.Shape{Rows: 8, Cols: 4}, 3*time.Millisecond)
	r.ObserveStage("outliers", frame.Shape{Rows: 8, Cols: 4}, frame.Shape{Rows: 6, Cols: 4}, time.Millisecond)
	r.ObserveStage("outliers", frame.Shape{Rows: 6, Cols: 4}, frame.Shape{Rows: 5, Cols: 4}, time.Millisecond)

	assert.Equal(t, 8.0, testutil.ToFloat64(r.rows.WithLabelValues("prune")))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.columns.WithLabelValues("prune")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.droppedRows.WithLabelValues("prune")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.droppedColumns.WithLabelValues("prune")))

	assert.Equal(t, 5.0, testutil.ToFloat64(r.rows.WithLabelValues("outliers")), "gauge keeps the latest value")
	assert.Equal(t, 3.0, testutil.ToFloat64(r.droppedRows.WithLabelValues("outliers")), "counter accumulates")
	assert.Equal(t, 0.0, testutil.ToFloat64(r.droppedColumns.WithLabelValues("outliers")))

	assert.Equal(t, 2, testutil.CollectAndCount(r.duration))
}

func TestObserveStageGrowthIsNotNegative(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage("impute", frame.Shape{Rows: 3, Cols: 2}, frame.Shape{Rows: 3, Cols: 3}, 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(r.droppedColumns.WithLabelValues("impute")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage("dedup", frame.Shape{Rows: 4, Cols: 2}, frame.Shape{Rows: 3, Cols: 2}, time.Millisecond)
	r.ObservePartition("train", 2)
	r.ObservePartition("test", 1)
	r.MarkFinished(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "wrangle.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`wrangle_stage_rows{stage="dedup"} 3`,
		`wrangle_dropped_rows_total{stage="dedup"} 1`,
		`wrangle_partition_rows{partition="train"} 2`,
		`wrangle_last_run_timestamp_seconds 1.7e+09`,
		"# TYPE wrangle_stage_duration_seconds histogram",
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in:\n%s", want, text)
	}
}

func TestWriteTextfileBadPath(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "wrangle.prom"))
	assert.Error(t, err)
}
