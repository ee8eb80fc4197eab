package preprocessing

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

type stageRecord struct {
	stage         string
	before, after frame.Shape
}

type recordingObserver struct {
	stages []stageRecord
}

func (r *recordingObserver) ObserveStage(stage string, before, after frame.Shape, _ time.Duration) {
	r.stages = append(r.stages, stageRecord{stage, before, after})
}

func TestPipelineRun(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	obs := &recordingObserver{}
	p := NewPipeline([]model.Step{
		NewPruner(DefaultPropReqCols, DefaultPropReqRows),
		NullDropper{},
		NewOutlierFilter(),
	}, WithLogger(logger), WithObserver(obs))

	if got := p.Stages(); !reflect.DeepEqual(got, []string{"prune", "drop_nulls", "outliers"}) {
		t.Errorf("Stages = %v", got)
	}

	f := frame.MustNew(
		num("x", 1, 2, 3, 4, 100, nan),
		num("y", 1, 1, 2, 2, 1, 2),
	)
	out, err := p.Run(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Index(); !reflect.DeepEqual(got, []int{0, 1, 2, 3}) {
		t.Errorf("rows = %v", got)
	}

	want := []stageRecord{
		// round(0.75*2) = 2 present values required, so the NaN row goes at prune.
		{"prune", frame.Shape{Rows: 6, Cols: 2}, frame.Shape{Rows: 5, Cols: 2}},
		{"drop_nulls", frame.Shape{Rows: 5, Cols: 2}, frame.Shape{Rows: 5, Cols: 2}},
		{"outliers", frame.Shape{Rows: 5, Cols: 2}, frame.Shape{Rows: 4, Cols: 2}},
	}
	if !reflect.DeepEqual(obs.stages, want) {
		t.Errorf("observed %+v, want %+v", obs.stages, want)
	}

	if !logger.ContainsField(log.StageKey, "outliers") || !logger.ContainsField(log.RowsOutKey, 4.0) {
		t.Error("stage log line missing")
	}
}

func TestPipelineStageError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPipeline([]model.Step{
		model.StepFunc{StageName: "explode", Fn: func(context.Context, *frame.Frame) (*frame.Frame, error) {
			return nil, boom
		}},
	}, WithLogger(noopLogger()))

	_, err := p.Run(context.Background(), frame.MustNew())
	var se *errors.StageError
	if !errors.As(err, &se) || se.Stage != "explode" {
		t.Fatalf("err = %v, want StageError", err)
	}
	if !errors.Is(err, boom) {
		t.Error("cause not reachable through errors.Is")
	}
}

func TestPipelineRecoversPanic(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline([]model.Step{
		model.StepFunc{StageName: "bad", Fn: func(context.Context, *frame.Frame) (*frame.Frame, error) {
			var cols []int
			_ = cols[3]
			return nil, nil
		}},
	}, WithLogger(noopLogger()), WithObserver(obs))

	_, err := p.Run(context.Background(), frame.MustNew())
	var pe *errors.PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PanicError", err)
	}
	if pe.Operation != "bad" {
		t.Errorf("Operation = %q", pe.Operation)
	}
	if len(obs.stages) != 0 {
		t.Error("observer called for a failed stage")
	}
}

func TestPipelineNilFrameAndCancel(t *testing.T) {
	p := NewPipeline([]model.Step{
		model.StepFunc{StageName: "nil", Fn: func(context.Context, *frame.Frame) (*frame.Frame, error) {
			return nil, nil
		}},
	}, WithLogger(noopLogger()))
	var ve *errors.ValueError
	if _, err := p.Run(context.Background(), frame.MustNew()); !errors.As(err, &ve) {
		t.Errorf("nil frame err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, frame.MustNew()); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled err = %v", err)
	}
}

func noopLogger() log.Logger {
	l, _ := log.NewTestLogger(log.LevelError + 1)
	return l
}
