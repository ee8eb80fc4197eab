package preprocessing

import (
	"context"
	"time"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// Observer is notified after every successful stage.
type Observer interface {
	ObserveStage(stage string, before, after frame.Shape, elapsed time.Duration)
}

// Pipeline runs steps in order, each on the output of the previous one.
type Pipeline struct {
	steps    []model.Step
	logger   log.Logger
	observer Observer
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger; by default the "Pipeline" logger of the default provider.
func WithLogger(l log.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// WithObserver registers an Observer.
func WithObserver(o Observer) PipelineOption {
	return func(p *Pipeline) { p.observer = o }
}

// NewPipeline creates a pipeline of steps.
func NewPipeline(steps []model.Step, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		steps:  append([]model.Step(nil), steps...),
		logger: log.GetLoggerWithName("Pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Stages returns the step names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run applies every step to f. A failing or panicking step stops the run with a
// StageError naming it.
func (p *Pipeline) Run(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	current := f
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}

		start := time.Now()
		next, err := runStep(ctx, step, current)
		elapsed := time.Since(start)
		if err != nil {
			p.logger.Error("stage failed", err,
				log.StageKey, step.Name(),
				log.RowsInKey, current.NumRows(),
			)
			return nil, errors.NewStageError(step.Name(), "apply", err)
		}

		before, after := current.Shape(), next.Shape()
		p.logger.Info("stage finished",
			log.StageKey, step.Name(),
			log.RowsInKey, before.Rows,
			log.RowsOutKey, after.Rows,
			log.ColumnsInKey, before.Cols,
			log.ColumnsOutKey, after.Cols,
			log.DurationMsKey, elapsed.Milliseconds(),
		)
		if p.observer != nil {
			p.observer.ObserveStage(step.Name(), before, after, elapsed)
		}
		current = next
	}
	return current, nil
}

func runStep(ctx context.Context, step model.Step, f *frame.Frame) (out *frame.Frame, err error) {
	defer errors.Recover(&err, step.Name())
	out, err = step.Apply(ctx, f)
	if err == nil && out == nil {
		err = errors.NewValueError(step.Name(), "step returned no frame")
	}
	return out, err
}
