package model

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrangle/core/frame"
)

// Transformer learns parameters from a matrix and applies them to others.
type Transformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (mat.Matrix, error)
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// FrameTransformer is a Transformer over named columns of a frame.
type FrameTransformer interface {
	Fit(f *frame.Frame) error
	Transform(f *frame.Frame) (*frame.Frame, error)
	FitTransform(f *frame.Frame) (*frame.Frame, error)
}

// Step is one stage of a wrangling pipeline: a pure function from frame to frame.
type Step interface {
	// Name is the stage name used in logs, metrics and errors.
	Name() string
	Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error)
}

// StepFunc adapts a function to Step.
type StepFunc struct {
	StageName string
	Fn        func(ctx context.Context, f *frame.Frame) (*frame.Frame, error)
}

func (s StepFunc) Name() string { return s.StageName }

func (s StepFunc) Apply(ctx context.Context, f *frame.Frame) (*frame.Frame, error) {
	return s.Fn(ctx, f)
}
