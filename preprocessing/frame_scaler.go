package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// FrameScaler applies a MinMaxScaler to named numeric columns of a frame. Other
// columns and the row labels pass through untouched.
type FrameScaler struct {
	Columns []string

	scaler *MinMaxScaler
	logger log.Logger
}

var _ model.FrameTransformer = (*FrameScaler)(nil)

// NewFrameScaler creates a scaler for columns. opts configure the underlying
// MinMaxScaler; feature names are always the column names.
func NewFrameScaler(columns []string, opts ...ScalerOption) *FrameScaler {
	cols := append([]string(nil), columns...)
	opts = append(opts, WithFeatureNames(cols...))
	return &FrameScaler{
		Columns: cols,
		scaler:  NewMinMaxScaler(opts...),
		logger:  log.GetLoggerWithName("FrameScaler"),
	}
}

// Scaler returns the fitted matrix scaler.
func (s *FrameScaler) Scaler() *MinMaxScaler { return s.scaler }

// Fit learns the minimum and maximum of each column from f.
func (s *FrameScaler) Fit(f *frame.Frame) error {
	if len(s.Columns) == 0 {
		return errors.NewValidationError("columns", "at least one column to scale is required", s.Columns)
	}
	if err := s.checkColumns("FrameScaler.Fit", f); err != nil {
		return err
	}
	X, err := f.Matrix(s.Columns...)
	if err != nil {
		return errors.Wrap(err, "FrameScaler.Fit")
	}
	if err := s.scaler.Fit(X); err != nil {
		return err
	}
	s.logger.Debug("fitted min-max scaler",
		log.OperationKey, log.OperationFit,
		log.ColumnsKey, s.Columns,
		log.RowsInKey, f.NumRows(),
	)
	return nil
}

// Transform returns f with the scaled columns replaced.
func (s *FrameScaler) Transform(f *frame.Frame) (*frame.Frame, error) {
	return s.apply(f, "Transform", s.scaler.Transform)
}

// InverseTransform undoes Transform on the scaled columns.
func (s *FrameScaler) InverseTransform(f *frame.Frame) (*frame.Frame, error) {
	return s.apply(f, "InverseTransform", s.scaler.InverseTransform)
}

// FitTransform fits on f and returns f scaled.
func (s *FrameScaler) FitTransform(f *frame.Frame) (*frame.Frame, error) {
	if err := s.Fit(f); err != nil {
		return nil, err
	}
	return s.Transform(f)
}

func (s *FrameScaler) apply(f *frame.Frame, method string, fn func(X mat.Matrix) (mat.Matrix, error)) (*frame.Frame, error) {
	if !s.scaler.IsFitted() {
		return nil, errors.NewNotFittedError("FrameScaler", method)
	}
	op := "FrameScaler." + method
	if err := s.checkColumns(op, f); err != nil {
		return nil, err
	}
	if f.NumRows() == 0 {
		return f, nil
	}

	X, err := f.Matrix(s.Columns...)
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	Y, err := fn(X)
	if err != nil {
		return nil, err
	}

	out := f
	values := make([]float64, f.NumRows())
	for j, name := range s.Columns {
		for i := range values {
			values[i] = Y.At(i, j)
		}
		if out, err = out.Replace(frame.NewNumeric(name, values)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *FrameScaler) checkColumns(op string, f *frame.Frame) error {
	for _, name := range s.Columns {
		c, err := f.Column(name)
		if err != nil {
			return errors.NewColumnNotFoundError(op, name)
		}
		if c.Kind() != frame.Numeric {
			return errors.NewColumnKindError(op, name, frame.Numeric.String(), c.Kind().String())
		}
	}
	return nil
}

// ScaleData fits a min-max scaler on the columns of train only and applies it to
// train, validate and test. It returns the scaled split and the fitted scaler.
func ScaleData(train, validate, test *frame.Frame, columns []string, opts ...ScalerOption) (Split, *FrameScaler, error) {
	scaler := NewFrameScaler(columns, opts...)
	if err := scaler.Fit(train); err != nil {
		return Split{}, nil, err
	}

	var out Split
	var err error
	if out.Train, err = scaler.Transform(train); err != nil {
		return Split{}, nil, err
	}
	if out.Validate, err = scaler.Transform(validate); err != nil {
		return Split{}, nil, err
	}
	if out.Test, err = scaler.Transform(test); err != nil {
		return Split{}, nil, err
	}
	return out, scaler, nil
}
