package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// constantRangeTol is the largest data range treated as zero.
const constantRangeTol = 10 * 2.220446049250313e-16

// MinMaxScaler rescales each feature linearly into FeatureRange using the
// minimum and maximum seen during Fit. Missing values (NaN) are ignored when
// fitting and stay NaN when transforming. Values outside the fitted range are
// not clipped.
type MinMaxScaler struct {
	state *model.StateManager

	// DataMin is the per-feature minimum of the training data.
	DataMin []float64

	// DataMax is the per-feature maximum of the training data.
	DataMax []float64

	// Scale is the per-feature divisor, DataMax - DataMin, or 1 for a constant feature.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// FeatureRange is the output range [min, max].
	FeatureRange [2]float64

	// FeatureNames labels features in warnings and errors. Optional.
	FeatureNames []string

	// StrictRange makes Fit fail on a constant feature instead of falling back.
	StrictRange bool
}

var _ model.Transformer = (*MinMaxScaler)(nil)

// ScalerOption configures a MinMaxScaler.
type ScalerOption func(*MinMaxScaler)

// WithStrictRange makes Fit return a DegenerateColumnError when a feature has the
// same value in every training row. Without it the feature gets Scale 1, every
// training value maps to FeatureRange[0] and a DegenerateColumnWarning is emitted.
func WithStrictRange(strict bool) ScalerOption {
	return func(m *MinMaxScaler) { m.StrictRange = strict }
}

// WithFeatureRange sets the output range.
func WithFeatureRange(lo, hi float64) ScalerOption {
	return func(m *MinMaxScaler) { m.FeatureRange = [2]float64{lo, hi} }
}

// WithFeatureNames names the features for warnings and errors.
func WithFeatureNames(names ...string) ScalerOption {
	return func(m *MinMaxScaler) { m.FeatureNames = append([]string(nil), names...) }
}

// NewMinMaxScaler creates a MinMaxScaler with output range [0, 1].
//
// Example:
//
//	scaler := preprocessing.NewMinMaxScaler(preprocessing.WithStrictRange(true))
//	if err := scaler.Fit(XTrain); err != nil { ... }
//	XTest, err := scaler.Transform(XTest)
func NewMinMaxScaler(opts ...ScalerOption) *MinMaxScaler {
	m := &MinMaxScaler{
		state:        model.NewStateManager("MinMaxScaler"),
		FeatureRange: [2]float64{0, 1},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsFitted reports whether Fit has succeeded.
func (m *MinMaxScaler) IsFitted() bool { return m.state.IsFitted() }

// Fit records the per-feature minimum and maximum of X.
//
// Parameters:
//   - X: training data (n_samples x n_features)
//
// Returns:
//   - error: ErrEmptyData, a ValidationError for a bad FeatureRange, a
//     NumericalInstabilityError for infinite values, or a DegenerateColumnError
//     in strict mode
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MinMaxScaler.Fit")
	}
	if !(m.FeatureRange[0] < m.FeatureRange[1]) {
		return errors.NewValidationError("feature_range", "minimum must be smaller than maximum", m.FeatureRange)
	}

	dataMin := make([]float64, c)
	dataMax := make([]float64, c)
	scale := make([]float64, c)
	for j := 0; j < c; j++ {
		lo, hi := math.NaN(), math.NaN()
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(lo) || v < lo {
				lo = v
			}
			if math.IsNaN(hi) || v > hi {
				hi = v
			}
		}
		if err := errors.CheckFinite("MinMaxScaler.Fit", m.featureName(j), lo, hi); err != nil {
			return err
		}
		dataMin[j], dataMax[j] = lo, hi

		// An all-missing feature keeps NaN bounds and transforms to NaN.
		dataRange := hi - lo
		switch {
		case math.IsNaN(dataRange):
			if m.StrictRange {
				return errors.NewDegenerateColumnError(m.featureName(j), lo)
			}
			errors.Warn(errors.NewDegenerateColumnWarning(m.featureName(j), lo))
			scale[j] = 1
		case dataRange < constantRangeTol:
			if m.StrictRange {
				return errors.NewDegenerateColumnError(m.featureName(j), lo)
			}
			errors.Warn(errors.NewDegenerateColumnWarning(m.featureName(j), lo))
			scale[j] = 1
		default:
			scale[j] = dataRange
		}
	}

	m.DataMin, m.DataMax, m.Scale = dataMin, dataMax, scale
	m.NFeatures = c
	m.state.SetFitted(c, r)
	return nil
}

// Transform scales X with the fitted parameters.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", m.NFeatures, c, 1)
	}

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			scaled := (X.At(i, j)-m.DataMin[j])/m.Scale[j]*featureRange + m.FeatureRange[0]
			result.Set(i, j, scaled)
		}
	}
	return result, nil
}

// FitTransform fits on X and returns X scaled.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled values back to the original units.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if c != m.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", m.NFeatures, c, 1)
	}

	featureRange := m.FeatureRange[1] - m.FeatureRange[0]
	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			original := (X.At(i, j)-m.FeatureRange[0])/featureRange*m.Scale[j] + m.DataMin[j]
			result.Set(i, j, original)
		}
	}
	return result, nil
}

// GetParams returns the scaler configuration.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range": m.FeatureRange,
		"strict_range":  m.StrictRange,
	}
}

func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g])", m.FeatureRange[0], m.FeatureRange[1])
	}
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g], n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.NFeatures)
}

func (m *MinMaxScaler) featureName(j int) string {
	if j < len(m.FeatureNames) {
		return m.FeatureNames[j]
	}
	return fmt.Sprintf("x%d", j)
}
