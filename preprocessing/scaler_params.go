package preprocessing

import (
	"github.com/YuminosukeSato/wrangle/core/model"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// ScalerParams is the fitted state of a FrameScaler, enough to transform or
// inverse-transform new data without the training partition.
type ScalerParams struct {
	Columns      []string
	DataMin      []float64
	DataMax      []float64
	Scale        []float64
	FeatureRange [2]float64
}

// Params returns the fitted state.
func (s *FrameScaler) Params() (ScalerParams, error) {
	if !s.scaler.IsFitted() {
		return ScalerParams{}, errors.NewNotFittedError("FrameScaler", "Params")
	}
	m := s.scaler
	return ScalerParams{
		Columns:      append([]string(nil), s.Columns...),
		DataMin:      append([]float64(nil), m.DataMin...),
		DataMax:      append([]float64(nil), m.DataMax...),
		Scale:        append([]float64(nil), m.Scale...),
		FeatureRange: m.FeatureRange,
	}, nil
}

// RestoreFrameScaler rebuilds a fitted FrameScaler from p.
func RestoreFrameScaler(p ScalerParams) (*FrameScaler, error) {
	n := len(p.Columns)
	if n == 0 {
		return nil, errors.NewValidationError("columns", "at least one column is required", p.Columns)
	}
	for name, v := range map[string][]float64{"data_min": p.DataMin, "data_max": p.DataMax, "scale": p.Scale} {
		if len(v) != n {
			return nil, errors.NewDimensionError("RestoreFrameScaler."+name, n, len(v), 1)
		}
	}
	if !(p.FeatureRange[0] < p.FeatureRange[1]) {
		return nil, errors.NewValidationError("feature_range", "minimum must be smaller than maximum", p.FeatureRange)
	}

	s := NewFrameScaler(p.Columns, WithFeatureRange(p.FeatureRange[0], p.FeatureRange[1]))
	m := s.scaler
	m.DataMin = append([]float64(nil), p.DataMin...)
	m.DataMax = append([]float64(nil), p.DataMax...)
	m.Scale = append([]float64(nil), p.Scale...)
	m.NFeatures = n
	m.state.SetFitted(n, 0)
	return s, nil
}

// SaveScaler writes the fitted state of s to path.
func SaveScaler(path string, s *FrameScaler) error {
	p, err := s.Params()
	if err != nil {
		return err
	}
	return model.SaveModel(p, path)
}

// LoadScaler reads a scaler written by SaveScaler.
func LoadScaler(path string) (*FrameScaler, error) {
	var p ScalerParams
	if err := model.LoadModel(&p, path); err != nil {
		return nil, err
	}
	return RestoreFrameScaler(p)
}
