package preprocessing

import (
	"context"
	"math"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// DefaultIQRMultiplier is the fence distance in interquartile ranges.
const DefaultIQRMultiplier = 1.5

// Fences are the quartiles and cut points computed for one column.
type Fences struct {
	Column string
	Q1     float64
	Q3     float64
	IQR    float64
	Lower  float64
	Upper  float64
	// Removed is the number of rows this column's fences dropped.
	Removed int
}

// OutlierOption configures FilterOutliers.
type OutlierOption func(*outlierConfig)

type outlierConfig struct {
	multiplier float64
}

// WithIQRMultiplier sets the fence distance (default 1.5).
func WithIQRMultiplier(k float64) OutlierOption {
	return func(c *outlierConfig) { c.multiplier = k }
}

// FilterOutliers keeps the rows whose value lies strictly between
// Q1-k*IQR and Q3+k*IQR, for every numeric column in column order.
//
// Each column's quartiles are computed on the frame already narrowed by the
// columns before it, so the result depends on column order. A row missing a
// numeric value is always removed. Categorical columns are ignored.
func FilterOutliers(f *frame.Frame, opts ...OutlierOption) (*frame.Frame, error) {
	out, _, err := FilterOutliersWithFences(f, opts...)
	return out, err
}

// FilterOutliersWithFences is FilterOutliers that also returns the fences used
// for each numeric column.
func FilterOutliersWithFences(f *frame.Frame, opts ...OutlierOption) (*frame.Frame, []Fences, error) {
	cfg := outlierConfig{multiplier: DefaultIQRMultiplier}
	for _, opt := range opts {
		opt(&cfg)
	}
	if math.IsNaN(cfg.multiplier) || math.IsInf(cfg.multiplier, 0) || cfg.multiplier < 0 {
		return nil, nil, errors.NewValidationError("iqr_multiplier", "must be a finite non-negative number", cfg.multiplier)
	}

	current := f
	fences := make([]Fences, 0, len(f.NumericNames()))
	for _, name := range f.NumericNames() {
		col, err := current.Column(name)
		if err != nil {
			return nil, nil, err
		}
		fc := computeFences(name, col.Floats(), cfg.multiplier)
		next := current.Filter(func(r int) bool {
			v := col.Float(r)
			return v > fc.Lower && v < fc.Upper
		})
		fc.Removed = current.NumRows() - next.NumRows()
		fences = append(fences, fc)
		current = next
	}
	return current, fences, nil
}

func computeFences(name string, values []float64, k float64) Fences {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	return Fences{
		Column: name,
		Q1:     q1,
		Q3:     q3,
		IQR:    iqr,
		Lower:  q1 - k*iqr,
		Upper:  q3 + k*iqr,
	}
}

// OutlierFilter is the pipeline step running FilterOutliers.
type OutlierFilter struct {
	Multiplier float64

	logger log.Logger
}

// NewOutlierFilter creates an OutlierFilter with the default multiplier.
func NewOutlierFilter() *OutlierFilter {
	return &OutlierFilter{
		Multiplier: DefaultIQRMultiplier,
		logger:     log.GetLoggerWithName("OutlierFilter"),
	}
}

func (o *OutlierFilter) Name() string { return log.StageOutliers }

func (o *OutlierFilter) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	out, fences, err := FilterOutliersWithFences(f, WithIQRMultiplier(o.Multiplier))
	if err != nil {
		return nil, err
	}
	for _, fc := range fences {
		o.logger.Debug("outlier fences",
			log.ColumnKey, fc.Column,
			"q1", fc.Q1,
			"q3", fc.Q3,
			"lower", fc.Lower,
			"upper", fc.Upper,
			"removed", fc.Removed,
		)
	}
	return out, nil
}
