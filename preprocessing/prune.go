package preprocessing

import (
	"context"
	"math"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

const (
	// DefaultPropReqCols is the share of rows a column must fill to be kept.
	DefaultPropReqCols = 0.5
	// DefaultPropReqRows is the share of remaining columns a row must fill to be kept.
	DefaultPropReqRows = 0.75
)

// Threshold returns round(prop * n) with ties to even.
func Threshold(prop float64, n int) int {
	return int(math.RoundToEven(prop * float64(n)))
}

// HandleMissing drops the columns with fewer than round(propReqCols*rows) present
// values, then the rows with fewer than round(propReqRows*cols) present values
// counted over the remaining columns.
func HandleMissing(f *frame.Frame, propReqCols, propReqRows float64) (*frame.Frame, error) {
	if err := validateProportion("prop_req_cols", propReqCols); err != nil {
		return nil, err
	}
	if err := validateProportion("prop_req_rows", propReqRows); err != nil {
		return nil, err
	}

	out, err := dropSparseColumns(f, Threshold(propReqCols, f.NumRows()))
	if err != nil {
		return nil, err
	}
	return dropSparseRows(out, Threshold(propReqRows, out.NumCols())), nil
}

func validateProportion(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return errors.NewValidationError(name, "must be within [0, 1]", p)
	}
	return nil
}

func dropSparseColumns(f *frame.Frame, threshold int) (*frame.Frame, error) {
	var drop []string
	for _, c := range f.Columns() {
		if c.Len()-c.MissingCount() < threshold {
			drop = append(drop, c.Name())
		}
	}
	if len(drop) == 0 {
		return f, nil
	}
	return f.Drop(drop...)
}

func dropSparseRows(f *frame.Frame, threshold int) *frame.Frame {
	missing := missingPerRow(f)
	cols := f.NumCols()
	return f.Filter(func(r int) bool {
		return cols-missing[r] >= threshold
	})
}

// Pruner is the pipeline step running HandleMissing.
type Pruner struct {
	PropReqCols float64
	PropReqRows float64

	logger log.Logger
}

// NewPruner creates a Pruner with the given proportions.
func NewPruner(propReqCols, propReqRows float64) *Pruner {
	return &Pruner{
		PropReqCols: propReqCols,
		PropReqRows: propReqRows,
		logger:      log.GetLoggerWithName("Pruner"),
	}
}

func (p *Pruner) Name() string { return log.StagePrune }

func (p *Pruner) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	out, err := HandleMissing(f, p.PropReqCols, p.PropReqRows)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("pruned sparse columns and rows",
		log.ThresholdKey, Threshold(p.PropReqCols, f.NumRows()),
		log.ColumnsInKey, f.NumCols(),
		log.ColumnsOutKey, out.NumCols(),
	)
	return out, nil
}
