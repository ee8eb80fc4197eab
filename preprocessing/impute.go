package preprocessing

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
	"github.com/YuminosukeSato/wrangle/pkg/log"
)

// FillMissing replaces missing values column by column with a constant. Each fill
// value is converted to the column kind with spf13/cast, so "0", 0 and false all
// fill a numeric column with 0.
func FillMissing(f *frame.Frame, fills map[string]any) (*frame.Frame, error) {
	names := make([]string, 0, len(fills))
	for name := range fills {
		names = append(names, name)
	}
	sort.Strings(names)

	out := f
	for _, name := range names {
		col, err := out.Column(name)
		if err != nil {
			return nil, errors.NewColumnNotFoundError("FillMissing", name)
		}
		filled, err := fillColumn(col, fills[name])
		if err != nil {
			return nil, err
		}
		if out, err = out.Replace(filled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func fillColumn(c *frame.Column, value any) (*frame.Column, error) {
	if c.Kind() == frame.Numeric {
		v, err := cast.ToFloat64E(value)
		if err != nil || math.IsNaN(v) {
			return nil, errors.NewValidationError("fill."+c.Name(), "not a number", value)
		}
		values := c.Floats()
		for i := range values {
			if math.IsNaN(values[i]) {
				values[i] = v
			}
		}
		return frame.NewNumeric(c.Name(), values), nil
	}

	v, err := cast.ToStringE(value)
	if err != nil {
		return nil, errors.NewValidationError("fill."+c.Name(), "not convertible to text", value)
	}
	values, valid := c.Strings()
	for i := range values {
		if !valid[i] {
			values[i] = v
		}
	}
	return frame.NewCategorical(c.Name(), values, nil), nil
}

// DropMissing removes every row with at least one missing value.
func DropMissing(f *frame.Frame) *frame.Frame {
	missing := missingPerRow(f)
	return f.Filter(func(r int) bool { return missing[r] == 0 })
}

// DropDuplicates removes rows whose values equal those of a later row, keeping
// the last occurrence. Missing values compare equal to each other.
func DropDuplicates(f *frame.Frame) *frame.Frame {
	n := f.NumRows()
	keep := make([]bool, n)
	seen := make(map[string]struct{}, n)
	for r := n - 1; r >= 0; r-- {
		key := rowKey(f, r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep[r] = true
	}
	return f.Filter(func(r int) bool { return keep[r] })
}

func rowKey(f *frame.Frame, r int) string {
	var b strings.Builder
	for _, c := range f.Columns() {
		switch {
		case c.IsMissing(r):
			b.WriteString("\x00")
		case c.Kind() == frame.Numeric:
			b.WriteString(strconv.FormatFloat(c.Float(r), 'g', -1, 64))
		default:
			b.WriteString(strconv.Quote(c.Str(r)))
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}

// Imputer is the pipeline step running FillMissing.
type Imputer struct {
	Fills map[string]any
}

func (i *Imputer) Name() string { return log.StageImpute }

func (i *Imputer) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	return FillMissing(f, i.Fills)
}

// ColumnDropper removes columns that must not reach the model.
type ColumnDropper struct {
	Columns []string
}

func (d *ColumnDropper) Name() string { return log.StageDrop }

func (d *ColumnDropper) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	if len(d.Columns) == 0 {
		return f, nil
	}
	return f.Drop(d.Columns...)
}

// NullDropper is the pipeline step running DropMissing.
type NullDropper struct{}

func (NullDropper) Name() string { return log.StageDropNulls }

func (NullDropper) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	return DropMissing(f), nil
}

// Deduplicator is the pipeline step running DropDuplicates.
type Deduplicator struct{}

func (Deduplicator) Name() string { return log.StageDedup }

func (Deduplicator) Apply(_ context.Context, f *frame.Frame) (*frame.Frame, error) {
	return DropDuplicates(f), nil
}
