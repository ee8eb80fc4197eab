package preprocessing

import (
	"sort"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// ColumnNulls is the missing-value tally of one column.
type ColumnNulls struct {
	Column  string
	Missing int
	// Percent is Missing over the row count, times 100.
	Percent float64
}

// RowNullGroup counts the rows that miss the same number of values.
type RowNullGroup struct {
	MissingCount int
	// MissingPercent is MissingCount over the column count, times 100.
	MissingPercent float64
	Rows           int
}

// NullReport is the diagnostic produced by ReportNulls. It is derived from a
// frame and never stored.
type NullReport struct {
	Columns []ColumnNulls
	Rows    []RowNullGroup
}

// TotalMissing returns the number of missing cells.
func (r NullReport) TotalMissing() int {
	total := 0
	for _, c := range r.Columns {
		total += c.Missing
	}
	return total
}

// NullsByColumn reports, for every column in order, how many rows miss a value.
// A frame without rows reports 0 percent.
func NullsByColumn(f *frame.Frame) []ColumnNulls {
	rows := float64(f.NumRows())
	out := make([]ColumnNulls, 0, f.NumCols())
	for _, c := range f.Columns() {
		missing := c.MissingCount()
		out = append(out, ColumnNulls{
			Column:  c.Name(),
			Missing: missing,
			Percent: errors.SafeDivide(float64(missing), rows) * 100,
		})
	}
	return out
}

// NullsByRow counts missing values per row, groups rows by that count and returns
// one entry per distinct count, ascending.
func NullsByRow(f *frame.Frame) []RowNullGroup {
	missing := missingPerRow(f)
	tally := make(map[int]int)
	for _, m := range missing {
		tally[m]++
	}

	cols := float64(f.NumCols())
	out := make([]RowNullGroup, 0, len(tally))
	for count, rows := range tally {
		out = append(out, RowNullGroup{
			MissingCount:   count,
			MissingPercent: errors.SafeDivide(float64(count), cols) * 100,
			Rows:           rows,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MissingCount < out[j].MissingCount })
	return out
}

// ReportNulls returns both the per-column and the grouped per-row reports.
func ReportNulls(f *frame.Frame) NullReport {
	return NullReport{
		Columns: NullsByColumn(f),
		Rows:    NullsByRow(f),
	}
}

func missingPerRow(f *frame.Frame) []int {
	missing := make([]int, f.NumRows())
	for _, c := range f.Columns() {
		for r := range missing {
			if c.IsMissing(r) {
				missing[r]++
			}
		}
	}
	return missing
}
