// Package report builds the exploratory summary of a frame: shape, head, column
// info, descriptive statistics, missing values and value counts.
package report

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/core/parallel"
	"github.com/YuminosukeSato/wrangle/preprocessing"
)

const (
	// HeadRows is the number of rows shown in Summary.Head.
	HeadRows = 5
	// NumBins is the number of equal-width bins for numeric value counts.
	NumBins = 10

	// parallelThreshold is the column count above which statistics run in parallel.
	parallelThreshold = 4
)

// ColumnInfo describes one column.
type ColumnInfo struct {
	Name    string
	Kind    frame.Kind
	NonNull int
}

// ColumnStats are the descriptive statistics of a numeric column, computed over
// present values. All are NaN when the column has none.
type ColumnStats struct {
	Column string
	Count  int
	Mean   float64
	// Std is the sample standard deviation.
	Std float64
	Min float64
	Q25 float64
	Q50 float64
	Q75 float64
	Max float64
}

// ValueCount is one distinct categorical value and its frequency.
type ValueCount struct {
	Value string
	Count int
}

// Bin is a right-closed interval (Lower, Upper] and the number of values in it.
type Bin struct {
	Lower float64
	Upper float64
	Count int
}

// ValueCounts are the frequencies of one column: Values for categorical columns,
// Bins for numeric ones. Missing values are only counted in Missing.
type ValueCounts struct {
	Column  string
	Kind    frame.Kind
	Values  []ValueCount
	Bins    []Bin
	Missing int
}

// Summary is the full report of a frame.
type Summary struct {
	Shape       frame.Shape
	Head        *frame.Frame
	Info        []ColumnInfo
	Describe    []ColumnStats
	Nulls       preprocessing.NullReport
	ValueCounts []ValueCounts
}

// Summarize computes every section of the report.
func Summarize(f *frame.Frame) Summary {
	return Summary{
		Shape:       f.Shape(),
		Head:        f.Head(HeadRows),
		Info:        Info(f),
		Describe:    Describe(f),
		Nulls:       preprocessing.ReportNulls(f),
		ValueCounts: CountValues(f),
	}
}

// Info lists every column with its kind and non-null count.
func Info(f *frame.Frame) []ColumnInfo {
	out := make([]ColumnInfo, 0, f.NumCols())
	for _, c := range f.Columns() {
		out = append(out, ColumnInfo{Name: c.Name(), Kind: c.Kind(), NonNull: c.Len() - c.MissingCount()})
	}
	return out
}

// Describe computes ColumnStats for every numeric column, in column order.
func Describe(f *frame.Frame) []ColumnStats {
	names := f.NumericNames()
	return parallel.Map(len(names), parallelThreshold, func(i int) ColumnStats {
		c, _ := f.Column(names[i])
		return describeColumn(c)
	})
}

func describeColumn(c *frame.Column) ColumnStats {
	x := present(c.Floats())
	s := ColumnStats{Column: c.Name(), Count: len(x)}
	if len(x) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}
	s.Mean = stat.Mean(x, nil)
	s.Std = stat.StdDev(x, nil)
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Q25 = preprocessing.Quantile(x, 0.25)
	s.Q50 = preprocessing.Quantile(x, 0.5)
	s.Q75 = preprocessing.Quantile(x, 0.75)
	return s
}

// CountValues computes ValueCounts for every column, in column order.
func CountValues(f *frame.Frame) []ValueCounts {
	cols := f.Columns()
	return parallel.Map(len(cols), parallelThreshold, func(i int) ValueCounts {
		c := cols[i]
		vc := ValueCounts{Column: c.Name(), Kind: c.Kind(), Missing: c.MissingCount()}
		if c.Kind() == frame.Numeric {
			vc.Bins = Histogram(c.Floats(), NumBins)
		} else {
			vc.Values = categoryCounts(c)
		}
		return vc
	})
}

// categoryCounts orders values by count, descending; ties keep first appearance.
func categoryCounts(c *frame.Column) []ValueCount {
	pos := make(map[string]int)
	var out []ValueCount
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			continue
		}
		v := c.Str(i)
		if j, ok := pos[v]; ok {
			out[j].Count++
			continue
		}
		pos[v] = len(out)
		out = append(out, ValueCount{Value: v, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Histogram counts the present values of x in n equal-width right-closed bins
// spanning [min, max]. The lowest edge is moved down by 0.1% of the range so the
// minimum falls inside the first bin. When every value is equal the bins span
// value ± 0.1% (± 0.001 for zero). It returns nil when x has no present values.
func Histogram(x []float64, n int) []Bin {
	x = present(x)
	if len(x) == 0 || n <= 0 {
		return nil
	}

	lo, hi := floats.Min(x), floats.Max(x)
	adjustLow := true
	if lo == hi {
		if lo != 0 {
			lo -= 0.001 * math.Abs(lo)
			hi += 0.001 * math.Abs(hi)
		} else {
			lo, hi = -0.001, 0.001
		}
		adjustLow = false
	}

	edges := make([]float64, n+1)
	floats.Span(edges, lo, hi)
	edges[n] = hi
	if adjustLow {
		edges[0] -= (hi - lo) * 0.001
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lower: edges[i], Upper: edges[i+1]}
	}
	for _, v := range x {
		for i := range bins {
			if v > bins[i].Lower && v <= bins[i].Upper {
				bins[i].Count++
				break
			}
		}
	}
	return bins
}

func present(x []float64) []float64 {
	out := x[:0:0]
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
