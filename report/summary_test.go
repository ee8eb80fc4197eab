package report

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/YuminosukeSato/wrangle/core/frame"
)

func fixture() *frame.Frame {
	return frame.MustNew(
		frame.NewNumeric("x", []float64{1, 2, 3, 4, math.NaN()}),
		frame.NewCategorical("c", []string{"b", "a", "b", "", "a"}, []bool{true, true, true, false, true}),
		frame.NewNumeric("z", []float64{7, 7, 7, 7, 7}),
	)
}

func TestInfo(t *testing.T) {
	got := Info(fixture())
	want := []ColumnInfo{
		{Name: "x", Kind: frame.Numeric, NonNull: 4},
		{Name: "c", Kind: frame.Categorical, NonNull: 4},
		{Name: "z", Kind: frame.Numeric, NonNull: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Info = %+v, want %+v", got, want)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(fixture())
	if len(got) != 2 || got[0].Column != "x" || got[1].Column != "z" {
		t.Fatalf("Describe columns = %+v", got)
	}
	x := got[0]
	if x.Count != 4 || x.Mean != 2.5 || x.Min != 1 || x.Max != 4 || x.Q50 != 2.5 {
		t.Errorf("x stats = %+v", x)
	}
	if math.Abs(x.Std-math.Sqrt(5.0/3.0)) > 1e-12 {
		t.Errorf("x std = %v, want sample std", x.Std)
	}
	if x.Q25 != 1.75 || x.Q75 != 3.25 {
		t.Errorf("x quartiles = %v %v", x.Q25, x.Q75)
	}
	if got[1].Std != 0 {
		t.Errorf("constant std = %v", got[1].Std)
	}
}

func TestDescribeManyColumnsParallel(t *testing.T) {
	cols := make([]*frame.Column, 12)
	for i := range cols {
		cols[i] = frame.NewNumeric(string(rune('a'+i)), []float64{float64(i), float64(i + 2)})
	}
	got := Describe(frame.MustNew(cols...))
	for i, s := range got {
		if s.Column != string(rune('a'+i)) || s.Mean != float64(i+1) {
			t.Errorf("column %d = %+v", i, s)
		}
	}
}

func TestDescribeAllMissing(t *testing.T) {
	got := Describe(frame.MustNew(frame.NewNumeric("x", []float64{math.NaN()})))
	if got[0].Count != 0 || !math.IsNaN(got[0].Mean) || !math.IsNaN(got[0].Max) {
		t.Errorf("stats = %+v", got[0])
	}
}

func TestCategoryCounts(t *testing.T) {
	vcs := CountValues(fixture())
	c := vcs[1]
	want := []ValueCount{{Value: "b", Count: 2}, {Value: "a", Count: 2}}
	if !reflect.DeepEqual(c.Values, want) || c.Missing != 1 {
		t.Errorf("counts = %+v missing %d", c.Values, c.Missing)
	}
	if vcs[0].Missing != 1 || len(vcs[0].Bins) != NumBins {
		t.Errorf("numeric counts = %+v", vcs[0])
	}
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]float64{0, 10, 5, 5, math.NaN()}, 10)
	if len(bins) != 10 {
		t.Fatalf("bins = %d", len(bins))
	}
	if math.Abs(bins[0].Lower-(-0.01)) > 1e-12 || bins[9].Upper != 10 {
		t.Errorf("edges = %v .. %v", bins[0].Lower, bins[9].Upper)
	}
	counts := make([]int, len(bins))
	total := 0
	for i, b := range bins {
		counts[i] = b.Count
		total += b.Count
	}
	// 5 lies on the upper edge of bin 4.
	if want := []int{1, 0, 0, 0, 2, 0, 0, 0, 0, 1}; !reflect.DeepEqual(counts, want) {
		t.Errorf("counts = %v, want %v", counts, want)
	}
	if total != 4 {
		t.Errorf("total = %d, want 4", total)
	}

	flat := Histogram([]float64{2, 2}, 10)
	if math.Abs(flat[0].Lower-1.998) > 1e-12 || math.Abs(flat[9].Upper-2.002) > 1e-12 || flat[4].Count+flat[5].Count != 2 {
		t.Errorf("constant edges = %v .. %v", flat[0].Lower, flat[9].Upper)
	}
	zero := Histogram([]float64{0}, 10)
	if zero[0].Lower != -0.001 || zero[9].Upper != 0.001 {
		t.Errorf("zero edges = %v .. %v", zero[0].Lower, zero[9].Upper)
	}
	if Histogram([]float64{math.NaN()}, 10) != nil {
		t.Error("all-missing histogram should be nil")
	}
}

func TestSummarizeRender(t *testing.T) {
	s := Summarize(fixture())
	if s.Shape != (frame.Shape{Rows: 5, Cols: 3}) || s.Head.NumRows() != 5 {
		t.Errorf("shape %v head %d", s.Shape, s.Head.NumRows())
	}
	if s.Nulls.TotalMissing() != 2 {
		t.Errorf("missing = %d", s.Nulls.TotalMissing())
	}

	var buf bytes.Buffer
	if err := s.Render(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Shape: (5, 3)", "Describe:", "Missing values by row:", "c (categorical, 1 missing)", "NaN"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}
