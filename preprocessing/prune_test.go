package preprocessing

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

func TestThreshold(t *testing.T) {
	tests := []struct {
		prop float64
		n    int
		want int
	}{
		{0.5, 10, 5},
		{0.75, 4, 3},
		{0.5, 5, 2}, // 2.5 rounds to even
		{0.5, 7, 4}, // 3.5 rounds to even
		{0.75, 2, 2},
		{0.75, 3, 2},
		{0.5, 0, 0},
		{1, 9, 9},
	}
	for _, tt := range tests {
		if got := Threshold(tt.prop, tt.n); got != tt.want {
			t.Errorf("Threshold(%v, %d) = %d, want %d", tt.prop, tt.n, got, tt.want)
		}
	}
}

func TestHandleMissingDropsSparseRow(t *testing.T) {
	// 10 rows, 4 columns, row 3 is missing 2 of 4 values.
	a := make([]float64, 10)
	b := make([]float64, 10)
	c := make([]float64, 10)
	d := make([]float64, 10)
	for i := range a {
		a[i], b[i], c[i], d[i] = float64(i), float64(i*2), float64(i*3), float64(i*4)
	}
	a[3], b[3] = nan, nan
	f := frame.MustNew(frame.NewNumeric("a", a), frame.NewNumeric("b", b),
		frame.NewNumeric("c", c), frame.NewNumeric("d", d))

	out, err := HandleMissing(f, DefaultPropReqCols, DefaultPropReqRows)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumCols() != 4 || out.NumRows() != 9 {
		t.Fatalf("shape = %v, want (9, 4)", out.Shape())
	}
	for _, label := range out.Index() {
		if label == 3 {
			t.Error("row 3 should have been dropped")
		}
	}
}

func TestHandleMissingRowThresholdUsesRemainingColumns(t *testing.T) {
	f := frame.MustNew(
		num("a", 1, nan, nan, 4),
		num("b", 1, 2, nan, 4),
		num("c", 1, 2, 3, 4),
		num("d", 1, nan, nan, nan),
	)
	out, err := HandleMissing(f, 0.5, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("columns = %v", got)
	}
	// round(0.75*3) = 2, so row 1 with two present values survives.
	if got := out.Index(); !reflect.DeepEqual(got, []int{0, 1, 3}) {
		t.Errorf("rows = %v, want [0 1 3]", got)
	}
}

func TestHandleMissingProperties(t *testing.T) {
	f := frame.MustNew(
		num("a", 1, nan, nan, 4, 5, nan),
		num("b", nan, nan, nan, nan, 1, 2),
		frame.NewCategorical("c", []string{"x", "y", "", "", "z", "w"}, []bool{true, true, false, false, true, true}),
		num("d", 1, 2, 3, 4, 5, 6),
	)
	for _, props := range [][2]float64{{0, 0}, {0.3, 0.5}, {0.5, 0.75}, {0.9, 1}, {1, 1}} {
		out, err := HandleMissing(f, props[0], props[1])
		if err != nil {
			t.Fatal(err)
		}
		if out.NumCols() > f.NumCols() || out.NumRows() > f.NumRows() {
			t.Errorf("props %v grew the frame: %v", props, out.Shape())
		}
		want := Threshold(props[0], f.NumRows())
		for _, name := range out.Names() {
			orig, _ := f.Column(name)
			if present := orig.Len() - orig.MissingCount(); present < want {
				t.Errorf("props %v kept column %s with %d present < %d", props, name, present, want)
			}
		}
	}
}

func TestHandleMissingZeroSizes(t *testing.T) {
	noCols, _ := frame.NewWithIndex([]int{4, 5, 6})
	out, err := HandleMissing(noCols, 0.5, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumRows() != 3 {
		t.Errorf("rows = %d, want 3", out.NumRows())
	}

	noRows := frame.MustNew(num("a"), num("b"))
	out, err = HandleMissing(noRows, 0.5, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if out.NumCols() != 2 {
		t.Errorf("cols = %d, want 2", out.NumCols())
	}
}

func TestHandleMissingInvalidProportion(t *testing.T) {
	f := nullsFixture()
	for _, p := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := HandleMissing(f, p, 0.5)
		var ve *errors.ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("prop %v: err = %v, want ValidationError", p, err)
		}
		if _, err := HandleMissing(f, 0.5, p); err == nil {
			t.Errorf("row prop %v accepted", p)
		}
	}
}

func TestPrunerStep(t *testing.T) {
	p := NewPruner(DefaultPropReqCols, DefaultPropReqRows)
	out, err := p.Apply(context.Background(), nullsFixture())
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "prune" {
		t.Errorf("Name = %q", p.Name())
	}
	// round(0.75*3)=2: row 1 has a and b missing and is dropped.
	if got := out.Index(); !reflect.DeepEqual(got, []int{0, 2, 3}) {
		t.Errorf("rows = %v", got)
	}
}
