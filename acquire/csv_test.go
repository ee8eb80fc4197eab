package acquire

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/wrangle/core/frame"
)

func csvFixture(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.NewWithIndex([]int{10, 11, 12},
		frame.NewNumeric("age", []float64{31, math.NaN(), 0.1}),
		frame.NewCategorical("city", []string{"Oslo", "", "Lima"}, []bool{true, false, true}),
		frame.NewNumeric("income", []float64{1234.5678901234, 2e-9, -7}),
	)
	require.NoError(t, err)
	return f
}

func TestCSVRoundTrip(t *testing.T) {
	want := csvFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, want))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, "_index,age,city,income", header)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)

	assert.Equal(t, want.Shape(), got.Shape())
	assert.Equal(t, want.Names(), got.Names())
	assert.Equal(t, []int{10, 11, 12}, got.Index())

	age, err := got.Column("age")
	require.NoError(t, err)
	assert.Equal(t, frame.Numeric, age.Kind())
	assert.Equal(t, 31.0, age.Float(0))
	assert.True(t, age.IsMissing(1))
	assert.Equal(t, 0.1, age.Float(2))

	city, err := got.Column("city")
	require.NoError(t, err)
	assert.Equal(t, frame.Categorical, city.Kind())
	assert.Equal(t, "Oslo", city.Str(0))
	assert.True(t, city.IsMissing(1))

	income, err := got.Column("income")
	require.NoError(t, err)
	assert.Equal(t, []float64{1234.5678901234, 2e-9, -7}, income.Floats())
}

func TestReadCSVDetectsKinds(t *testing.T) {
	input := "a,b,c,d\n1,x,NA,\n2.5,3,,\n,y,NaN,\n"

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, frame.Shape{Rows: 3, Cols: 4}, f.Shape())
	assert.Equal(t, []int{0, 1, 2}, f.Index(), "labels default to positions")

	kinds := map[string]frame.Kind{}
	for _, c := range f.Columns() {
		kinds[c.Name()] = c.Kind()
	}
	assert.Equal(t, frame.Numeric, kinds["a"])
	assert.Equal(t, frame.Categorical, kinds["b"], "mixed text and numbers")
	assert.Equal(t, frame.Categorical, kinds["c"], "no present values")
	assert.Equal(t, frame.Categorical, kinds["d"])

	a, _ := f.Column("a")
	assert.Equal(t, 1, a.MissingCount())
	c, _ := f.Column("c")
	assert.Equal(t, 3, c.MissingCount())
}

func TestReadCSVRejectsBadIndex(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("_index,a\n0,1\nx,2\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("_index,a\n0,1\nNaN,2\n"))
	assert.Error(t, err)
}

func TestCSVSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n1,a\n2,b\n"), 0o644))

	f, err := CSVSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame.Shape{Rows: 2, Cols: 2}, f.Shape())

	_, err = CSVSource{Path: path + ".missing"}.Fetch(context.Background())
	assert.Error(t, err)
}

func TestDatasetRoundTripKeepsKinds(t *testing.T) {
	want, err := frame.NewWithIndex([]int{4, 7, 9},
		frame.NewCategorical("zip", []string{"02134", "10001", ""}, []bool{true, true, false}),
		frame.NewCategorical("blank", []string{"", "", ""}, []bool{false, false, false}),
		frame.NewNumeric("rooms", []float64{3, math.NaN(), 5}),
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDataset(&buf, want))
	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "_index,zip,blank,rooms", lines[0])
	assert.Equal(t, "_kind,categorical,categorical,numeric", lines[1])

	got, err := ReadDataset(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Index(), got.Index())
	assert.Equal(t, want.NumericNames(), got.NumericNames())
	assert.Equal(t, want.CategoricalNames(), got.CategoricalNames())

	zip, err := got.Column("zip")
	require.NoError(t, err)
	assert.Equal(t, "02134", zip.Str(0))
	assert.True(t, zip.IsMissing(2))

	rooms, err := got.Column("rooms")
	require.NoError(t, err)
	assert.True(t, rooms.IsMissing(1))
	assert.Equal(t, 5.0, rooms.Float(2))
}

func TestReadDatasetRejectsBadKinds(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no kind row", "_index,a\n0,1\n"},
		{"header only", "_index,a\n"},
		{"unknown kind", "_index,a\n_kind,text\n0,1\n"},
		{"text in numeric column", "_index,a\n_kind,numeric\n0,x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestZeroRowRoundTrip(t *testing.T) {
	empty, err := frame.NewWithIndex([]int{},
		frame.NewNumeric("x", nil),
		frame.NewCategorical("c", nil, nil),
	)
	require.NoError(t, err)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, empty))
		assert.Equal(t, "_index,x,c\n", buf.String())

		got, err := ReadCSV(&buf)
		require.NoError(t, err)
		assert.Equal(t, frame.Shape{Rows: 0, Cols: 2}, got.Shape())
		assert.Equal(t, []string{"x", "c"}, got.Names())
		assert.Equal(t, []string{"x", "c"}, got.CategoricalNames(), "nothing to infer from")
	})

	t.Run("dataset", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteDataset(&buf, empty))

		got, err := ReadDataset(&buf)
		require.NoError(t, err)
		assert.Equal(t, frame.Shape{Rows: 0, Cols: 2}, got.Shape())
		assert.Equal(t, []string{"x"}, got.NumericNames())
		assert.Equal(t, []string{"c"}, got.CategoricalNames())
	})
}

func TestCSVSourceHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y\n"), 0o644))

	f, err := CSVSource{Path: path}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, frame.Shape{Rows: 0, Cols: 2}, f.Shape())
	assert.Empty(t, f.Index())
}
