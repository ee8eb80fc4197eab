package acquire

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/wrangle/core/frame"
	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// IndexColumn is the CSV header under which row labels are stored.
const IndexColumn = "_index"

// kindMarker opens the kind row of the dataset format, in the IndexColumn cell.
const kindMarker = "_kind"

var nan = math.NaN()

// missingMarkers are the cell values read back as missing.
var missingMarkers = []string{"", "NA", "NaN", "<nil>"}

// WriteCSV writes f with a header row. Row labels go first under IndexColumn,
// numbers keep full precision and missing values are written as NaN.
func WriteCSV(w io.Writer, f *frame.Frame) error {
	return writeCSV(w, f, false)
}

// WriteDataset writes f like WriteCSV with a second row holding each column's
// kind, so ReadDataset restores the frame exactly as written. Caches use it.
func WriteDataset(w io.Writer, f *frame.Frame) error {
	return writeCSV(w, f, true)
}

func writeCSV(w io.Writer, f *frame.Frame, withKinds bool) error {
	lead := 0
	if withKinds {
		lead = 1
	}

	labels := make([]string, 0, f.NumRows()+lead)
	if withKinds {
		labels = append(labels, kindMarker)
	}
	for _, l := range f.Index() {
		labels = append(labels, strconv.Itoa(l))
	}
	index := series.Strings(labels)
	index.Name = IndexColumn

	cols := make([]series.Series, 0, f.NumCols()+1)
	cols = append(cols, index)
	for _, c := range f.Columns() {
		records := make([]string, 0, c.Len()+lead)
		if withKinds {
			records = append(records, c.Kind().String())
		}
		for i := 0; i < c.Len(); i++ {
			if c.IsMissing(i) {
				records = append(records, "NaN")
				continue
			}
			records = append(records, c.Str(i))
		}
		s := series.Strings(records)
		s.Name = c.Name()
		cols = append(cols, s)
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return errors.Wrap(df.Err, "build csv frame")
	}
	if err := df.WriteCSV(w); err != nil {
		return errors.Wrap(err, "write csv")
	}
	return nil
}

// ReadCSV reads a CSV with a header row. A column whose present values all parse
// as numbers becomes numeric; any other column is categorical, including one with
// no present values. An IndexColumn column, if present, becomes the row labels.
// A header without data rows gives a frame with zero rows.
func ReadCSV(r io.Reader) (*frame.Frame, error) {
	return readCSV(r, false)
}

// ReadDataset reads a CSV written by WriteDataset. Column kinds come from the
// kind row instead of being inferred, so text such as "02134" stays categorical.
func ReadDataset(r io.Reader) (*frame.Frame, error) {
	return readCSV(r, true)
}

// table holds the cells of every CSV column, by position, with missing markers resolved.
type table struct {
	names   []string
	records [][]string
	missing [][]bool
}

func readCSV(r io.Reader, withKinds bool) (*frame.Frame, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read csv")
	}
	if len(rows) == 0 {
		return nil, errors.NewValueError("acquire.ReadCSV", "missing header row")
	}
	header, body := rows[0], rows[1:]

	var kinds []string
	if withKinds {
		if len(body) == 0 || body[0][0] != kindMarker {
			return nil, errors.NewValueError("acquire.ReadDataset", "missing "+kindMarker+" row")
		}
		kinds, body = body[0], body[1:]
	}

	t, err := loadTable(header, body)
	if err != nil {
		return nil, err
	}

	var index []int
	cols := make([]*frame.Column, 0, len(t.names))
	for j, name := range t.names {
		if name == IndexColumn {
			if index, err = parseIndex(t.records[j], t.missing[j]); err != nil {
				return nil, err
			}
			continue
		}
		if !withKinds {
			cols = append(cols, toColumn(name, t.records[j], t.missing[j]))
			continue
		}
		c, err := typedColumn(name, kinds[j], t.records[j], t.missing[j])
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}

	if index == nil {
		return frame.New(cols...)
	}
	return frame.NewWithIndex(index, cols...)
}

// loadTable parses the data rows with gota, all as strings. gota refuses a table
// without rows, so a bare header yields empty columns directly.
func loadTable(header []string, body [][]string) (table, error) {
	t := table{
		names:   header,
		records: make([][]string, len(header)),
		missing: make([][]bool, len(header)),
	}
	if len(body) == 0 {
		for j := range header {
			t.records[j] = []string{}
			t.missing[j] = []bool{}
		}
		return t, nil
	}

	df := dataframe.LoadRecords(append([][]string{header}, body...),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
	)
	if df.Err != nil {
		return t, errors.Wrap(df.Err, "read csv")
	}
	for j := range header {
		s := df.Col(df.Names()[j])
		records := s.Records()
		missing := s.IsNaN()
		for i, rec := range records {
			if isMissingMarker(rec) {
				missing[i] = true
			}
		}
		t.records[j], t.missing[j] = records, missing
	}
	return t, nil
}

func toColumn(name string, records []string, missing []bool) *frame.Column {
	values := make([]float64, len(records))
	present := 0
	for i, rec := range records {
		if missing[i] {
			values[i] = nan
			continue
		}
		v, err := strconv.ParseFloat(rec, 64)
		if err != nil {
			return categorical(name, records, missing)
		}
		values[i] = v
		present++
	}
	if present == 0 {
		return categorical(name, records, missing)
	}
	return frame.NewNumeric(name, values)
}

func typedColumn(name, kind string, records []string, missing []bool) (*frame.Column, error) {
	switch kind {
	case frame.Categorical.String():
		return categorical(name, records, missing), nil
	case frame.Numeric.String():
		values := make([]float64, len(records))
		for i, rec := range records {
			if missing[i] {
				values[i] = nan
				continue
			}
			v, err := strconv.ParseFloat(rec, 64)
			if err != nil {
				return nil, errors.NewValueError("acquire.ReadDataset",
					"column '"+name+"' row "+strconv.Itoa(i)+": "+strconv.Quote(rec)+" is not a number")
			}
			values[i] = v
		}
		return frame.NewNumeric(name, values), nil
	default:
		return nil, errors.NewValueError("acquire.ReadDataset",
			"column '"+name+"' has unknown kind "+strconv.Quote(kind))
	}
}

func categorical(name string, records []string, missing []bool) *frame.Column {
	valid := make([]bool, len(missing))
	for i, m := range missing {
		valid[i] = !m
	}
	return frame.NewCategorical(name, records, valid)
}

func parseIndex(records []string, missing []bool) ([]int, error) {
	labels := make([]int, len(records))
	for i, rec := range records {
		if missing[i] {
			return nil, errors.NewValueError("acquire.ReadCSV", "missing row label in "+IndexColumn)
		}
		v, err := strconv.Atoi(rec)
		if err != nil {
			return nil, errors.NewValueError("acquire.ReadCSV", "row label "+strconv.Quote(rec)+" is not an integer")
		}
		labels[i] = v
	}
	return labels, nil
}

func isMissingMarker(s string) bool {
	for _, m := range missingMarkers {
		if s == m {
			return true
		}
	}
	return false
}

// CSVSource reads the dataset from a CSV file written by WriteCSV or any CSV with
// a header row.
type CSVSource struct {
	Path string
}

func (s CSVSource) Describe() string { return "file" }

// Fetch reads the file. The context is only checked before opening it.
func (s CSVSource) Fetch(ctx context.Context) (*frame.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", s.Path)
	}
	defer file.Close()
	return ReadCSV(file)
}
