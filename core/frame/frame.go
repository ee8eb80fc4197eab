// Package frame provides the tabular value every wrangling stage consumes and
// produces: ordered, uniquely named columns of equal length plus integer row labels.
//
// A Frame is never modified after construction. Row and column operations return
// a new Frame that may share unchanged columns with its parent.
package frame

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/wrangle/pkg/errors"
)

// Shape is the (rows, columns) size of a frame.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

// Frame is an immutable table.
type Frame struct {
	cols   []*Column
	byName map[string]int
	index  []int
}

// New builds a frame from columns with row labels 0..n-1.
func New(cols ...*Column) (*Frame, error) {
	n := 0
	if len(cols) > 0 {
		n = cols[0].Len()
	}
	index := make([]int, n)
	for i := range index {
		index[i] = i
	}
	return build(cols, index)
}

// NewWithIndex builds a frame with explicit row labels. The frame may have no
// columns, in which case the labels alone define the row count.
func NewWithIndex(index []int, cols ...*Column) (*Frame, error) {
	labels := make([]int, len(index))
	copy(labels, index)
	return build(cols, labels)
}

// MustNew is New for fixtures; it panics on error.
func MustNew(cols ...*Column) *Frame {
	f, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

func build(cols []*Column, index []int) (*Frame, error) {
	f := &Frame{
		cols:   make([]*Column, len(cols)),
		byName: make(map[string]int, len(cols)),
		index:  index,
	}
	for i, c := range cols {
		if c == nil {
			return nil, errors.NewValidationError("columns", "nil column", i)
		}
		if c.Len() != len(index) {
			return nil, errors.NewDimensionError("frame.New", len(index), c.Len(), 0)
		}
		if _, dup := f.byName[c.Name()]; dup {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name())
		}
		f.byName[c.Name()] = i
		f.cols[i] = c
	}
	return f, nil
}

func (f *Frame) NumRows() int { return len(f.index) }
func (f *Frame) NumCols() int { return len(f.cols) }

// Shape returns the frame size.
func (f *Frame) Shape() Shape {
	return Shape{Rows: f.NumRows(), Cols: f.NumCols()}
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name()
	}
	return names
}

// Index returns a copy of the row labels.
func (f *Frame) Index() []int {
	out := make([]int, len(f.index))
	copy(out, f.index)
	return out
}

// Label returns the label of row position i.
func (f *Frame) Label(i int) int { return f.index[i] }

// Has reports whether a column named name exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.byName[name]
	return ok
}

// Column returns the column named name.
func (f *Frame) Column(name string) (*Column, error) {
	i, ok := f.byName[name]
	if !ok {
		return nil, errors.NewColumnNotFoundError("frame.Column", name)
	}
	return f.cols[i], nil
}

// ColumnAt returns the column at position i.
func (f *Frame) ColumnAt(i int) *Column { return f.cols[i] }

// Columns returns the columns in order. The slice is a copy; the columns are shared.
func (f *Frame) Columns() []*Column {
	out := make([]*Column, len(f.cols))
	copy(out, f.cols)
	return out
}

// NumericNames returns the names of numeric columns in column order.
func (f *Frame) NumericNames() []string { return f.namesOf(Numeric) }

// CategoricalNames returns the names of categorical columns in column order.
func (f *Frame) CategoricalNames() []string { return f.namesOf(Categorical) }

func (f *Frame) namesOf(kind Kind) []string {
	var names []string
	for _, c := range f.cols {
		if c.Kind() == kind {
			names = append(names, c.Name())
		}
	}
	return names
}

// Take returns the rows at the given positions, labels included, in that order.
func (f *Frame) Take(rows []int) *Frame {
	index := make([]int, len(rows))
	for k, r := range rows {
		index[k] = f.index[r]
	}
	cols := make([]*Column, len(f.cols))
	for i, c := range f.cols {
		cols[i] = c.Take(rows)
	}
	return &Frame{cols: cols, byName: f.copyNames(), index: index}
}

// Filter keeps the row positions for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	rows := make([]int, 0, f.NumRows())
	for r := 0; r < f.NumRows(); r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return f.Take(rows)
}

// Head returns the first n rows.
func (f *Frame) Head(n int) *Frame {
	if n > f.NumRows() {
		n = f.NumRows()
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return f.Take(rows)
}

// Select returns a frame holding only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	cols := make([]*Column, 0, len(names))
	for _, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return build(cols, f.Index())
}

// Drop returns a frame without the named columns. Every name must exist.
func (f *Frame) Drop(names ...string) (*Frame, error) {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		if !f.Has(name) {
			return nil, errors.NewColumnNotFoundError("frame.Drop", name)
		}
		drop[name] = true
	}
	cols := make([]*Column, 0, len(f.cols))
	for _, c := range f.cols {
		if !drop[c.Name()] {
			cols = append(cols, c)
		}
	}
	return build(cols, f.Index())
}

// Replace returns a frame where the column with col's name is swapped for col.
func (f *Frame) Replace(col *Column) (*Frame, error) {
	i, ok := f.byName[col.Name()]
	if !ok {
		return nil, errors.NewColumnNotFoundError("frame.Replace", col.Name())
	}
	if col.Len() != f.NumRows() {
		return nil, errors.NewDimensionError("frame.Replace", f.NumRows(), col.Len(), 0)
	}
	cols := f.Columns()
	cols[i] = col
	return &Frame{cols: cols, byName: f.copyNames(), index: f.index}, nil
}

// WithIndex returns the frame with new row labels.
func (f *Frame) WithIndex(index []int) (*Frame, error) {
	if len(index) != f.NumRows() {
		return nil, errors.NewDimensionError("frame.WithIndex", f.NumRows(), len(index), 0)
	}
	return NewWithIndex(index, f.cols...)
}

// SetIndex moves a numeric column holding whole numbers without gaps into the row
// labels and removes it from the columns.
func (f *Frame) SetIndex(name string) (*Frame, error) {
	c, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind() != Numeric {
		return nil, errors.NewColumnKindError("frame.SetIndex", name, Numeric.String(), c.Kind().String())
	}
	index := make([]int, c.Len())
	for i := range index {
		v := c.Float(i)
		if math.IsNaN(v) || v != math.Trunc(v) {
			return nil, errors.NewValueError("frame.SetIndex",
				fmt.Sprintf("column '%s' row %d is not a whole number: %v", name, i, v))
		}
		index[i] = int(v)
	}
	rest, err := f.Drop(name)
	if err != nil {
		return nil, err
	}
	return NewWithIndex(index, rest.cols...)
}

// Matrix copies the named numeric columns into a rows x len(names) dense matrix.
// Missing values are NaN.
func (f *Frame) Matrix(names ...string) (*mat.Dense, error) {
	if f.NumRows() == 0 || len(names) == 0 {
		return nil, errors.ErrEmptyData
	}
	m := mat.NewDense(f.NumRows(), len(names), nil)
	for j, name := range names {
		c, err := f.Column(name)
		if err != nil {
			return nil, err
		}
		if c.Kind() != Numeric {
			return nil, errors.NewColumnKindError("frame.Matrix", name, Numeric.String(), c.Kind().String())
		}
		m.SetCol(j, c.nums)
	}
	return m, nil
}

// Row returns the values of row position r as Column.Value reports them.
func (f *Frame) Row(r int) []any {
	out := make([]any, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Value(r)
	}
	return out
}

func (f *Frame) copyNames() map[string]int {
	out := make(map[string]int, len(f.byName))
	for k, v := range f.byName {
		out[k] = v
	}
	return out
}
