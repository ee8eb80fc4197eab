package frame

import (
	"math"
	"strconv"
)

// Kind classifies a column as numeric or categorical.
type Kind int

const (
	// Numeric columns hold float64 values; NaN marks a missing value.
	Numeric Kind = iota
	// Categorical columns hold strings with a separate validity mask.
	Categorical
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// Column is an immutable named vector. Frames share columns freely, so nothing
// that holds a *Column may write to its backing slices.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	strs  []string
	valid []bool
}

// NewNumeric returns a numeric column holding a copy of values.
func NewNumeric(name string, values []float64) *Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return &Column{name: name, kind: Numeric, nums: nums}
}

// NewCategorical returns a categorical column holding a copy of values. A nil
// valid mask marks every value present; otherwise valid must match values in length.
func NewCategorical(name string, values []string, valid []bool) *Column {
	strs := make([]string, len(values))
	copy(strs, values)
	mask := make([]bool, len(values))
	for i := range mask {
		mask[i] = valid == nil || (i < len(valid) && valid[i])
		if !mask[i] {
			strs[i] = ""
		}
	}
	return &Column{name: name, kind: Categorical, strs: strs, valid: mask}
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }

// Len returns the number of values.
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.strs)
}

// IsMissing reports whether row i holds no value.
func (c *Column) IsMissing(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.nums[i])
	}
	return !c.valid[i]
}

// MissingCount returns the number of missing values.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsMissing(i) {
			n++
		}
	}
	return n
}

// Float returns row i of a numeric column, or NaN for a categorical one.
func (c *Column) Float(i int) float64 {
	if c.kind != Numeric {
		return math.NaN()
	}
	return c.nums[i]
}

// Str returns row i formatted as text; missing values are "".
func (c *Column) Str(i int) string {
	if c.IsMissing(i) {
		return ""
	}
	if c.kind == Numeric {
		return strconv.FormatFloat(c.nums[i], 'g', -1, 64)
	}
	return c.strs[i]
}

// Value returns row i as float64 or string, or nil when missing.
func (c *Column) Value(i int) any {
	if c.IsMissing(i) {
		return nil
	}
	if c.kind == Numeric {
		return c.nums[i]
	}
	return c.strs[i]
}

// Floats returns a copy of a numeric column's values, or nil for a categorical one.
func (c *Column) Floats() []float64 {
	if c.kind != Numeric {
		return nil
	}
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Strings returns a copy of a categorical column's values and validity mask.
func (c *Column) Strings() ([]string, []bool) {
	if c.kind != Categorical {
		return nil, nil
	}
	strs := make([]string, len(c.strs))
	copy(strs, c.strs)
	valid := make([]bool, len(c.valid))
	copy(valid, c.valid)
	return strs, valid
}

// Take returns a new column with the values at rows, in that order.
func (c *Column) Take(rows []int) *Column {
	out := &Column{name: c.name, kind: c.kind}
	if c.kind == Numeric {
		out.nums = make([]float64, len(rows))
		for k, r := range rows {
			out.nums[k] = c.nums[r]
		}
		return out
	}
	out.strs = make([]string, len(rows))
	out.valid = make([]bool, len(rows))
	for k, r := range rows {
		out.strs[k] = c.strs[r]
		out.valid[k] = c.valid[r]
	}
	return out
}

// Rename returns the column under a different name. The values are shared.
func (c *Column) Rename(name string) *Column {
	out := *c
	out.name = name
	return &out
}
