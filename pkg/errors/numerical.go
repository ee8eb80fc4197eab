package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
)

// NumericalInstabilityError reports NaN or Inf where finite values are required.
type NumericalInstabilityError struct {
	Operation string
	Column    string
	Values    []float64
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("wrangle: non-finite values in %s for column '%s'. Values: [%s]",
		e.Operation, e.Column, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation, column string, values []float64) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Column:    column,
		Values:    values,
	}
	return errors.WithStack(err)
}

// CheckFinite returns an error when any value is infinite. NaN is the missing-value
// marker and is allowed.
func CheckFinite(operation, column string, values ...float64) error {
	var bad []float64
	for _, v := range values {
		if math.IsInf(v, 0) {
			bad = append(bad, v)
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(operation, column, bad)
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if the denominator is zero.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
