// Package errors provides the error types and the warning system shared by every
// wrangle package. Errors carry stack traces through cockroachdb/errors and know how
// to marshal themselves into zerolog events.
package errors

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("wrangle-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the handler used by Warn.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // ignore warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink. It takes precedence over the
// plain handler. Passing nil removes it.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a non-fatal condition.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// DataConversionWarning is raised when acquired values had to be coerced to a
// different column kind than the one the source declared.
type DataConversionWarning struct {
	Column   string
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	return fmt.Sprintf("column '%s' converted from %s to %s. Reason: %s", w.Column, w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason).
		Str("type", "DataConversionWarning")
}

// NewDataConversionWarning creates a DataConversionWarning.
func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromType: from, ToType: to, Reason: reason}
}

// DegenerateColumnWarning is raised when a scaler is fitted on a column whose
// training values are all equal, or all missing (Value is NaN), and the fallback
// scale is used instead.
type DegenerateColumnWarning struct {
	Column string
	Value  float64
}

func (w *DegenerateColumnWarning) Error() string {
	if math.IsNaN(w.Value) {
		return fmt.Sprintf("column '%s' has no present values in the training data; scaled values are NaN", w.Column)
	}
	return fmt.Sprintf("column '%s' has zero range in the training data (constant %g); scaled values fall back to 0", w.Column, w.Value)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *DegenerateColumnWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Float64("value", w.Value).
		Str("type", "DegenerateColumnWarning")
}

// NewDegenerateColumnWarning creates a DegenerateColumnWarning.
func NewDegenerateColumnWarning(column string, value float64) *DegenerateColumnWarning {
	return &DegenerateColumnWarning{Column: column, Value: value}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError is returned when Transform is called on a scaler that was never fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("wrangle: %s: not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("wrangle: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("wrangle: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is unusable.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("wrangle: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ColumnNotFoundError is returned when an operation names a column the dataset
// does not have.
type ColumnNotFoundError struct {
	Op     string
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("wrangle: %s: column '%s' not found", e.Op, e.Column)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ColumnNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("type", "ColumnNotFoundError")
}

// NewColumnNotFoundError creates a ColumnNotFoundError with a stack trace.
func NewColumnNotFoundError(op, column string) error {
	err := &ColumnNotFoundError{Op: op, Column: column}
	return errors.WithStack(err)
}

// ColumnKindError is returned when a column has the wrong kind for an operation,
// for example scaling a categorical column.
type ColumnKindError struct {
	Op     string
	Column string
	Want   string
	Got    string
}

func (e *ColumnKindError) Error() string {
	return fmt.Sprintf("wrangle: %s: column '%s' is %s, want %s", e.Op, e.Column, e.Got, e.Want)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ColumnKindError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("want", e.Want).
		Str("got", e.Got).
		Str("type", "ColumnKindError")
}

// NewColumnKindError creates a ColumnKindError with a stack trace.
func NewColumnKindError(op, column, want, got string) error {
	err := &ColumnKindError{Op: op, Column: column, Want: want, Got: got}
	return errors.WithStack(err)
}

// DegenerateColumnError is returned by a strict scaler when a training column has
// zero range, so (value-min)/(max-min) is undefined.
type DegenerateColumnError struct {
	Column string
	Value  float64
}

func (e *DegenerateColumnError) Error() string {
	if math.IsNaN(e.Value) {
		return fmt.Sprintf("wrangle: column '%s' has no present values in the training data", e.Column)
	}
	return fmt.Sprintf("wrangle: column '%s' has zero range in the training data (constant %g)", e.Column, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DegenerateColumnError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("column", e.Column).
		Float64("value", e.Value).
		Str("type", "DegenerateColumnError")
}

// NewDegenerateColumnError creates a DegenerateColumnError with a stack trace.
func NewDegenerateColumnError(column string, value float64) error {
	err := &DegenerateColumnError{Column: column, Value: value}
	return errors.WithStack(err)
}

// StageError wraps a failure inside a named pipeline stage.
type StageError struct {
	Stage string
	Kind  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wrangle: %s: %s: %v", e.Stage, e.Kind, e.Err)
	}
	return fmt.Sprintf("wrangle: %s: %s", e.Stage, e.Kind)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a StageError with a stack trace.
func NewStageError(stage, kind string, err error) error {
	stageErr := &StageError{Stage: stage, Kind: kind, Err: err}
	return errors.WithStack(stageErr)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation needs at least one row.
	ErrEmptyData = New("empty data")

	// ErrCacheMiss is returned by cache backends when nothing is stored.
	ErrCacheMiss = New("cache miss")
)
