// Package errors provides the error taxonomy for the heartmine analysis pipeline.
//
// The package wraps github.com/cockroachdb/errors so that callers get stack
// traces and Go 1.13+ wrapping semantics for free, and defines the typed
// errors raised by the individual pipeline stages:
//
//   - ParseError: required columns missing or unreadable input
//   - EmptyDatasetError: every row was dropped during preprocessing
//   - DegenerateColumnError: a constant continuous column cannot be standardized
//   - NumericalInstabilityError: eigen-decomposition failed or rank is too low
//   - InvalidClusterCountError: cluster count outside [1, n_samples]
//   - InsufficientDataError: too few distinct values to discretize
//   - NoFrequentItemsetsError: no itemset reaches the minimum support
//
// General-purpose estimator errors (NotFittedError, DimensionError, ValueError,
// ModelError) are shared by every component. All errors are terminal for a run:
// the pipeline aborts at the failing stage and reports the offending column or
// configuration so a human can correct the input.
//
// Example usage:
//
//	if err := scaler.Fit(X); err != nil {
//		var degenerate *errors.DegenerateColumnError
//		if errors.As(err, &degenerate) {
//			fmt.Printf("constant column: %s\n", degenerate.Column)
//		}
//	}
package errors

import (
	"fmt"

	cr "github.com/cockroachdb/errors"
)

// prefix is prepended to every formatted error produced by this package.
const prefix = "heartmine"

// Sentinel errors for common failure conditions.
var (
	// ErrEmptyData indicates an input matrix or slice with no elements.
	ErrEmptyData = cr.New("empty data")

	// ErrEmptyDataset indicates a dataset left with zero rows after
	// preprocessing dropped rows with missing values.
	ErrEmptyDataset = cr.New("empty dataset")

	// ErrSingularMatrix indicates a matrix that cannot be decomposed or
	// inverted within numerical tolerance.
	ErrSingularMatrix = cr.New("singular matrix")

	// ErrNotImplemented indicates a requested feature that is not available.
	ErrNotImplemented = cr.New("not implemented")
)

// Passthroughs to cockroachdb/errors so callers only import this package.

// New creates an error with a stack trace.
func New(msg string) error { return cr.New(msg) }

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error { return cr.Newf(format, args...) }

// Wrap annotates err with msg, preserving the chain.
func Wrap(err error, msg string) error { return cr.Wrap(err, msg) }

// Wrapf annotates err with a formatted message, preserving the chain.
func Wrapf(err error, format string, args ...interface{}) error {
	return cr.Wrapf(err, format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return cr.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return cr.As(err, target) }

// Unwrap returns the next error in err's chain, if any.
func Unwrap(err error) error { return cr.Unwrap(err) }

// Recover converts a panic inside an estimator method into an error so that
// a single misbehaving stage cannot take down the whole run. Intended usage:
//
//	func (p *PCA) Fit(X mat.Matrix) (err error) {
//		defer errors.Recover(&err, "PCA.Fit")
//		...
//	}
func Recover(err *error, op string) {
	if r := recover(); r != nil {
		*err = cr.Newf("%s: %s: panic: %v", prefix, op, r)
	}
}

// NotFittedError is returned when Transform or Predict is called on an
// estimator that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

// NewNotFittedError creates a NotFittedError for the given model and method.
func NewNotFittedError(modelName, method string) *NotFittedError {
	return &NotFittedError{ModelName: modelName, Method: method}
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("%s: %s.%s: estimator is not fitted; call Fit first", prefix, e.ModelName, e.Method)
}

// DimensionError is returned when an input matrix does not match the shape an
// estimator was fitted with.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError for operation op. Axis 0 refers
// to rows, axis 1 to columns.
func NewDimensionError(op string, expected, got, axis int) *DimensionError {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: dimension mismatch on axis %d: expected %d, got %d",
		prefix, e.Op, e.Axis, e.Expected, e.Got)
}

// ValueError is returned when an argument value is invalid for an operation.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError for operation op.
func NewValueError(op, message string) *ValueError {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// ModelError wraps a lower-level error with estimator context.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError wrapping err.
func NewModelError(op, message string, err error) *ModelError {
	return &ModelError{Op: op, Message: message, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// Unwrap returns the wrapped error.
func (e *ModelError) Unwrap() error { return e.Err }

// ParseError is returned by the loader when the input table cannot be parsed
// or required schema columns are absent.
type ParseError struct {
	Source  string
	Missing []string
	Err     error
}

// NewParseError creates a ParseError for the given source. missing lists the
// schema columns that were not found; it may be nil for read failures.
func NewParseError(source string, missing []string, err error) *ParseError {
	return &ParseError{Source: source, Missing: missing, Err: err}
}

func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: parse %s: missing required columns %v", prefix, e.Source, e.Missing)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: parse %s: %v", prefix, e.Source, e.Err)
	}
	return fmt.Sprintf("%s: parse %s: malformed input", prefix, e.Source)
}

// Unwrap returns the wrapped error.
func (e *ParseError) Unwrap() error { return e.Err }

// EmptyDatasetError is returned when preprocessing drops every row.
type EmptyDatasetError struct {
	Source  string
	Dropped int
}

// NewEmptyDatasetError creates an EmptyDatasetError; dropped is the number of
// rows removed because of missing values.
func NewEmptyDatasetError(source string, dropped int) *EmptyDatasetError {
	return &EmptyDatasetError{Source: source, Dropped: dropped}
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: %s: no rows remain after dropping %d rows with missing values",
		prefix, e.Source, e.Dropped)
}

// Unwrap lets errors.Is match the ErrEmptyDataset sentinel.
func (e *EmptyDatasetError) Unwrap() error { return ErrEmptyDataset }

// DegenerateColumnError is returned when a continuous column is constant and
// z-score normalization is therefore undefined.
type DegenerateColumnError struct {
	Op     string
	Column string
}

// NewDegenerateColumnError creates a DegenerateColumnError for the named column.
func NewDegenerateColumnError(op, column string) *DegenerateColumnError {
	return &DegenerateColumnError{Op: op, Column: column}
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("%s: %s: column %s has zero variance; standardization undefined",
		prefix, e.Op, e.Column)
}

// NumericalInstabilityError is returned when an eigen-decomposition fails or
// the decomposed matrix has lower rank than the number of retained components.
type NumericalInstabilityError struct {
	Op      string
	Message string
}

// NewNumericalInstabilityError creates a NumericalInstabilityError.
func NewNumericalInstabilityError(op, message string) *NumericalInstabilityError {
	return &NumericalInstabilityError{Op: op, Message: message}
}

func (e *NumericalInstabilityError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// Unwrap lets errors.Is match the ErrSingularMatrix sentinel.
func (e *NumericalInstabilityError) Unwrap() error { return ErrSingularMatrix }

// InvalidClusterCountError is returned when the requested number of clusters
// is not in [1, n_samples].
type InvalidClusterCountError struct {
	Op       string
	K        int
	NSamples int
}

// NewInvalidClusterCountError creates an InvalidClusterCountError.
func NewInvalidClusterCountError(op string, k, nSamples int) *InvalidClusterCountError {
	return &InvalidClusterCountError{Op: op, K: k, NSamples: nSamples}
}

func (e *InvalidClusterCountError) Error() string {
	return fmt.Sprintf("%s: %s: invalid cluster count %d for %d samples",
		prefix, e.Op, e.K, e.NSamples)
}

// InsufficientDataError is returned by the discretizer when a column has
// fewer distinct values than requested bins.
type InsufficientDataError struct {
	Op       string
	Column   string
	Distinct int
	Required int
}

// NewInsufficientDataError creates an InsufficientDataError for the named column.
func NewInsufficientDataError(op, column string, distinct, required int) *InsufficientDataError {
	return &InsufficientDataError{Op: op, Column: column, Distinct: distinct, Required: required}
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s: %s: column %s has %d distinct values, need at least %d",
		prefix, e.Op, e.Column, e.Distinct, e.Required)
}

// NoFrequentItemsetsError is returned by the rule miner when no single item
// reaches the minimum support threshold.
type NoFrequentItemsetsError struct {
	MinSupport float64
}

// NewNoFrequentItemsetsError creates a NoFrequentItemsetsError.
func NewNoFrequentItemsetsError(minSupport float64) *NoFrequentItemsetsError {
	return &NoFrequentItemsetsError{MinSupport: minSupport}
}

func (e *NoFrequentItemsetsError) Error() string {
	return fmt.Sprintf("%s: apriori: no itemset meets minimum support %.3f", prefix, e.MinSupport)
}
