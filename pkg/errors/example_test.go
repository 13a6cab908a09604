package errors_test

import (
	"errors"
	"fmt"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// Example demonstrates Go 1.13+ error wrapping
func Example() {
	// Create a base error
	baseErr := fmt.Errorf("invalid input value")

	// Wrap the error with context using Go 1.13+ syntax
	wrappedErr := fmt.Errorf("column validation failed: %w", baseErr)

	// Further wrap with operation context
	opErr := fmt.Errorf("StandardScaler.Fit: %w", wrappedErr)

	// Use errors.Is to check for specific error types
	if errors.Is(opErr, baseErr) {
		fmt.Println("Found base error in chain")
	}

	// Unwrap errors to get the underlying cause
	unwrapped := errors.Unwrap(opErr)
	fmt.Printf("Unwrapped: %v\n", unwrapped)

	// Output: Found base error in chain
	// Unwrapped: column validation failed: invalid input value
}

// Example_customErrorTypes demonstrates custom error type handling
func Example_customErrorTypes() {
	// Create a custom error using our error constructors
	dimErr := hmErrors.NewDimensionError("PCA.Transform", 13, 12, 1)

	// Wrap it with additional context
	wrappedErr := fmt.Errorf("projection failed: %w", dimErr)

	// Check if error is of specific type using errors.As
	var dimensionErr *hmErrors.DimensionError
	if errors.As(wrappedErr, &dimensionErr) {
		fmt.Printf("Dimension error: expected %d, got %d\n",
			dimensionErr.Expected, dimensionErr.Got)
	}

	// Output: Dimension error: expected 13, got 12
}

// Example_stageErrors demonstrates the stage-specific error taxonomy
func Example_stageErrors() {
	degenerate := hmErrors.NewDegenerateColumnError("StandardScaler.Fit", "chol")
	insufficient := hmErrors.NewInsufficientDataError("KBinsDiscretizer.Fit", "PC3", 2, 3)

	var degenerateErr *hmErrors.DegenerateColumnError
	if errors.As(degenerate, &degenerateErr) {
		fmt.Printf("Degenerate column: %s\n", degenerateErr.Column)
	}

	var insufficientErr *hmErrors.InsufficientDataError
	if errors.As(insufficient, &insufficientErr) {
		fmt.Printf("Column %s has %d distinct values, need %d\n",
			insufficientErr.Column, insufficientErr.Distinct, insufficientErr.Required)
	}

	// Output: Degenerate column: chol
	// Column PC3 has 2 distinct values, need 3
}

// Example_errorChaining demonstrates practical error chaining across pipeline stages
func Example_errorChaining() {
	// Simulate a pipeline stage error
	simulateStageError := func() error {
		dataErr := fmt.Errorf("invalid data format")

		prepErr := fmt.Errorf("standardization failed: %w", dataErr)

		stageErr := fmt.Errorf("analysis aborted: %w", prepErr)

		return stageErr
	}

	err := simulateStageError()

	// Print the full error chain
	fmt.Printf("Error: %v\n", err)

	// Walk through the error chain
	current := err
	level := 0
	for current != nil {
		fmt.Printf("Level %d: %v\n", level, current)
		current = errors.Unwrap(current)
		level++
	}

	// Output: Error: analysis aborted: standardization failed: invalid data format
	// Level 0: analysis aborted: standardization failed: invalid data format
	// Level 1: standardization failed: invalid data format
	// Level 2: invalid data format
}

// Example_errorLogging demonstrates error formatting with the package prefix
func Example_errorLogging() {
	baseErr := hmErrors.NewModelError("KMeans", "initialization failure",
		hmErrors.ErrEmptyData)

	opErr := fmt.Errorf("clustering stage: %w", baseErr)

	fmt.Printf("Error occurred in clustering: %v\n", opErr)

	// Output: Error occurred in clustering: clustering stage: heartmine: KMeans: initialization failure: empty data
}
