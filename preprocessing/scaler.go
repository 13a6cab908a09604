// Package preprocessing provides the data preparation stages of the analysis
// pipeline.
//
// This package implements scikit-learn compatible preprocessing components:
//
//   - StandardScaler: z-score normalization (zero mean, unit variance)
//   - Standardizer: dataset-level wrapper that scales only the continuous
//     attributes and passes categorical attributes through unchanged
//   - KBinsDiscretizer: ordinal frequency binning of real-valued columns
//
// All components follow the Fit, Transform and FitTransform pattern and keep
// the statistics learned during Fit so transformations are reproducible and
// invertible.
//
// Example usage:
//
//	scaler := preprocessing.NewStandardScaler()
//	scaled, err := scaler.FitTransform(X)
//	if err != nil {
//		log.Fatal(err)
//	}
package preprocessing

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/core/model"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// StandardScaler standardizes features by removing the mean and scaling to
// unit variance. Unlike permissive implementations, a constant column is an
// error here: z-score normalization is undefined for zero variance, and a
// constant clinical attribute indicates broken input rather than a feature
// worth keeping.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-feature mean learned by Fit.
	Mean []float64

	// Scale holds the per-feature standard deviation learned by Fit.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewStandardScaler creates a new StandardScaler for z-score normalization.
//
// Returns:
//   - *StandardScaler: A new StandardScaler instance ready for fitting
//
// Example:
//
//	scaler := preprocessing.NewStandardScaler()
//	err := scaler.Fit(X)
//	scaled, err := scaler.Transform(X)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the per-feature mean and standard deviation from X.
//
// Parameters:
//   - X: Training data matrix of shape (n_samples, n_features)
//
// Returns:
//   - error: nil if successful, otherwise an error describing the failure
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - DegenerateColumnError: if any column has zero variance
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer hmErrors.Recover(&err, "StandardScaler.Fit")
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return hmErrors.NewModelError("StandardScaler.Fit", "empty data", hmErrors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		s.Mean[j] = sum / float64(r)
	}

	for j := 0; j < c; j++ {
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - s.Mean[j]
			sumSquares += diff * diff
		}
		variance := sumSquares / float64(r)
		s.Scale[j] = math.Sqrt(variance)

		if s.Scale[j] < 1e-12 {
			s.Reset()
			return hmErrors.NewDegenerateColumnError("StandardScaler.Fit", strconv.Itoa(j))
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X using the fitted statistics:
// X_scaled = (X - mean) / scale.
//
// Errors:
//   - NotFittedError: if the scaler hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hmErrors.Recover(&err, "StandardScaler.Transform")
	if !s.IsFitted() {
		return nil, hmErrors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, hmErrors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}

	return result, nil
}

// FitTransform fits the scaler and transforms the training data in one step.
// Equivalent to calling Fit(X) followed by Transform(X).
func (s *StandardScaler) FitTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hmErrors.Recover(&err, "StandardScaler.FitTransform")
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform reverses the standardization:
// X_orig = X_scaled * scale + mean.
//
// Errors:
//   - NotFittedError: if the scaler hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer hmErrors.Recover(&err, "StandardScaler.InverseTransform")
	if !s.IsFitted() {
		return nil, hmErrors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, hmErrors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}

	return result, nil
}

// String returns a string representation of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return "StandardScaler()"
	}
	return fmt.Sprintf("StandardScaler(n_features=%d)", s.NFeatures)
}
