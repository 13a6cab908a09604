package preprocessing

import (
	"fmt"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/core/model"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// ordinalLabels are the bin names used for the standard three-bin split.
var ordinalLabels = []string{"low", "medium", "high"}

// KBinsDiscretizer bins each column of a real-valued matrix into NBins
// ordered, approximately frequency-equal categories.
//
// Thresholds are placed on the sorted values so each bin receives ≈1/NBins of
// the rows. Assignment compares values against the learned thresholds, so
// duplicated values always land in the same bin; a run of duplicates that
// spans a boundary collapses into the lower bin.
type KBinsDiscretizer struct {
	model.BaseEstimator

	// NBins is the number of ordinal bins per column.
	NBins int

	// ColumnNames optionally names the input columns for error reporting.
	// When unset, errors refer to columns by index.
	ColumnNames []string

	// Thresholds holds, per column, the NBins-1 inclusive upper boundaries
	// learned by Fit.
	Thresholds [][]float64

	// NFeatures is the number of columns seen during Fit.
	NFeatures int
}

// NewKBinsDiscretizer creates a discretizer producing nBins ordinal bins.
//
// Example:
//
//	disc := preprocessing.NewKBinsDiscretizer(3)
//	codes, err := disc.FitTransform(components)
func NewKBinsDiscretizer(nBins int) *KBinsDiscretizer {
	return &KBinsDiscretizer{NBins: nBins}
}

// BinLabel returns the human-readable name of an ordinal bin. Three-bin
// discretizers use low/medium/high; other widths fall back to bin<i>.
func (d *KBinsDiscretizer) BinLabel(bin int) string {
	if d.NBins == len(ordinalLabels) && bin >= 0 && bin < len(ordinalLabels) {
		return ordinalLabels[bin]
	}
	return fmt.Sprintf("bin%d", bin)
}

// Fit learns per-column bin thresholds from X.
//
// Parameters:
//   - X: Data matrix of shape (n_samples, n_features)
//
// Errors:
//   - ValueError: if NBins < 2
//   - ErrEmptyData: if X is empty
//   - InsufficientDataError: if a column has fewer than NBins distinct values
func (d *KBinsDiscretizer) Fit(X mat.Matrix) (err error) {
	defer hmErrors.Recover(&err, "KBinsDiscretizer.Fit")
	if d.NBins < 2 {
		return hmErrors.NewValueError("KBinsDiscretizer.Fit",
			fmt.Sprintf("n_bins must be at least 2, got %d", d.NBins))
	}
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return hmErrors.NewModelError("KBinsDiscretizer.Fit", "empty data", hmErrors.ErrEmptyData)
	}

	d.NFeatures = c
	d.Thresholds = make([][]float64, c)

	for j := 0; j < c; j++ {
		sorted := make([]float64, r)
		mat.Col(sorted, j, X)
		sort.Float64s(sorted)

		distinct := 1
		for i := 1; i < r; i++ {
			if sorted[i] != sorted[i-1] {
				distinct++
			}
		}
		if distinct < d.NBins {
			d.Reset()
			return hmErrors.NewInsufficientDataError("KBinsDiscretizer.Fit",
				d.columnName(j), distinct, d.NBins)
		}

		// The b-th threshold is the largest value of bin b: the value at
		// sorted position ceil((b+1)*n/NBins)-1.
		thresholds := make([]float64, d.NBins-1)
		for b := 0; b < d.NBins-1; b++ {
			cut := ((b+1)*r + d.NBins - 1) / d.NBins
			thresholds[b] = sorted[cut-1]
		}
		d.Thresholds[j] = thresholds
	}

	d.SetFitted()
	return nil
}

// Transform maps each value of X onto its ordinal bin code in [0, NBins).
// A value equal to a threshold falls into the lower bin.
//
// Errors:
//   - NotFittedError: if the discretizer hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (d *KBinsDiscretizer) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer hmErrors.Recover(&err, "KBinsDiscretizer.Transform")
	if !d.IsFitted() {
		return nil, hmErrors.NewNotFittedError("KBinsDiscretizer", "Transform")
	}

	r, c := X.Dims()
	if c != d.NFeatures {
		return nil, hmErrors.NewDimensionError("KBinsDiscretizer.Transform", d.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			bin := d.NBins - 1
			for b, t := range d.Thresholds[j] {
				if v <= t {
					bin = b
					break
				}
			}
			result.Set(i, j, float64(bin))
		}
	}

	return result, nil
}

// FitTransform fits the discretizer and transforms X in one step.
func (d *KBinsDiscretizer) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := d.Fit(X); err != nil {
		return nil, err
	}
	return d.Transform(X)
}

// LabelTable converts a matrix of ordinal codes into bin label strings.
func (d *KBinsDiscretizer) LabelTable(codes *mat.Dense) [][]string {
	r, c := codes.Dims()
	out := make([][]string, r)
	for i := 0; i < r; i++ {
		row := make([]string, c)
		for j := 0; j < c; j++ {
			row[j] = d.BinLabel(int(codes.At(i, j)))
		}
		out[i] = row
	}
	return out
}

// String returns a string representation of the discretizer.
func (d *KBinsDiscretizer) String() string {
	if !d.IsFitted() {
		return fmt.Sprintf("KBinsDiscretizer(n_bins=%d)", d.NBins)
	}
	return fmt.Sprintf("KBinsDiscretizer(n_bins=%d, n_features=%d)", d.NBins, d.NFeatures)
}

func (d *KBinsDiscretizer) columnName(j int) string {
	if j < len(d.ColumnNames) {
		return d.ColumnNames[j]
	}
	return strconv.Itoa(j)
}
