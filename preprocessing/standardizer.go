package preprocessing

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/dataset"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// ColumnStats holds the standardization statistics retained for one
// continuous column, kept for reproducibility and inverse transforms.
type ColumnStats struct {
	Mean float64
	Std  float64
}

// StandardizedTable is a dataset whose continuous columns have been replaced
// by their z-scores; categorical columns pass through unchanged. Column order
// matches the dataset schema.
type StandardizedTable struct {
	columns []string
	stats   map[string]ColumnStats
	data    *mat.Dense
}

// Standardize z-score normalizes the continuous attributes of ds and
// recombines them with the untouched categorical attributes.
//
// Errors:
//   - DegenerateColumnError: a continuous column is constant, reported by name
func Standardize(ds *dataset.Dataset) (*StandardizedTable, error) {
	continuous := dataset.Continuous()

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(ds.ContinuousMatrix())
	if err != nil {
		// The scaler only knows column positions; translate to the
		// attribute name before surfacing.
		var degenerate *hmErrors.DegenerateColumnError
		if hmErrors.As(err, &degenerate) {
			for j, name := range continuous {
				if degenerate.Column == strconv.Itoa(j) {
					return nil, hmErrors.NewDegenerateColumnError("Standardize", name)
				}
			}
		}
		return nil, err
	}

	stats := make(map[string]ColumnStats, len(continuous))
	continuousIdx := make(map[string]int, len(continuous))
	for j, name := range continuous {
		stats[name] = ColumnStats{Mean: scaler.Mean[j], Std: scaler.Scale[j]}
		continuousIdx[name] = j
	}

	columns := ds.Columns()
	full := ds.Matrix()
	r := ds.NRows()
	for j, name := range columns {
		cj, ok := continuousIdx[name]
		if !ok {
			continue
		}
		for i := 0; i < r; i++ {
			full.Set(i, j, scaled.At(i, cj))
		}
	}

	return &StandardizedTable{columns: columns, stats: stats, data: full}, nil
}

// Columns returns the column names in table order.
func (t *StandardizedTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Matrix returns a copy of the standardized table.
func (t *StandardizedTable) Matrix() *mat.Dense {
	return mat.DenseCopyOf(t.data)
}

// NRows returns the number of records.
func (t *StandardizedTable) NRows() int {
	r, _ := t.data.Dims()
	return r
}

// Stats returns the retained (mean, std) for a continuous column. The second
// return value is false for categorical or unknown columns.
func (t *StandardizedTable) Stats(column string) (ColumnStats, bool) {
	s, ok := t.stats[column]
	return s, ok
}
