// Package metrics provides the diagnostic measures consumed by the
// interpretation and validation layers of the pipeline.
//
// Correlation metrics label principal components semantically: the Pearson
// correlation between each component column and each original continuous
// attribute shows which clinical measurements a component tracks. Clustering
// metrics quantify how well two labelings of the same rows agree, up to a
// permutation of the label symbols.
//
// Example usage:
//
//	corr, err := metrics.ComponentAttributeCorrelation(
//		scores, []string{"PC1", "PC2", "PC3", "PC4"},
//		continuous, dataset.Continuous(),
//	)
//	name, r, _ := corr.Strongest("PC1")
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// Pearson calculates the Pearson correlation coefficient between two columns.
//
// Errors:
//   - ErrEmptyData: if the inputs are empty
//   - DimensionError: if x and y have different lengths
func Pearson(x, y []float64) (float64, error) {
	if len(x) == 0 {
		return 0, hmErrors.NewModelError("Pearson", "empty data", hmErrors.ErrEmptyData)
	}
	if len(x) != len(y) {
		return 0, hmErrors.NewDimensionError("Pearson", len(x), len(y), 0)
	}
	return stat.Correlation(x, y, nil), nil
}

// LabeledMatrix is a dense matrix with named rows and columns, used for the
// component-attribute correlation table.
type LabeledMatrix struct {
	rowNames []string
	colNames []string
	rowIndex map[string]int
	colIndex map[string]int
	data     *mat.Dense
}

// RowNames returns the row names in order.
func (m *LabeledMatrix) RowNames() []string {
	out := make([]string, len(m.rowNames))
	copy(out, m.rowNames)
	return out
}

// ColNames returns the column names in order.
func (m *LabeledMatrix) ColNames() []string {
	out := make([]string, len(m.colNames))
	copy(out, m.colNames)
	return out
}

// Matrix returns a copy of the underlying values.
func (m *LabeledMatrix) Matrix() *mat.Dense {
	return mat.DenseCopyOf(m.data)
}

// At returns the value for the named row and column.
func (m *LabeledMatrix) At(row, col string) (float64, error) {
	i, ok := m.rowIndex[row]
	if !ok {
		return 0, hmErrors.NewValueError("LabeledMatrix.At", "unknown row "+row)
	}
	j, ok := m.colIndex[col]
	if !ok {
		return 0, hmErrors.NewValueError("LabeledMatrix.At", "unknown column "+col)
	}
	return m.data.At(i, j), nil
}

// Strongest returns the column with the largest absolute value in the named
// row, with its signed value. For a correlation table this is the attribute
// a component tracks most closely.
func (m *LabeledMatrix) Strongest(row string) (string, float64, error) {
	i, ok := m.rowIndex[row]
	if !ok {
		return "", 0, hmErrors.NewValueError("LabeledMatrix.Strongest", "unknown row "+row)
	}
	bestCol := m.colNames[0]
	bestVal := m.data.At(i, 0)
	for j := 1; j < len(m.colNames); j++ {
		v := m.data.At(i, j)
		if math.Abs(v) > math.Abs(bestVal) {
			bestVal = v
			bestCol = m.colNames[j]
		}
	}
	return bestCol, bestVal, nil
}

// ComponentAttributeCorrelation computes the Pearson correlation between
// every component column and every attribute column. Rows of the result are
// components, columns are attributes.
//
// Errors:
//   - DimensionError: if the matrices disagree on row count or the name
//     slices disagree with the column counts
func ComponentAttributeCorrelation(components *mat.Dense, componentNames []string,
	attributes *mat.Dense, attributeNames []string) (*LabeledMatrix, error) {

	cr, cc := components.Dims()
	ar, ac := attributes.Dims()
	if cr != ar {
		return nil, hmErrors.NewDimensionError("ComponentAttributeCorrelation", cr, ar, 0)
	}
	if cc != len(componentNames) {
		return nil, hmErrors.NewDimensionError("ComponentAttributeCorrelation", cc, len(componentNames), 1)
	}
	if ac != len(attributeNames) {
		return nil, hmErrors.NewDimensionError("ComponentAttributeCorrelation", ac, len(attributeNames), 1)
	}
	if cr == 0 {
		return nil, hmErrors.NewModelError("ComponentAttributeCorrelation", "empty data", hmErrors.ErrEmptyData)
	}

	data := mat.NewDense(cc, ac, nil)
	compCol := make([]float64, cr)
	attrCol := make([]float64, ar)
	for i := 0; i < cc; i++ {
		mat.Col(compCol, i, components)
		for j := 0; j < ac; j++ {
			mat.Col(attrCol, j, attributes)
			data.Set(i, j, stat.Correlation(compCol, attrCol, nil))
		}
	}

	lm := &LabeledMatrix{
		rowNames: append([]string(nil), componentNames...),
		colNames: append([]string(nil), attributeNames...),
		rowIndex: make(map[string]int, cc),
		colIndex: make(map[string]int, ac),
		data:     data,
	}
	for i, name := range lm.rowNames {
		lm.rowIndex[name] = i
	}
	for j, name := range lm.colNames {
		lm.colIndex[name] = j
	}
	return lm, nil
}
