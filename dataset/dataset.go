// Package dataset loads the clinical heart-disease table and splits its
// attributes into continuous and categorical sets.
//
// The loader reads a comma-separated file with the fixed schema
//
//	age, sex, cp, trestbps, chol, fbs, restecg, thalach, exang, oldpeak,
//	slope, ca, thal [, target|num]
//
// drops the target column, removes every row containing a missing value
// ("?", "NA" or empty cells), and exposes the result as an immutable numeric
// table. Column partitioning is fixed by name: sex, cp, fbs, restecg, exang,
// slope, ca and thal are categorical; everything else is continuous.
//
// Example usage:
//
//	ds, err := dataset.Load("processed.cleveland.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	X := ds.Matrix() // 13 feature columns, no missing values
package dataset

import (
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// Continuous attribute names, in schema order.
var continuousColumns = []string{"age", "trestbps", "chol", "thalach", "oldpeak"}

// Categorical attribute names, in schema order.
var categoricalColumns = []string{"sex", "cp", "fbs", "restecg", "exang", "slope", "ca", "thal"}

// schemaColumns is the full feature schema in the order the pipeline uses.
var schemaColumns = []string{
	"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg",
	"thalach", "exang", "oldpeak", "slope", "ca", "thal",
}

// targetColumns are label columns removed before analysis. The UCI Cleveland
// distribution names the label "num"; re-exports commonly call it "target".
var targetColumns = []string{"target", "num"}

// Schema returns the fixed feature column names in pipeline order.
func Schema() []string {
	out := make([]string, len(schemaColumns))
	copy(out, schemaColumns)
	return out
}

// Continuous returns the continuous attribute names.
func Continuous() []string {
	out := make([]string, len(continuousColumns))
	copy(out, continuousColumns)
	return out
}

// Categorical returns the categorical attribute names.
func Categorical() []string {
	out := make([]string, len(categoricalColumns))
	copy(out, categoricalColumns)
	return out
}

// Dataset is an immutable table of patient records with the target column
// removed and no missing values. All values are stored as float64; categorical
// attributes hold small integer codes.
type Dataset struct {
	columns     []string
	colIndex    map[string]int
	categorical map[string]bool
	data        *mat.Dense
}

// Load reads a CSV file from path and returns the parsed Dataset.
//
// Errors:
//   - ParseError: the file cannot be read or required columns are absent
//   - EmptyDatasetError: every row contained a missing value
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hmErrors.NewParseError(path, nil, err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, path)
}

// Read parses CSV content from r. source names the input in error messages.
func Read(r io.Reader, source string) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
		dataframe.NaNValues([]string{"", "?", "NA", "NaN"}),
	)
	if df.Err != nil {
		return nil, hmErrors.NewParseError(source, nil, df.Err)
	}

	present := make(map[string]bool, len(df.Names()))
	for _, name := range df.Names() {
		present[name] = true
	}

	var missing []string
	for _, name := range schemaColumns {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, hmErrors.NewParseError(source, missing, nil)
	}

	// Extracting only the schema columns drops the target label and any
	// extra columns in one step.
	nRaw := df.Nrow()
	cols := make([]series.Series, len(schemaColumns))
	for j, name := range schemaColumns {
		cols[j] = df.Col(name)
		if cols[j].Err != nil {
			return nil, hmErrors.NewParseError(source, nil, cols[j].Err)
		}
	}

	// Collect rows with no missing value in any feature column.
	kept := make([]int, 0, nRaw)
	for i := 0; i < nRaw; i++ {
		complete := true
		for j := range cols {
			e := cols[j].Elem(i)
			if e.IsNA() || math.IsNaN(e.Float()) {
				complete = false
				break
			}
		}
		if complete {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, hmErrors.NewEmptyDatasetError(source, nRaw)
	}

	data := mat.NewDense(len(kept), len(schemaColumns), nil)
	for r, i := range kept {
		for j := range cols {
			data.Set(r, j, cols[j].Elem(i).Float())
		}
	}

	return New(data)
}

// New wraps a numeric matrix whose columns follow Schema() order. Used by the
// loader and by callers constructing synthetic datasets.
func New(data *mat.Dense) (*Dataset, error) {
	r, c := data.Dims()
	if r == 0 {
		return nil, hmErrors.NewEmptyDatasetError("matrix", 0)
	}
	if c != len(schemaColumns) {
		return nil, hmErrors.NewDimensionError("dataset.New", len(schemaColumns), c, 1)
	}

	ds := &Dataset{
		columns:     Schema(),
		colIndex:    make(map[string]int, len(schemaColumns)),
		categorical: make(map[string]bool, len(categoricalColumns)),
		data:        mat.DenseCopyOf(data),
	}
	for j, name := range ds.columns {
		ds.colIndex[name] = j
	}
	for _, name := range categoricalColumns {
		ds.categorical[name] = true
	}
	return ds, nil
}

// NRows returns the number of records.
func (d *Dataset) NRows() int {
	r, _ := d.data.Dims()
	return r
}

// NCols returns the number of feature columns.
func (d *Dataset) NCols() int {
	_, c := d.data.Dims()
	return c
}

// Columns returns the feature column names in table order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// IsCategorical reports whether the named column is in the categorical set.
func (d *Dataset) IsCategorical(name string) bool {
	return d.categorical[name]
}

// Column returns a copy of the named column's values.
func (d *Dataset) Column(name string) ([]float64, error) {
	j, ok := d.colIndex[name]
	if !ok {
		return nil, hmErrors.NewValueError("Dataset.Column", "unknown column "+name)
	}
	out := make([]float64, d.NRows())
	mat.Col(out, j, d.data)
	return out, nil
}

// Matrix returns a copy of the full feature table.
func (d *Dataset) Matrix() *mat.Dense {
	return mat.DenseCopyOf(d.data)
}

// ContinuousMatrix returns a copy of the continuous columns, in Continuous() order.
func (d *Dataset) ContinuousMatrix() *mat.Dense {
	return d.subMatrix(continuousColumns)
}

// CategoricalMatrix returns a copy of the categorical columns, in Categorical() order.
func (d *Dataset) CategoricalMatrix() *mat.Dense {
	return d.subMatrix(categoricalColumns)
}

func (d *Dataset) subMatrix(names []string) *mat.Dense {
	r := d.NRows()
	out := mat.NewDense(r, len(names), nil)
	for k, name := range names {
		j := d.colIndex[name]
		for i := 0; i < r; i++ {
			out.Set(i, k, d.data.At(i, j))
		}
	}
	return out
}
