package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/dataset"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

const header = "age,sex,cp,trestbps,chol,fbs,restecg,thalach,exang,oldpeak,slope,ca,thal,num"

func TestRead_BasicFunctionality(t *testing.T) {
	csv := strings.Join([]string{
		header,
		"63,1,1,145,233,1,2,150,0,2.3,3,0,6,0",
		"67,1,4,160,286,0,2,108,1,1.5,2,3,3,2",
		"41,0,2,130,204,0,2,172,0,1.4,1,0,3,0",
	}, "\n")

	ds, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.NoError(t, err)

	assert.Equal(t, 3, ds.NRows())
	assert.Equal(t, 13, ds.NCols())

	// The label column must not survive loading.
	assert.NotContains(t, ds.Columns(), "num")
	assert.NotContains(t, ds.Columns(), "target")
	assert.Equal(t, dataset.Schema(), ds.Columns())

	age, err := ds.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{63, 67, 41}, age)

	chol, err := ds.Column("chol")
	require.NoError(t, err)
	assert.Equal(t, []float64{233, 286, 204}, chol)
}

func TestRead_DropsRowsWithMissingValues(t *testing.T) {
	// Row 2 has "?" for ca, row 3 an empty thal cell. Both must be dropped.
	csv := strings.Join([]string{
		header,
		"63,1,1,145,233,1,2,150,0,2.3,3,0,6,0",
		"67,1,4,160,286,0,2,108,1,1.5,2,?,3,2",
		"41,0,2,130,204,0,2,172,0,1.4,1,0,,0",
		"56,1,2,120,236,0,0,178,0,0.8,1,0,3,0",
	}, "\n")

	ds, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.NoError(t, err)
	require.Equal(t, 2, ds.NRows())

	age, err := ds.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{63, 56}, age)
}

func TestRead_AllRowsMissing(t *testing.T) {
	csv := strings.Join([]string{
		header,
		"63,1,1,145,233,1,2,150,0,2.3,3,?,6,0",
		"67,1,4,160,286,0,2,108,1,1.5,2,?,3,2",
	}, "\n")

	_, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.Error(t, err)

	var empty *hmErrors.EmptyDatasetError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, 2, empty.Dropped)
	assert.ErrorIs(t, err, hmErrors.ErrEmptyDataset)
}

func TestRead_MissingRequiredColumn(t *testing.T) {
	// No "thal" column.
	csv := strings.Join([]string{
		"age,sex,cp,trestbps,chol,fbs,restecg,thalach,exang,oldpeak,slope,ca,num",
		"63,1,1,145,233,1,2,150,0,2.3,3,0,0",
	}, "\n")

	_, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.Error(t, err)

	var parse *hmErrors.ParseError
	require.ErrorAs(t, err, &parse)
	assert.Equal(t, "test.csv", parse.Source)
	assert.Equal(t, []string{"thal"}, parse.Missing)
}

func TestLoad_NonexistentFile(t *testing.T) {
	_, err := dataset.Load("does-not-exist.csv")
	require.Error(t, err)

	var parse *hmErrors.ParseError
	assert.ErrorAs(t, err, &parse)
}

func TestColumnPartition(t *testing.T) {
	csv := strings.Join([]string{
		header,
		"63,1,1,145,233,1,2,150,0,2.3,3,0,6,0",
		"67,1,4,160,286,0,2,108,1,1.5,2,3,3,2",
	}, "\n")

	ds, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.NoError(t, err)

	for _, name := range dataset.Categorical() {
		assert.True(t, ds.IsCategorical(name), "expected %s categorical", name)
	}
	for _, name := range dataset.Continuous() {
		assert.False(t, ds.IsCategorical(name), "expected %s continuous", name)
	}

	cont := ds.ContinuousMatrix()
	r, c := cont.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, len(dataset.Continuous()), c)
	// First continuous column is age.
	assert.Equal(t, 63.0, cont.At(0, 0))

	cat := ds.CategoricalMatrix()
	_, c = cat.Dims()
	assert.Equal(t, len(dataset.Categorical()), c)
}

func TestNew_DimensionCheck(t *testing.T) {
	_, err := dataset.New(mat.NewDense(2, 5, nil))
	require.Error(t, err)

	var dim *hmErrors.DimensionError
	require.ErrorAs(t, err, &dim)
	assert.Equal(t, 13, dim.Expected)
	assert.Equal(t, 5, dim.Got)
}

func TestMatrix_ReturnsCopy(t *testing.T) {
	csv := strings.Join([]string{
		header,
		"63,1,1,145,233,1,2,150,0,2.3,3,0,6,0",
	}, "\n")

	ds, err := dataset.Read(strings.NewReader(csv), "test.csv")
	require.NoError(t, err)

	m := ds.Matrix()
	m.Set(0, 0, -1)

	age, err := ds.Column("age")
	require.NoError(t, err)
	assert.Equal(t, 63.0, age[0], "mutating the returned matrix must not affect the dataset")
}
