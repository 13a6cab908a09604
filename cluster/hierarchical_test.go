package cluster_test

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/cluster"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// threeBlobs returns 12 rows in three tight groups far apart, ordered so the
// first four rows form the first group.
func threeBlobs() *mat.Dense {
	X := mat.NewDense(12, 2, nil)
	centers := [][2]float64{{0, 0}, {20, 0}, {0, 20}}
	offsets := []float64{-0.3, -0.1, 0.1, 0.3}
	for b, center := range centers {
		for i, off := range offsets {
			X.Set(b*4+i, 0, center[0]+off)
			X.Set(b*4+i, 1, center[1]-off)
		}
	}
	return X
}

func TestAgglomerative_RecoversSeparatedBlobs(t *testing.T) {
	X := threeBlobs()

	agg := cluster.NewAgglomerative(cluster.WithAggNClusters(3))
	labels, err := agg.FitPredict(X)
	if err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}

	// Labels are assigned in order of each cluster's smallest member row,
	// so the recovery is exact, not just exact up to permutation.
	expected := []int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}
	for i, want := range expected {
		if labels[i] != want {
			t.Fatalf("labels[%d]: expected %d, got %d (labels %v)", i, want, labels[i], labels)
		}
	}
}

func TestAgglomerative_AverageLinkage(t *testing.T) {
	X := threeBlobs()

	agg := cluster.NewAgglomerative(
		cluster.WithAggNClusters(3),
		cluster.WithAggLinkage(cluster.AverageLinkage),
	)
	labels, err := agg.FitPredict(X)
	if err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}
	if agg.LinkageRule() != cluster.AverageLinkage {
		t.Errorf("Expected average linkage, got %s", agg.LinkageRule())
	}

	expected := []int{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}
	for i, want := range expected {
		if labels[i] != want {
			t.Fatalf("labels[%d]: expected %d, got %d (labels %v)", i, want, labels[i], labels)
		}
	}
}

func TestAgglomerative_UnknownLinkageFallsBack(t *testing.T) {
	agg := cluster.NewAgglomerative(cluster.WithAggLinkage(cluster.Linkage("ward")))
	if agg.LinkageRule() != cluster.CompleteLinkage {
		t.Errorf("Expected fallback to complete linkage, got %s", agg.LinkageRule())
	}
}

func TestAgglomerative_SingleCluster(t *testing.T) {
	X := threeBlobs()

	agg := cluster.NewAgglomerative(cluster.WithAggNClusters(1))
	labels, err := agg.FitPredict(X)
	if err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}
	for i, l := range labels {
		if l != 0 {
			t.Errorf("Row %d: expected label 0, got %d", i, l)
		}
	}
}

func TestAgglomerative_EveryRowItsOwnCluster(t *testing.T) {
	X := threeBlobs()

	agg := cluster.NewAgglomerative(cluster.WithAggNClusters(12))
	labels, err := agg.FitPredict(X)
	if err != nil {
		t.Fatalf("FitPredict failed: %v", err)
	}
	for i, l := range labels {
		if l != i {
			t.Errorf("Row %d: expected label %d, got %d", i, i, l)
		}
	}
}

func TestAgglomerative_InvalidClusterCount(t *testing.T) {
	X := threeBlobs()

	var invalid *hmErrors.InvalidClusterCountError

	agg := cluster.NewAgglomerative(cluster.WithAggNClusters(13))
	if err := agg.Fit(X); err == nil || !hmErrors.As(err, &invalid) {
		t.Errorf("Expected InvalidClusterCountError for k=13 with 12 rows, got %v", err)
	}

	agg = cluster.NewAgglomerative(cluster.WithAggNClusters(0))
	if err := agg.Fit(X); err == nil || !hmErrors.As(err, &invalid) {
		t.Errorf("Expected InvalidClusterCountError for k=0, got %v", err)
	}
}

func TestAgglomerative_Deterministic(t *testing.T) {
	X := threeBlobs()

	first, err := cluster.NewAgglomerative(cluster.WithAggNClusters(3)).FitPredict(X)
	if err != nil {
		t.Fatalf("First FitPredict failed: %v", err)
	}
	second, err := cluster.NewAgglomerative(cluster.WithAggNClusters(3)).FitPredict(X)
	if err != nil {
		t.Fatalf("Second FitPredict failed: %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Repeated runs disagree at row %d: %v vs %v", i, first, second)
		}
	}
}
