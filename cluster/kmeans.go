// Package cluster implements the clustering stage of the analysis pipeline.
//
// Two independent algorithms partition the component table into k groups:
//
//   - KMeans: full-batch Lloyd iterations with seeded random initialization
//   - Agglomerative: hierarchical agglomerative clustering cut at k
//
// Running both over the same rows is intentional: the pipeline validates
// cluster stability by comparing the two labelings, and no agreement between
// them is guaranteed.
//
// Both algorithms are deterministic. KMeans derives its initial centroids
// from a fixed-seed PCG generator and breaks nearest-centroid ties toward the
// lowest cluster index; Agglomerative resolves equal-distance merges toward
// the lexicographically smallest cluster pair.
package cluster

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/core/model"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/pkg/log"
)

// KMeans implements full-batch k-means clustering (Lloyd's algorithm).
type KMeans struct {
	// State management using composition
	state  *model.StateManager
	logger log.Logger

	// Hyperparameters
	nClusters   int   // Number of clusters
	maxIter     int   // Maximum number of iterations
	randomState int64 // Random seed for centroid initialization

	// Learning parameters
	clusterCenters_ [][]float64 // Cluster centers (nClusters x nFeatures)
	labels_         []int       // Cluster label for each sample
	inertia_        float64     // Within-cluster sum of squared errors
	nIter_          int         // Number of iterations executed

	// Internal state
	mu         sync.RWMutex
	rng        *rand.Rand
	nFeatures_ int
}

// KMeansOption is a configuration option for KMeans.
type KMeansOption func(*KMeans)

// WithKMeansNClusters sets the number of clusters.
func WithKMeansNClusters(n int) KMeansOption {
	return func(km *KMeans) {
		km.nClusters = n
	}
}

// WithKMeansMaxIter sets the maximum number of Lloyd iterations.
func WithKMeansMaxIter(maxIter int) KMeansOption {
	return func(km *KMeans) {
		km.maxIter = maxIter
	}
}

// WithKMeansRandomState sets the random seed used for centroid initialization.
// Reusing a seed over the same input reproduces the assignment exactly.
func WithKMeansRandomState(seed int64) KMeansOption {
	return func(km *KMeans) {
		km.randomState = seed
	}
}

// NewKMeans creates a KMeans instance. Defaults: 3 clusters, 300 iterations,
// seed 42; one-shot analysis runs rely on the fixed default seed for
// reproducibility.
func NewKMeans(options ...KMeansOption) *KMeans {
	km := &KMeans{
		nClusters:   3,
		maxIter:     300,
		randomState: 42,
		state:       model.NewStateManager(),
	}
	for _, opt := range options {
		opt(km)
	}
	km.rng = rand.New(rand.NewPCG(uint64(km.randomState), uint64(km.randomState)))

	km.logger = log.GetLoggerWithName("kmeans").With(
		log.ModelNameKey, "KMeans",
		log.ComponentKey, "cluster",
	)
	return km
}

// Fit partitions the rows of X into nClusters groups.
//
// Each iteration assigns every row to its nearest centroid by Euclidean
// distance and recomputes centroids as the mean of their assigned rows; the
// loop stops when assignments no longer change or maxIter is reached.
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - InvalidClusterCountError: if nClusters < 1 or nClusters > n_samples
func (km *KMeans) Fit(X mat.Matrix) (err error) {
	defer hmErrors.Recover(&err, "KMeans.Fit")
	km.mu.Lock()
	defer km.mu.Unlock()

	start := time.Now()
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return hmErrors.NewModelError("KMeans.Fit", "empty data", hmErrors.ErrEmptyData)
	}
	if km.nClusters < 1 || km.nClusters > rows {
		return hmErrors.NewInvalidClusterCountError("KMeans.Fit", km.nClusters, rows)
	}

	km.logger.Info("Fit started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClustersKey, km.nClusters,
	)

	centers := km.initializeCenters(X)
	labels := make([]int, rows)
	for i := range labels {
		labels[i] = -1
	}

	var finalIter int
	for iter := 0; iter < km.maxIter; iter++ {
		finalIter = iter

		changed := false
		for i := 0; i < rows; i++ {
			sample := mat.Row(nil, i, X)
			nearest := nearestCluster(sample, centers)
			if nearest != labels[i] {
				labels[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}

		// Recompute centroids as the mean of assigned rows. A cluster that
		// lost every row keeps its previous centroid.
		sums := make([][]float64, km.nClusters)
		counts := make([]int, km.nClusters)
		for c := range sums {
			sums[c] = make([]float64, cols)
		}
		for i := 0; i < rows; i++ {
			c := labels[i]
			counts[c]++
			for j := 0; j < cols; j++ {
				sums[c][j] += X.At(i, j)
			}
		}
		for c := 0; c < km.nClusters; c++ {
			if counts[c] == 0 {
				continue
			}
			for j := 0; j < cols; j++ {
				centers[c][j] = sums[c][j] / float64(counts[c])
			}
		}
	}

	km.clusterCenters_ = centers
	km.labels_ = labels
	km.inertia_ = computeInertia(X, centers, labels)
	km.nIter_ = finalIter
	km.nFeatures_ = cols

	km.state.SetFitted()
	km.logger.Info("Fit complete",
		log.OperationKey, log.OperationFit,
		log.IterationsKey, km.nIter_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict assigns each row of X to its nearest fitted centroid.
//
// Errors:
//   - NotFittedError: if the model hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (km *KMeans) Predict(X mat.Matrix) ([]int, error) {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if !km.state.IsFitted() {
		return nil, hmErrors.NewNotFittedError("KMeans", "Predict")
	}

	rows, cols := X.Dims()
	if cols != km.nFeatures_ {
		return nil, hmErrors.NewDimensionError("KMeans.Predict", km.nFeatures_, cols, 1)
	}

	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		labels[i] = nearestCluster(sample, km.clusterCenters_)
	}
	return labels, nil
}

// FitPredict fits the model and returns the training labels.
func (km *KMeans) FitPredict(X mat.Matrix) ([]int, error) {
	if err := km.Fit(X); err != nil {
		return nil, err
	}
	return km.Labels(), nil
}

// Labels returns cluster labels for the training data.
func (km *KMeans) Labels() []int {
	km.mu.RLock()
	defer km.mu.RUnlock()

	if km.labels_ == nil {
		return nil
	}
	labels := make([]int, len(km.labels_))
	copy(labels, km.labels_)
	return labels
}

// ClusterCenters returns a copy of the fitted cluster centers.
func (km *KMeans) ClusterCenters() [][]float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()

	centers := make([][]float64, len(km.clusterCenters_))
	for i := range km.clusterCenters_ {
		centers[i] = make([]float64, len(km.clusterCenters_[i]))
		copy(centers[i], km.clusterCenters_[i])
	}
	return centers
}

// Inertia returns the within-cluster sum of squared distances.
func (km *KMeans) Inertia() float64 {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.inertia_
}

// NIterations returns the number of Lloyd iterations executed.
func (km *KMeans) NIterations() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return km.nIter_
}

// initializeCenters picks nClusters distinct rows as initial centroids via a
// seeded Fisher-Yates shuffle.
func (km *KMeans) initializeCenters(X mat.Matrix) [][]float64 {
	rows, cols := X.Dims()

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}
	for i := rows - 1; i > 0; i-- {
		j := km.rng.IntN(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	centers := make([][]float64, km.nClusters)
	for c := 0; c < km.nClusters; c++ {
		centers[c] = make([]float64, cols)
		copy(centers[c], mat.Row(nil, indices[c], X))
	}
	return centers
}

// nearestCluster returns the index of the closest center. The strict
// comparison keeps ties on the lowest cluster index.
func nearestCluster(sample []float64, centers [][]float64) int {
	minDist := math.Inf(1)
	nearest := 0
	for c, center := range centers {
		if d := euclideanDistance(sample, center); d < minDist {
			minDist = d
			nearest = c
		}
	}
	return nearest
}

// computeInertia calculates the within-cluster sum of squared errors.
func computeInertia(X mat.Matrix, centers [][]float64, labels []int) float64 {
	rows, _ := X.Dims()
	inertia := 0.0
	for i := 0; i < rows; i++ {
		sample := mat.Row(nil, i, X)
		d := euclideanDistance(sample, centers[labels[i]])
		inertia += d * d
	}
	return inertia
}

// euclideanDistance calculates the Euclidean distance between two points.
func euclideanDistance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
