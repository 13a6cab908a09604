package cluster

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/core/model"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/pkg/log"
)

// Linkage selects how the distance between two clusters is derived from the
// pairwise distances of their members.
type Linkage string

const (
	// CompleteLinkage uses the maximum pairwise distance. This is the
	// default: it produces compact clusters and is the documented choice
	// for the analysis pipeline.
	CompleteLinkage Linkage = "complete"

	// AverageLinkage uses the mean pairwise distance.
	AverageLinkage Linkage = "average"
)

// Agglomerative implements hierarchical agglomerative clustering over
// pairwise Euclidean distances, cut at nClusters.
//
// The algorithm is fully deterministic: at every step the closest active
// cluster pair is merged, and equal distances resolve to the
// lexicographically smallest pair of cluster slots.
type Agglomerative struct {
	state  *model.StateManager
	logger log.Logger

	// Hyperparameters
	nClusters int
	linkage   Linkage

	// Learning parameters
	labels_    []int
	nFeatures_ int
}

// AgglomerativeOption is a configuration option for Agglomerative.
type AgglomerativeOption func(*Agglomerative)

// WithAggNClusters sets the number of clusters the dendrogram is cut into.
func WithAggNClusters(n int) AgglomerativeOption {
	return func(a *Agglomerative) {
		a.nClusters = n
	}
}

// WithAggLinkage sets the linkage rule. Unknown values fall back to complete.
func WithAggLinkage(l Linkage) AgglomerativeOption {
	return func(a *Agglomerative) {
		a.linkage = l
	}
}

// NewAgglomerative creates an Agglomerative instance. Defaults: 3 clusters,
// complete linkage.
func NewAgglomerative(options ...AgglomerativeOption) *Agglomerative {
	a := &Agglomerative{
		nClusters: 3,
		linkage:   CompleteLinkage,
		state:     model.NewStateManager(),
	}
	for _, opt := range options {
		opt(a)
	}
	if a.linkage != CompleteLinkage && a.linkage != AverageLinkage {
		a.linkage = CompleteLinkage
	}

	a.logger = log.GetLoggerWithName("agglomerative").With(
		log.ModelNameKey, "Agglomerative",
		log.ComponentKey, "cluster",
	)
	return a
}

// Fit builds the agglomeration over the rows of X and cuts it at nClusters.
//
// Cluster-to-cluster distances are maintained with the Lance-Williams update
// for the configured linkage, so the whole agglomeration runs in O(n²) space
// and O(n² · merges) time, which is ample for a few hundred records.
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - InvalidClusterCountError: if nClusters < 1 or nClusters > n_samples
func (a *Agglomerative) Fit(X mat.Matrix) (err error) {
	defer hmErrors.Recover(&err, "Agglomerative.Fit")

	start := time.Now()
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return hmErrors.NewModelError("Agglomerative.Fit", "empty data", hmErrors.ErrEmptyData)
	}
	if a.nClusters < 1 || a.nClusters > rows {
		return hmErrors.NewInvalidClusterCountError("Agglomerative.Fit", a.nClusters, rows)
	}

	a.logger.Info("Fit started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClustersKey, a.nClusters,
	)

	// Pairwise distances double as the initial cluster-distance matrix:
	// every row starts as its own cluster slot.
	dist := make([][]float64, rows)
	samples := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		samples[i] = mat.Row(nil, i, X)
	}
	for i := 0; i < rows; i++ {
		dist[i] = make([]float64, rows)
		for j := i + 1; j < rows; j++ {
			dist[i][j] = euclideanDistance(samples[i], samples[j])
		}
	}
	d := func(i, j int) float64 {
		if i > j {
			i, j = j, i
		}
		return dist[i][j]
	}
	setD := func(i, j int, v float64) {
		if i > j {
			i, j = j, i
		}
		dist[i][j] = v
	}

	active := make([]bool, rows)
	size := make([]int, rows)
	slot := make([]int, rows) // row -> cluster slot
	for i := 0; i < rows; i++ {
		active[i] = true
		size[i] = 1
		slot[i] = i
	}

	for remaining := rows; remaining > a.nClusters; remaining-- {
		// Closest active pair; scan order keeps ties on the smallest (i, j).
		best := math.Inf(1)
		bi, bj := -1, -1
		for i := 0; i < rows; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < rows; j++ {
				if !active[j] {
					continue
				}
				if d(i, j) < best {
					best = d(i, j)
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi and update distances per the linkage rule.
		for k := 0; k < rows; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			var merged float64
			switch a.linkage {
			case AverageLinkage:
				merged = (float64(size[bi])*d(bi, k) + float64(size[bj])*d(bj, k)) /
					float64(size[bi]+size[bj])
			default: // complete
				merged = math.Max(d(bi, k), d(bj, k))
			}
			setD(bi, k, merged)
		}
		size[bi] += size[bj]
		active[bj] = false
		for i := 0; i < rows; i++ {
			if slot[i] == bj {
				slot[i] = bi
			}
		}
	}

	// Relabel surviving slots to 0..nClusters-1 in slot order; since a merge
	// always keeps the lower slot, label order follows each cluster's
	// smallest member row.
	relabel := make(map[int]int, a.nClusters)
	next := 0
	for i := 0; i < rows; i++ {
		if active[i] {
			relabel[i] = next
			next++
		}
	}
	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = relabel[slot[i]]
	}

	a.labels_ = labels
	a.nFeatures_ = cols
	a.state.SetFitted()

	a.logger.Info("Fit complete",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// FitPredict fits the model and returns the training labels.
func (a *Agglomerative) FitPredict(X mat.Matrix) ([]int, error) {
	if err := a.Fit(X); err != nil {
		return nil, err
	}
	return a.Labels(), nil
}

// Labels returns cluster labels for the training data.
func (a *Agglomerative) Labels() []int {
	if a.labels_ == nil {
		return nil
	}
	labels := make([]int, len(a.labels_))
	copy(labels, a.labels_)
	return labels
}

// LinkageRule returns the configured linkage.
func (a *Agglomerative) LinkageRule() Linkage {
	return a.linkage
}
