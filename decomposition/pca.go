// Package decomposition implements dimensionality reduction for the analysis
// pipeline.
//
// PCA performs principal component analysis by eigen-decomposition of the
// covariance matrix. On a standardized table the covariance matrix equals the
// correlation matrix of the raw attributes, which is the decomposition the
// pipeline relies on. The estimator exposes the loading vectors and the
// explained-variance ratio per component for scree reporting and for the
// interpretation layer.
//
// Eigenvector sign is arbitrary: callers must not depend on the sign of a
// component column, only on the relative magnitudes within it.
//
// Example usage:
//
//	pca := decomposition.NewPCA(decomposition.WithNComponents(4))
//	scores, err := pca.FitTransform(standardized)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(pca.ExplainedVarianceRatio())
package decomposition

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/core/model"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/pkg/log"
)

// rankTolFactor scales the largest eigenvalue into the threshold below which
// an eigenvalue counts as numerically zero.
const rankTolFactor = 1e-10

// PCA projects rows onto the leading eigenvectors of the data covariance matrix.
type PCA struct {
	state  *model.StateManager
	logger log.Logger

	// Hyperparameters
	nComponents int

	// Learning parameters
	mean_        []float64
	components_  *mat.Dense // nFeatures x nComponents loading vectors
	eigenvalues_ []float64  // all eigenvalues, descending
	nFeatures_   int
}

// Option is a configuration option for PCA.
type Option func(*PCA)

// WithNComponents sets the number of retained components.
func WithNComponents(n int) Option {
	return func(p *PCA) {
		p.nComponents = n
	}
}

// NewPCA creates a PCA estimator. The default retains 4 components, the
// width the analysis pipeline uses.
func NewPCA(options ...Option) *PCA {
	p := &PCA{
		nComponents: 4,
		state:       model.NewStateManager(),
	}
	for _, opt := range options {
		opt(p)
	}
	p.logger = log.GetLoggerWithName("pca").With(
		log.ModelNameKey, "PCA",
		log.ComponentKey, "decomposition",
	)
	return p
}

// Fit computes the eigen-decomposition of the covariance matrix of X and
// retains the leading eigenvectors as loading vectors.
//
// Parameters:
//   - X: Data matrix of shape (n_samples, n_features), typically standardized
//
// Errors:
//   - ErrEmptyData: if X is empty
//   - ValueError: if nComponents is not in [1, n_features] or n_samples < 2
//   - NumericalInstabilityError: if the decomposition fails or the matrix
//     rank is below the number of retained components
func (p *PCA) Fit(X mat.Matrix) (err error) {
	defer hmErrors.Recover(&err, "PCA.Fit")
	start := time.Now()

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return hmErrors.NewModelError("PCA.Fit", "empty data", hmErrors.ErrEmptyData)
	}
	if r < 2 {
		return hmErrors.NewValueError("PCA.Fit", "need at least 2 samples")
	}
	if p.nComponents < 1 || p.nComponents > c {
		return hmErrors.NewValueError("PCA.Fit",
			fmt.Sprintf("n_components must be in [1, %d], got %d", c, p.nComponents))
	}

	p.logger.Info("Fit started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, r,
		log.FeaturesKey, c,
		log.ComponentsKey, p.nComponents,
	)

	// Center the columns.
	mean := make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		mean[j] = sum / float64(r)
	}
	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, X.At(i, j)-mean[j])
		}
	}

	// Sample covariance matrix, symmetrized against floating noise.
	var prod mat.Dense
	prod.Mul(centered.T(), centered)
	cov := mat.NewSymDense(c, nil)
	for i := 0; i < c; i++ {
		for j := i; j < c; j++ {
			cov.SetSym(i, j, (prod.At(i, j)+prod.At(j, i))/(2*float64(r-1)))
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(cov, true); !ok {
		return hmErrors.NewNumericalInstabilityError("PCA.Fit", "eigen decomposition did not converge")
	}

	// gonum returns eigenpairs in ascending order; reverse to descending.
	ascending := es.Values(nil)
	var vectors mat.Dense
	es.VectorsTo(&vectors)

	eigenvalues := make([]float64, c)
	components := mat.NewDense(c, p.nComponents, nil)
	for k := 0; k < c; k++ {
		v := ascending[c-1-k]
		if v < 0 {
			v = 0
		}
		eigenvalues[k] = v
		if k < p.nComponents {
			for i := 0; i < c; i++ {
				components.Set(i, k, vectors.At(i, c-1-k))
			}
		}
	}

	tol := rankTolFactor * eigenvalues[0]
	rank := 0
	for _, v := range eigenvalues {
		if v > tol {
			rank++
		}
	}
	if eigenvalues[0] <= 0 || rank < p.nComponents {
		return hmErrors.NewNumericalInstabilityError("PCA.Fit",
			fmt.Sprintf("covariance matrix rank %d is below %d retained components", rank, p.nComponents))
	}

	p.mean_ = mean
	p.components_ = components
	p.eigenvalues_ = eigenvalues
	p.nFeatures_ = c

	p.state.SetFitted()
	p.logger.Info("Fit complete",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Transform projects X onto the retained loading vectors, producing one
// component score column per retained component.
//
// Errors:
//   - NotFittedError: if the estimator hasn't been fitted yet
//   - DimensionError: if X doesn't match the number of features from training
func (p *PCA) Transform(X mat.Matrix) (_ *mat.Dense, err error) {
	defer hmErrors.Recover(&err, "PCA.Transform")
	if !p.state.IsFitted() {
		return nil, hmErrors.NewNotFittedError("PCA", "Transform")
	}

	r, c := X.Dims()
	if c != p.nFeatures_ {
		return nil, hmErrors.NewDimensionError("PCA.Transform", p.nFeatures_, c, 1)
	}

	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, X.At(i, j)-p.mean_[j])
		}
	}

	scores := mat.NewDense(r, p.nComponents, nil)
	scores.Mul(centered, p.components_)
	return scores, nil
}

// FitTransform fits the estimator and projects the training data in one step.
func (p *PCA) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// InverseTransform reconstructs feature-space rows from component scores.
// With fewer retained components than features the reconstruction is the
// projection onto the retained subspace, so a residual remains.
//
// Errors:
//   - NotFittedError: if the estimator hasn't been fitted yet
//   - DimensionError: if scores doesn't have nComponents columns
func (p *PCA) InverseTransform(scores mat.Matrix) (_ *mat.Dense, err error) {
	defer hmErrors.Recover(&err, "PCA.InverseTransform")
	if !p.state.IsFitted() {
		return nil, hmErrors.NewNotFittedError("PCA", "InverseTransform")
	}

	r, c := scores.Dims()
	if c != p.nComponents {
		return nil, hmErrors.NewDimensionError("PCA.InverseTransform", p.nComponents, c, 1)
	}

	recon := mat.NewDense(r, p.nFeatures_, nil)
	recon.Mul(scores, p.components_.T())
	for i := 0; i < r; i++ {
		for j := 0; j < p.nFeatures_; j++ {
			recon.Set(i, j, recon.At(i, j)+p.mean_[j])
		}
	}
	return recon, nil
}

// NComponents returns the number of retained components.
func (p *PCA) NComponents() int {
	return p.nComponents
}

// Components returns a copy of the loading vectors: one row per original
// feature, one column per retained component.
func (p *PCA) Components() *mat.Dense {
	if !p.state.IsFitted() {
		return nil
	}
	return mat.DenseCopyOf(p.components_)
}

// Eigenvalues returns a copy of all eigenvalues in descending order.
func (p *PCA) Eigenvalues() []float64 {
	if !p.state.IsFitted() {
		return nil
	}
	out := make([]float64, len(p.eigenvalues_))
	copy(out, p.eigenvalues_)
	return out
}

// ExplainedVarianceRatio returns, for each retained component, the fraction
// of total variance that component carries.
func (p *PCA) ExplainedVarianceRatio() []float64 {
	if !p.state.IsFitted() {
		return nil
	}
	total := 0.0
	for _, v := range p.eigenvalues_ {
		total += v
	}
	out := make([]float64, p.nComponents)
	for k := 0; k < p.nComponents; k++ {
		out[k] = p.eigenvalues_[k] / total
	}
	return out
}

// String returns a string representation of the estimator.
func (p *PCA) String() string {
	if !p.state.IsFitted() {
		return fmt.Sprintf("PCA(n_components=%d)", p.nComponents)
	}
	return fmt.Sprintf("PCA(n_components=%d, n_features=%d)", p.nComponents, p.nFeatures_)
}
