// Package pipeline wires the analysis stages into one deterministic run.
//
// An Analysis executes the full exploratory sequence over a loaded dataset:
//
//	standardize → PCA → k-means + hierarchical clustering → discretize
//	→ association-rule mining → component-attribute correlation
//
// Every stage consumes the previous stage's output by value and produces a
// new table, so a Result never aliases intermediate state. The run is
// single-threaded and batch: the dataset is small enough that the whole
// analysis completes synchronously, and the fixed seed in Config substitutes
// for any ordering guarantee.
//
// The first failing stage aborts the run; its error carries the stage name
// and, where applicable, the offending column.
//
// Example usage:
//
//	ds, err := dataset.Load("processed.cleveland.csv")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := pipeline.New(pipeline.DefaultConfig()).Run(ds)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Rules[0])
package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/heartmine/cluster"
	"github.com/ezoic/heartmine/dataset"
	"github.com/ezoic/heartmine/decomposition"
	"github.com/ezoic/heartmine/metrics"
	"github.com/ezoic/heartmine/mining"
	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/pkg/log"
	"github.com/ezoic/heartmine/preprocessing"
)

// Config holds every tunable of one analysis run. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// NComponents is the number of principal components retained.
	NComponents int

	// NClusters is the number of groups both clustering methods produce.
	NClusters int

	// NBins is the number of frequency bins per component column.
	NBins int

	// MinSupport and MinConfidence are the rule-mining thresholds.
	MinSupport    float64
	MinConfidence float64

	// Seed drives k-means centroid initialization. Rerunning with the same
	// seed and input reproduces the assignment exactly.
	Seed int64

	// MaxIter caps the k-means Lloyd iterations.
	MaxIter int

	// Linkage selects the agglomerative linkage rule.
	Linkage cluster.Linkage
}

// DefaultConfig returns the configuration the exploratory analysis uses:
// 4 components, 3 clusters, 3 bins, support 0.1, confidence 0.8.
func DefaultConfig() Config {
	return Config{
		NComponents:   4,
		NClusters:     3,
		NBins:         3,
		MinSupport:    0.1,
		MinConfidence: 0.8,
		Seed:          42,
		MaxIter:       300,
		Linkage:       cluster.CompleteLinkage,
	}
}

// Result collects every artifact of one analysis run. All matrices and
// slices are owned by the Result; callers may retain them freely.
type Result struct {
	// ComponentNames are the retained component column names (PC1, PC2, ...).
	ComponentNames []string

	// Components is the component table: one row per record, one column per
	// retained component.
	Components *mat.Dense

	// Loadings holds the loading vectors: one row per original feature
	// (FeatureNames order), one column per retained component.
	Loadings     *mat.Dense
	FeatureNames []string

	// ExplainedVarianceRatio is the per-component fraction of total variance.
	ExplainedVarianceRatio []float64

	// KMeansLabels and HierarchicalLabels are the two independent cluster
	// assignments, 0-based. The methods need not agree; comparing them is
	// how the analysis judges cluster stability.
	KMeansLabels       []int
	KMeansInertia      float64
	HierarchicalLabels []int

	// DiscretizedLabels holds the ordinal bin name per record and component.
	DiscretizedLabels [][]string

	// Transactions, FrequentItemsets and Rules are the mining artifacts.
	Transactions     []mining.Transaction
	FrequentItemsets []mining.Itemset
	Rules            []mining.Rule

	// Correlations relates components (rows) to the original continuous
	// attributes (columns) by Pearson correlation.
	Correlations *metrics.LabeledMatrix

	// ColumnStats retains the standardization statistics per continuous
	// attribute for reproducibility.
	ColumnStats map[string]preprocessing.ColumnStats
}

// Analysis runs the pipeline with a fixed configuration.
type Analysis struct {
	config Config
	logger log.Logger
}

// New creates an Analysis with the given configuration.
func New(config Config) *Analysis {
	return &Analysis{
		config: config,
		logger: log.GetLoggerWithName("pipeline").With(
			log.ComponentKey, "pipeline",
		),
	}
}

// Config returns the configuration of this analysis.
func (a *Analysis) Config() Config {
	return a.config
}

// Run executes every stage over ds and returns the collected Result.
// The error of the first failing stage is returned wrapped with the stage
// name; no partial result is produced.
func (a *Analysis) Run(ds *dataset.Dataset) (*Result, error) {
	start := time.Now()
	a.logger.Info("Analysis started",
		log.SamplesKey, ds.NRows(),
		log.FeaturesKey, ds.NCols(),
	)

	// Standardize the continuous attributes.
	table, err := preprocessing.Standardize(ds)
	if err != nil {
		return nil, hmErrors.Wrap(err, "standardization stage failed")
	}

	// Project onto the leading principal components.
	pca := decomposition.NewPCA(decomposition.WithNComponents(a.config.NComponents))
	scores, err := pca.FitTransform(table.Matrix())
	if err != nil {
		return nil, hmErrors.Wrap(err, "decomposition stage failed")
	}
	names := componentNames(a.config.NComponents)

	// Partition the component table twice, independently.
	km := cluster.NewKMeans(
		cluster.WithKMeansNClusters(a.config.NClusters),
		cluster.WithKMeansMaxIter(a.config.MaxIter),
		cluster.WithKMeansRandomState(a.config.Seed),
	)
	kmLabels, err := km.FitPredict(scores)
	if err != nil {
		return nil, hmErrors.Wrap(err, "k-means stage failed")
	}

	agg := cluster.NewAgglomerative(
		cluster.WithAggNClusters(a.config.NClusters),
		cluster.WithAggLinkage(a.config.Linkage),
	)
	aggLabels, err := agg.FitPredict(scores)
	if err != nil {
		return nil, hmErrors.Wrap(err, "hierarchical stage failed")
	}

	// Discretize each component into frequency bins.
	disc := preprocessing.NewKBinsDiscretizer(a.config.NBins)
	disc.ColumnNames = names
	codes, err := disc.FitTransform(scores)
	if err != nil {
		return nil, hmErrors.Wrap(err, "discretization stage failed")
	}
	labels := disc.LabelTable(codes)

	// Mine association rules over the discretized components.
	miner := mining.NewApriori(
		mining.WithMinSupport(a.config.MinSupport),
		mining.WithMinConfidence(a.config.MinConfidence),
	)
	transactions := mining.TransactionsFromLabels(names, labels)
	rules, err := miner.Mine(transactions)
	if err != nil {
		return nil, hmErrors.Wrap(err, "rule-mining stage failed")
	}

	// Correlate components with the original continuous attributes so a
	// human can name them.
	correlations, err := metrics.ComponentAttributeCorrelation(
		scores, names,
		ds.ContinuousMatrix(), dataset.Continuous(),
	)
	if err != nil {
		return nil, hmErrors.Wrap(err, "interpretation stage failed")
	}

	stats := make(map[string]preprocessing.ColumnStats)
	for _, name := range dataset.Continuous() {
		if s, ok := table.Stats(name); ok {
			stats[name] = s
		}
	}

	a.logger.Info("Analysis complete",
		log.RulesKey, len(rules),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Result{
		ComponentNames:         names,
		Components:             scores,
		Loadings:               pca.Components(),
		FeatureNames:           table.Columns(),
		ExplainedVarianceRatio: pca.ExplainedVarianceRatio(),
		KMeansLabels:           kmLabels,
		KMeansInertia:          km.Inertia(),
		HierarchicalLabels:     aggLabels,
		DiscretizedLabels:      labels,
		Transactions:           transactions,
		FrequentItemsets:       miner.FrequentItemsets(),
		Rules:                  rules,
		Correlations:           correlations,
		ColumnStats:            stats,
	}, nil
}

// componentNames returns PC1..PCn.
func componentNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("PC%d", i+1)
	}
	return names
}
