// Command heartmine runs the full exploratory analysis over a heart-disease
// CSV file and prints the findings: explained variance per component, the
// attribute each component tracks, cluster sizes and stability, and the mined
// association rules.
//
// Configuration is read from an optional YAML file passed as the first
// argument:
//
//	dataset: processed.cleveland.csv
//	log_level: info
//	components: 4
//	clusters: 3
//	bins: 3
//	min_support: 0.1
//	min_confidence: 0.8
//	seed: 42
//	scree_plot: scree.png
//
// Every key is optional; omitted keys keep the defaults above. When
// scree_plot names a file, a scree chart of the explained-variance ratios is
// written there.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ezoic/heartmine/cluster"
	"github.com/ezoic/heartmine/dataset"
	"github.com/ezoic/heartmine/metrics"
	"github.com/ezoic/heartmine/mining"
	"github.com/ezoic/heartmine/pipeline"
	"github.com/ezoic/heartmine/pkg/log"
)

func main() {
	v := viper.New()
	v.SetDefault("dataset", "processed.cleveland.csv")
	v.SetDefault("log_level", "info")
	v.SetDefault("components", 4)
	v.SetDefault("clusters", 3)
	v.SetDefault("bins", 3)
	v.SetDefault("min_support", 0.1)
	v.SetDefault("min_confidence", 0.8)
	v.SetDefault("seed", 42)
	v.SetDefault("max_iterations", 300)
	v.SetDefault("linkage", "complete")
	v.SetDefault("scree_plot", "")

	if len(os.Args) > 1 {
		v.SetConfigFile(os.Args[1])
		if err := v.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "cannot read config %s: %v\n", os.Args[1], err)
			os.Exit(1)
		}
	}

	log.SetupLogger(v.GetString("log_level"))

	cfg := pipeline.DefaultConfig()
	cfg.NComponents = v.GetInt("components")
	cfg.NClusters = v.GetInt("clusters")
	cfg.NBins = v.GetInt("bins")
	cfg.MinSupport = v.GetFloat64("min_support")
	cfg.MinConfidence = v.GetFloat64("min_confidence")
	cfg.Seed = v.GetInt64("seed")
	cfg.MaxIter = v.GetInt("max_iterations")
	cfg.Linkage = cluster.Linkage(v.GetString("linkage"))

	path := v.GetString("dataset")
	ds, err := dataset.Load(path)
	if err != nil {
		log.LogError(err, "failed to load dataset")
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %d records, %d attributes\n", path, ds.NRows(), ds.NCols())

	result, err := pipeline.New(cfg).Run(ds)
	if err != nil {
		log.LogError(err, "analysis failed")
		os.Exit(1)
	}

	printComponents(result)
	printClusters(result, cfg.NClusters)
	printRules(result.Rules)

	if out := v.GetString("scree_plot"); out != "" {
		if err := writeScreePlot(result, out); err != nil {
			log.LogError(err, "failed to write scree plot")
			os.Exit(1)
		}
		fmt.Printf("\nScree plot written to %s\n", out)
	}
}

func printComponents(result *pipeline.Result) {
	fmt.Println("\nPrincipal components:")
	for i, name := range result.ComponentNames {
		ratio := result.ExplainedVarianceRatio[i]
		attr, r, err := result.Correlations.Strongest(name)
		if err != nil {
			fmt.Printf("  %s  %5.1f%% of variance\n", name, 100*ratio)
			continue
		}
		fmt.Printf("  %s  %5.1f%% of variance, tracks %s (r=%+.2f)\n",
			name, 100*ratio, attr, r)
	}
}

func printClusters(result *pipeline.Result, k int) {
	kmSizes := make([]int, k)
	for _, l := range result.KMeansLabels {
		kmSizes[l]++
	}
	aggSizes := make([]int, k)
	for _, l := range result.HierarchicalLabels {
		aggSizes[l]++
	}

	fmt.Println("\nClustering:")
	fmt.Printf("  k-means sizes:      %v (inertia %.2f)\n", kmSizes, result.KMeansInertia)
	fmt.Printf("  hierarchical sizes: %v\n", aggSizes)

	agreement, err := metrics.LabelAgreement(result.KMeansLabels, result.HierarchicalLabels)
	if err == nil {
		fmt.Printf("  method agreement:   %.1f%%\n", 100*agreement)
	}
}

func printRules(rules []mining.Rule) {
	fmt.Printf("\nAssociation rules (%d):\n", len(rules))
	for i, rule := range rules {
		if i == 20 {
			fmt.Printf("  ... and %d more\n", len(rules)-i)
			break
		}
		fmt.Printf("  %s => %s  (support %.2f, confidence %.2f, lift %.2f)\n",
			joinItems(rule.Antecedent), joinItems(rule.Consequent),
			rule.Support, rule.Confidence, rule.Lift)
	}
}

func joinItems(items []mining.Item) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = string(item)
	}
	return strings.Join(parts, " & ")
}

// writeScreePlot renders the explained-variance ratios as a bar chart.
func writeScreePlot(result *pipeline.Result, path string) error {
	p := plot.New()
	p.Title.Text = "Scree plot"
	p.Y.Label.Text = "Explained variance ratio"

	values := make(plotter.Values, len(result.ExplainedVarianceRatio))
	copy(values, result.ExplainedVarianceRatio)

	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(result.ComponentNames...)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
