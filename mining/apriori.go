// Package mining implements association-rule mining over discretized
// component tables.
//
// Each record becomes a Transaction of (column, bin) items such as "PC1=low".
// Apriori performs the standard level-wise frequent-itemset search: candidate
// k-itemsets are generated from frequent (k-1)-itemsets, pruned by support,
// and the survivors are expanded into rules filtered by confidence. For every
// reported rule
//
//	confidence = support(antecedent ∪ consequent) / support(antecedent)
//	lift       = confidence / support(consequent)
//
// Example usage:
//
//	miner := mining.NewApriori(
//		mining.WithMinSupport(0.1),
//		mining.WithMinConfidence(0.8),
//	)
//	rules, err := miner.Mine(transactions)
package mining

import (
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/pkg/log"
)

// Item is a single (column, bin) observation, rendered as "column=bin".
type Item string

// NewItem builds an Item from a column name and a bin label.
func NewItem(column, bin string) Item {
	return Item(column + "=" + bin)
}

// Transaction is the set of items observed for one record.
type Transaction []Item

// Itemset is a frequent set of items with its support.
type Itemset struct {
	Items   []Item
	Support float64
}

// Rule is a mined implication between two disjoint itemsets.
type Rule struct {
	Antecedent []Item
	Consequent []Item
	Support    float64
	Confidence float64
	Lift       float64
}

// Apriori mines frequent itemsets and association rules from transactions.
type Apriori struct {
	logger log.Logger

	// Hyperparameters
	minSupport    float64
	minConfidence float64

	// Learning parameters
	frequent_ []Itemset
}

// AprioriOption is a configuration option for Apriori.
type AprioriOption func(*Apriori)

// WithMinSupport sets the minimum fraction of transactions an itemset must
// appear in to be considered frequent.
func WithMinSupport(s float64) AprioriOption {
	return func(a *Apriori) {
		a.minSupport = s
	}
}

// WithMinConfidence sets the minimum confidence a rule must reach to be
// reported.
func WithMinConfidence(c float64) AprioriOption {
	return func(a *Apriori) {
		a.minConfidence = c
	}
}

// NewApriori creates an Apriori miner. Defaults: minimum support 0.1,
// minimum confidence 0.8.
func NewApriori(options ...AprioriOption) *Apriori {
	a := &Apriori{
		minSupport:    0.1,
		minConfidence: 0.8,
	}
	for _, opt := range options {
		opt(a)
	}
	a.logger = log.GetLoggerWithName("apriori").With(
		log.ModelNameKey, "Apriori",
		log.ComponentKey, "mining",
	)
	return a
}

// TransactionsFromLabels converts a discretized table (one bin label row per
// record) into transactions over (column, bin) items.
func TransactionsFromLabels(columns []string, labels [][]string) []Transaction {
	transactions := make([]Transaction, len(labels))
	for i, row := range labels {
		tx := make(Transaction, 0, len(row))
		for j, bin := range row {
			tx = append(tx, NewItem(columns[j], bin))
		}
		transactions[i] = tx
	}
	return transactions
}

// Mine runs the level-wise search over transactions and returns the rules
// meeting both thresholds, ordered by descending lift, then support.
//
// Errors:
//   - ErrEmptyData: if transactions is empty
//   - ValueError: if either threshold is outside (0, 1]
//   - NoFrequentItemsetsError: if no single item reaches minimum support
func (a *Apriori) Mine(transactions []Transaction) (_ []Rule, err error) {
	defer hmErrors.Recover(&err, "Apriori.Mine")

	start := time.Now()
	n := len(transactions)
	if n == 0 {
		return nil, hmErrors.NewModelError("Apriori.Mine", "empty data", hmErrors.ErrEmptyData)
	}
	if a.minSupport <= 0 || a.minSupport > 1 {
		return nil, hmErrors.NewValueError("Apriori.Mine", "min_support must be in (0, 1]")
	}
	if a.minConfidence <= 0 || a.minConfidence > 1 {
		return nil, hmErrors.NewValueError("Apriori.Mine", "min_confidence must be in (0, 1]")
	}

	a.logger.Info("Mining started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
	)

	// Transactions as sets for subset counting.
	txSets := make([]mapset.Set, n)
	for i, tx := range transactions {
		s := mapset.NewSet()
		for _, item := range tx {
			s.Add(item)
		}
		txSets[i] = s
	}

	// Level 1: frequent single items.
	itemCounts := make(map[Item]int)
	for _, tx := range transactions {
		seen := make(map[Item]bool, len(tx))
		for _, item := range tx {
			if !seen[item] {
				seen[item] = true
				itemCounts[item]++
			}
		}
	}

	supports := make(map[string]float64)
	var level [][]Item
	for item, count := range itemCounts {
		support := float64(count) / float64(n)
		if support >= a.minSupport {
			level = append(level, []Item{item})
			supports[itemsetKey([]Item{item})] = support
		}
	}
	if len(level) == 0 {
		return nil, hmErrors.NewNoFrequentItemsetsError(a.minSupport)
	}
	sortItemsets(level)

	var frequent []Itemset
	appendLevel := func(level [][]Item) {
		for _, items := range level {
			frequent = append(frequent, Itemset{
				Items:   append([]Item(nil), items...),
				Support: supports[itemsetKey(items)],
			})
		}
	}
	appendLevel(level)

	// Level k from level k-1 until no candidate survives.
	for len(level) > 0 {
		candidates := generateCandidates(level, supports)
		var next [][]Item
		for _, cand := range candidates {
			candSet := mapset.NewSet()
			for _, item := range cand {
				candSet.Add(item)
			}
			count := 0
			for _, txSet := range txSets {
				if candSet.IsSubset(txSet) {
					count++
				}
			}
			support := float64(count) / float64(n)
			if support >= a.minSupport {
				next = append(next, cand)
				supports[itemsetKey(cand)] = support
			}
		}
		sortItemsets(next)
		appendLevel(next)
		level = next
	}

	a.frequent_ = frequent
	rules := a.deriveRules(frequent, supports)

	a.logger.Info("Mining complete",
		log.RulesKey, len(rules),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return rules, nil
}

// FrequentItemsets returns the frequent itemsets found by the last Mine call.
func (a *Apriori) FrequentItemsets() []Itemset {
	out := make([]Itemset, len(a.frequent_))
	copy(out, a.frequent_)
	return out
}

// deriveRules expands every frequent itemset of size >= 2 into candidate
// rules and keeps those meeting the confidence threshold.
func (a *Apriori) deriveRules(frequent []Itemset, supports map[string]float64) []Rule {
	var rules []Rule
	for _, itemset := range frequent {
		k := len(itemset.Items)
		if k < 2 {
			continue
		}
		// Every non-empty proper subset as antecedent.
		for mask := 1; mask < (1<<k)-1; mask++ {
			var antecedent, consequent []Item
			for b := 0; b < k; b++ {
				if mask&(1<<b) != 0 {
					antecedent = append(antecedent, itemset.Items[b])
				} else {
					consequent = append(consequent, itemset.Items[b])
				}
			}
			antSupport := supports[itemsetKey(antecedent)]
			conSupport := supports[itemsetKey(consequent)]
			if antSupport == 0 || conSupport == 0 {
				continue
			}
			confidence := itemset.Support / antSupport
			if confidence < a.minConfidence {
				continue
			}
			rules = append(rules, Rule{
				Antecedent: antecedent,
				Consequent: consequent,
				Support:    itemset.Support,
				Confidence: confidence,
				Lift:       confidence / conSupport,
			})
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Lift != rules[j].Lift {
			return rules[i].Lift > rules[j].Lift
		}
		if rules[i].Support != rules[j].Support {
			return rules[i].Support > rules[j].Support
		}
		return itemsetKey(rules[i].Antecedent) < itemsetKey(rules[j].Antecedent)
	})
	return rules
}

// generateCandidates joins pairs of frequent (k-1)-itemsets sharing their
// first k-2 items and prunes candidates with an infrequent (k-1)-subset.
func generateCandidates(level [][]Item, supports map[string]float64) [][]Item {
	var candidates [][]Item
	for i := 0; i < len(level); i++ {
		for j := i + 1; j < len(level); j++ {
			a, b := level[i], level[j]
			k := len(a)
			joinable := true
			for x := 0; x < k-1; x++ {
				if a[x] != b[x] {
					joinable = false
					break
				}
			}
			if !joinable || a[k-1] >= b[k-1] {
				continue
			}
			cand := make([]Item, k+1)
			copy(cand, a)
			cand[k] = b[k-1]

			if hasInfrequentSubset(cand, supports) {
				continue
			}
			candidates = append(candidates, cand)
		}
	}
	return candidates
}

// hasInfrequentSubset reports whether any (k-1)-subset of cand is missing
// from the frequent-support table.
func hasInfrequentSubset(cand []Item, supports map[string]float64) bool {
	sub := make([]Item, 0, len(cand)-1)
	for drop := 0; drop < len(cand); drop++ {
		sub = sub[:0]
		for i, item := range cand {
			if i != drop {
				sub = append(sub, item)
			}
		}
		if _, ok := supports[itemsetKey(sub)]; !ok {
			return true
		}
	}
	return false
}

// itemsetKey derives a canonical map key from an itemset.
func itemsetKey(items []Item) string {
	sorted := make([]string, len(items))
	for i, item := range items {
		sorted[i] = string(item)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, "\x1f")
}

// sortItemsets orders itemsets lexicographically so candidate generation and
// rule output are deterministic.
func sortItemsets(level [][]Item) {
	for _, items := range level {
		sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	}
	sort.Slice(level, func(i, j int) bool { return itemsetKey(level[i]) < itemsetKey(level[j]) })
}
