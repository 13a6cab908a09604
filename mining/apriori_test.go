package mining_test

import (
	"math"
	"testing"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
	"github.com/ezoic/heartmine/mining"
)

const epsilon = 1e-12

// support counts the fraction of transactions containing every item.
func support(items []mining.Item, transactions []mining.Transaction) float64 {
	count := 0
	for _, tx := range transactions {
		have := make(map[mining.Item]bool, len(tx))
		for _, item := range tx {
			have[item] = true
		}
		all := true
		for _, item := range items {
			if !have[item] {
				all = false
				break
			}
		}
		if all {
			count++
		}
	}
	return float64(count) / float64(len(transactions))
}

// fourTransactions is a worked example small enough to verify by hand:
//
//	t1: {PC1=low, PC2=high}
//	t2: {PC1=low, PC2=high}
//	t3: {PC1=low, PC2=low}
//	t4: {PC1=high, PC2=low}
func fourTransactions() []mining.Transaction {
	return []mining.Transaction{
		{mining.NewItem("PC1", "low"), mining.NewItem("PC2", "high")},
		{mining.NewItem("PC1", "low"), mining.NewItem("PC2", "high")},
		{mining.NewItem("PC1", "low"), mining.NewItem("PC2", "low")},
		{mining.NewItem("PC1", "high"), mining.NewItem("PC2", "low")},
	}
}

func TestApriori_FrequentItemsets(t *testing.T) {
	miner := mining.NewApriori(
		mining.WithMinSupport(0.5),
		mining.WithMinConfidence(0.6),
	)
	if _, err := miner.Mine(fourTransactions()); err != nil {
		t.Fatalf("Mine failed: %v", err)
	}

	// Frequent: PC1=low (3/4), PC2=high (2/4), PC2=low (2/4) and the pair
	// {PC1=low, PC2=high} (2/4). PC1=high (1/4) falls below support.
	frequent := miner.FrequentItemsets()
	if len(frequent) != 4 {
		t.Fatalf("Expected 4 frequent itemsets, got %d: %v", len(frequent), frequent)
	}

	found := make(map[string]float64, len(frequent))
	for _, itemset := range frequent {
		key := ""
		for _, item := range itemset.Items {
			key += string(item) + ";"
		}
		found[key] = itemset.Support
	}

	expected := map[string]float64{
		"PC1=low;":          0.75,
		"PC2=high;":         0.5,
		"PC2=low;":          0.5,
		"PC1=low;PC2=high;": 0.5,
	}
	for key, want := range expected {
		got, ok := found[key]
		if !ok {
			t.Errorf("Missing frequent itemset %s", key)
			continue
		}
		if math.Abs(got-want) > epsilon {
			t.Errorf("Itemset %s: expected support %v, got %v", key, want, got)
		}
	}
}

func TestApriori_RuleMetrics(t *testing.T) {
	miner := mining.NewApriori(
		mining.WithMinSupport(0.5),
		mining.WithMinConfidence(0.6),
	)
	rules, err := miner.Mine(fourTransactions())
	if err != nil {
		t.Fatalf("Mine failed: %v", err)
	}

	// {PC1=low, PC2=high} yields both directions at confidence 0.6:
	//
	//	PC1=low -> PC2=high: confidence 0.5/0.75 = 2/3, lift (2/3)/0.5 = 4/3
	//	PC2=high -> PC1=low: confidence 0.5/0.5 = 1, lift 1/0.75 = 4/3
	if len(rules) != 2 {
		t.Fatalf("Expected 2 rules, got %d: %v", len(rules), rules)
	}

	for _, rule := range rules {
		if len(rule.Antecedent) != 1 || len(rule.Consequent) != 1 {
			t.Fatalf("Expected single-item antecedent and consequent, got %v", rule)
		}
		if math.Abs(rule.Support-0.5) > epsilon {
			t.Errorf("Rule %v: expected support 0.5, got %v", rule, rule.Support)
		}
		if math.Abs(rule.Lift-4.0/3.0) > epsilon {
			t.Errorf("Rule %v: expected lift 4/3, got %v", rule, rule.Lift)
		}

		switch rule.Antecedent[0] {
		case mining.NewItem("PC1", "low"):
			if math.Abs(rule.Confidence-2.0/3.0) > epsilon {
				t.Errorf("Expected confidence 2/3, got %v", rule.Confidence)
			}
		case mining.NewItem("PC2", "high"):
			if math.Abs(rule.Confidence-1.0) > epsilon {
				t.Errorf("Expected confidence 1, got %v", rule.Confidence)
			}
		default:
			t.Errorf("Unexpected antecedent %v", rule.Antecedent)
		}
	}
}

func TestApriori_RuleSoundness(t *testing.T) {
	// Twelve transactions where PC1 and PC2 mostly move together. Every
	// reported rule must have support, confidence and lift that recompute
	// exactly from the raw transactions, and meet both thresholds.
	var transactions []mining.Transaction
	bins := []string{"low", "medium", "high"}
	for i := 0; i < 12; i++ {
		pc1 := "low"
		if i >= 6 {
			pc1 = "high"
		}
		pc2 := pc1
		if i == 5 || i == 11 {
			pc2 = "medium"
		}
		transactions = append(transactions, mining.Transaction{
			mining.NewItem("PC1", pc1),
			mining.NewItem("PC2", pc2),
			mining.NewItem("PC3", bins[i%3]),
		})
	}

	miner := mining.NewApriori(
		mining.WithMinSupport(0.3),
		mining.WithMinConfidence(0.7),
	)
	rules, err := miner.Mine(transactions)
	if err != nil {
		t.Fatalf("Mine failed: %v", err)
	}
	if len(rules) == 0 {
		t.Fatal("Expected rules from correlated transactions")
	}

	previousLift := math.Inf(1)
	for _, rule := range rules {
		joint := append(append([]mining.Item(nil), rule.Antecedent...), rule.Consequent...)
		wantSupport := support(joint, transactions)
		wantConfidence := wantSupport / support(rule.Antecedent, transactions)
		wantLift := wantConfidence / support(rule.Consequent, transactions)

		if math.Abs(rule.Support-wantSupport) > epsilon {
			t.Errorf("Rule %v: support %v, recomputed %v", rule, rule.Support, wantSupport)
		}
		if math.Abs(rule.Confidence-wantConfidence) > epsilon {
			t.Errorf("Rule %v: confidence %v, recomputed %v", rule, rule.Confidence, wantConfidence)
		}
		if math.Abs(rule.Lift-wantLift) > epsilon {
			t.Errorf("Rule %v: lift %v, recomputed %v", rule, rule.Lift, wantLift)
		}

		if rule.Support < 0.3-epsilon {
			t.Errorf("Rule %v below minimum support", rule)
		}
		if rule.Confidence < 0.7-epsilon {
			t.Errorf("Rule %v below minimum confidence", rule)
		}

		if rule.Lift > previousLift+epsilon {
			t.Errorf("Rules not ordered by descending lift: %v after %v", rule.Lift, previousLift)
		}
		previousLift = rule.Lift
	}
}

func TestApriori_NoFrequentItemsets(t *testing.T) {
	// Every item occurs once; nothing reaches support 0.9.
	transactions := []mining.Transaction{
		{mining.NewItem("PC1", "low")},
		{mining.NewItem("PC1", "medium")},
		{mining.NewItem("PC1", "high")},
	}

	miner := mining.NewApriori(mining.WithMinSupport(0.9))
	_, err := miner.Mine(transactions)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var noFrequent *hmErrors.NoFrequentItemsetsError
	if !hmErrors.As(err, &noFrequent) {
		t.Fatalf("Expected NoFrequentItemsetsError, got %T: %v", err, err)
	}
	if noFrequent.MinSupport != 0.9 {
		t.Errorf("Expected threshold 0.9 in error, got %v", noFrequent.MinSupport)
	}
}

func TestApriori_EmptyTransactions(t *testing.T) {
	miner := mining.NewApriori()
	_, err := miner.Mine(nil)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !hmErrors.Is(err, hmErrors.ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got %v", err)
	}
}

func TestApriori_InvalidThresholds(t *testing.T) {
	transactions := fourTransactions()

	var value *hmErrors.ValueError

	miner := mining.NewApriori(mining.WithMinSupport(0))
	if _, err := miner.Mine(transactions); err == nil || !hmErrors.As(err, &value) {
		t.Errorf("Expected ValueError for min_support=0, got %v", err)
	}

	miner = mining.NewApriori(mining.WithMinConfidence(1.5))
	if _, err := miner.Mine(transactions); err == nil || !hmErrors.As(err, &value) {
		t.Errorf("Expected ValueError for min_confidence>1, got %v", err)
	}
}

func TestTransactionsFromLabels(t *testing.T) {
	columns := []string{"PC1", "PC2"}
	labels := [][]string{
		{"low", "high"},
		{"medium", "medium"},
	}

	transactions := mining.TransactionsFromLabels(columns, labels)
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	if transactions[0][0] != mining.NewItem("PC1", "low") ||
		transactions[0][1] != mining.NewItem("PC2", "high") {
		t.Errorf("Unexpected first transaction: %v", transactions[0])
	}
	if transactions[1][0] != mining.NewItem("PC1", "medium") {
		t.Errorf("Unexpected second transaction: %v", transactions[1])
	}
}
