package metrics

import (
	"sort"

	hmErrors "github.com/ezoic/heartmine/pkg/errors"
)

// LabelAgreement returns the largest fraction of identical assignments
// between two cluster labelings of the same rows, maximized over all
// injective mappings of b's label symbols onto a's. Label values themselves
// carry no meaning, only the induced partition does.
//
// Intended for small label sets (the search is factorial in the number of
// distinct labels).
//
// Errors:
//   - ErrEmptyData: if the labelings are empty
//   - DimensionError: if a and b have different lengths
func LabelAgreement(a, b []int) (float64, error) {
	if len(a) == 0 {
		return 0, hmErrors.NewModelError("LabelAgreement", "empty data", hmErrors.ErrEmptyData)
	}
	if len(a) != len(b) {
		return 0, hmErrors.NewDimensionError("LabelAgreement", len(a), len(b), 0)
	}

	aLabels := distinctLabels(a)
	bLabels := distinctLabels(b)

	// Confusion counts: how many rows carry (bLabel, aLabel).
	confusion := make(map[int]map[int]int, len(bLabels))
	for _, bl := range bLabels {
		confusion[bl] = make(map[int]int, len(aLabels))
	}
	for i := range a {
		confusion[b[i]][a[i]]++
	}

	used := make(map[int]bool, len(aLabels))
	best := 0
	var assign func(i, matched int)
	assign = func(i, matched int) {
		if i == len(bLabels) {
			if matched > best {
				best = matched
			}
			return
		}
		// Leaving a b-label unmatched is allowed; it simply earns no credit.
		assign(i+1, matched)
		for _, al := range aLabels {
			if used[al] {
				continue
			}
			used[al] = true
			assign(i+1, matched+confusion[bLabels[i]][al])
			used[al] = false
		}
	}
	assign(0, 0)

	return float64(best) / float64(len(a)), nil
}

func distinctLabels(labels []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Ints(out)
	return out
}
