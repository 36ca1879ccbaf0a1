package geneset

import "sort"

// BenjaminiHochberg returns BH-adjusted p-values in the input order, with
// the usual reverse monotonicity clamp.
func BenjaminiHochberg(pvals []float64) []float64 {
	n := len(pvals)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool {
		return pvals[idx[i]] < pvals[idx[j]]
	})

	adj := make([]float64, n)
	minP := 1.0
	for i := n - 1; i >= 0; i-- {
		origIdx := idx[i]
		rank := i + 1
		adjusted := pvals[origIdx] * float64(n) / float64(rank)
		if adjusted > 1 {
			adjusted = 1
		}
		if adjusted < minP {
			minP = adjusted
		} else {
			adjusted = minP
		}
		adj[origIdx] = adjusted
	}

	return adj
}

// Bonferroni returns Bonferroni-adjusted p-values in the input order.
func Bonferroni(pvals []float64) []float64 {
	n := len(pvals)
	if n == 0 {
		return nil
	}

	adj := make([]float64, n)
	for i, p := range pvals {
		adjusted := p * float64(n)
		if adjusted > 1 {
			adjusted = 1
		}
		adj[i] = adjusted
	}

	return adj
}

// countBelow counts adjusted p-values strictly below q.
func countBelow(adj []float64, q float64) int {
	n := 0
	for _, p := range adj {
		if p < q {
			n++
		}
	}
	return n
}
