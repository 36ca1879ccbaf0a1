// Package geneset turns tables of per-gene GWAS statistics into ranked,
// weighted, size-bounded gene sets in the tab-delimited .gs format consumed
// by the single-cell scoring engine.
package geneset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Gene weighting options.
const (
	WeightZScore  = "zscore"
	WeightUniform = "uniform"
)

// Selected p-values are clipped here before the inverse-normal transform so
// the weight stays finite.
const minPValue = 1e-100

// Weights from the inverse-normal transform are capped here.
const maxWeight = 10

// GeneWeight is one weighted member of a gene set.
type GeneWeight struct {
	Gene   string
	Weight float64
}

// GeneSet is a ranked, weighted gene set for one trait. Genes are ordered
// by ascending p-value, most significant first.
type GeneSet struct {
	Trait string
	Genes []GeneWeight
}

// BuildOptions controls gene selection and weighting.
type BuildOptions struct {
	// Weight is one of WeightZScore, WeightUniform.
	Weight string
	// FDR, when positive, selects genes whose Benjamini-Hochberg-adjusted
	// p-value is below it. FWER does the same with Bonferroni adjustment.
	// At most one may be set; with neither, the top NMax genes are taken.
	FDR  float64
	FWER float64
	// The selected count is clamped to [NMin, NMax]. NMin is itself
	// pre-clamped to NMax.
	NMin int
	NMax int
}

func (opts BuildOptions) validate() error {
	if opts.Weight != WeightZScore && opts.Weight != WeightUniform {
		return ConfigError("weight must be one of zscore, uniform; got " + opts.Weight)
	}
	if opts.FDR > 0 && opts.FWER > 0 {
		return ConfigError("at most one of fdr and fwer is allowed")
	}
	if opts.NMax <= 0 {
		return ConfigError("n-max must be positive")
	}
	return nil
}

// Build produces one gene set per trait column of tbl, emitted in
// lexicographic trait order.
func Build(tbl *StatTable, opts BuildOptions) ([]GeneSet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	nMin := opts.NMin
	if nMin > opts.NMax {
		nMin = opts.NMax
	}

	traitCols := make(map[string]int, len(tbl.Traits))
	traits := make([]string, 0, len(tbl.Traits))
	for i, trait := range tbl.Traits {
		traitCols[trait] = i
		traits = append(traits, trait)
	}
	sort.Strings(traits)

	out := make([]GeneSet, 0, len(traits))
	for _, trait := range traits {
		col := traitCols[trait]

		// Gather this trait's genes with a statistic, converting z-scores
		// to one-sided p-values. Row order is preserved so that the stable
		// sort below breaks p-value ties by input order.
		genes := make([]string, 0, len(tbl.Genes))
		pvals := make([]float64, 0, len(tbl.Genes))
		for row, gene := range tbl.Genes {
			v := tbl.Values[row][col]
			if math.IsNaN(v) {
				continue
			}
			if tbl.Kind == KindZScore {
				v = distuv.UnitNormal.Survival(v)
			}
			genes = append(genes, gene)
			pvals = append(pvals, v)
		}

		nGene := opts.NMax
		if opts.FDR > 0 {
			nGene = countBelow(BenjaminiHochberg(pvals), opts.FDR)
		} else if opts.FWER > 0 {
			nGene = countBelow(Bonferroni(pvals), opts.FWER)
		}
		if nGene > opts.NMax {
			nGene = opts.NMax
		}
		if nGene < nMin {
			nGene = nMin
		}
		if nGene > len(genes) {
			nGene = len(genes)
		}

		order := make([]int, len(genes))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			return pvals[order[i]] < pvals[order[j]]
		})

		gs := GeneSet{Trait: trait, Genes: make([]GeneWeight, 0, nGene)}
		for _, idx := range order[:nGene] {
			p := pvals[idx]
			if p < minPValue {
				p = minPValue
			}

			w := 1.0
			if opts.Weight == WeightZScore {
				w = upperTailZ(p)
				if w > maxWeight {
					w = maxWeight
				}
			}

			gs.Genes = append(gs.Genes, GeneWeight{Gene: genes[idx], Weight: w})
		}

		out = append(out, gs)
	}

	return out, nil
}
