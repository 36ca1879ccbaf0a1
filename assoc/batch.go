package assoc

import (
	"context"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/seirana/wesscdrs"
	"github.com/seirana/wesscdrs/threshold"
)

// Batch evaluates every (tissue, trait) pair of a run. Pairs are
// independent, so they may be processed concurrently; the result order is
// always the sequential tissue-major pair order regardless of Workers.
type Batch struct {
	Curve  threshold.Curve
	Params Params

	// GroupFilePath locates the group-analysis table for a pair. A missing
	// file is a warning for that pair, not an error for the run.
	GroupFilePath func(tissue, trait string) string

	// Workers bounds the number of pairs processed concurrently. Zero or
	// one means sequential.
	Workers int
}

// PairResult is the outcome for one (tissue, trait) pair. Skipped results
// have no records.
type PairResult struct {
	Evaluation
	Skipped bool
}

// Run evaluates all pairs, tissue-major in list order.
func (b Batch) Run(ctx context.Context, tissues, traits []string) ([]PairResult, error) {
	type pair struct {
		tissue, trait string
	}

	pairs := make([]pair, 0, len(tissues)*len(traits))
	for _, tissue := range tissues {
		for _, trait := range traits {
			pairs = append(pairs, pair{tissue, trait})
		}
	}

	results := make([]PairResult, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	workers := b.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, pr := range pairs {
		i, pr := i, pr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := b.GroupFilePath(pr.tissue, pr.trait)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				log.Printf("Warning: no group-analysis file for tissue %s trait %s (%s); skipping", pr.tissue, pr.trait, path)
				results[i] = PairResult{
					Evaluation: Evaluation{Tissue: pr.tissue, Trait: pr.trait},
					Skipped:    true,
				}
				return nil
			}

			f, err := wesscdrs.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			recs, err := ReadGroupFile(f, path)
			if err != nil {
				return err
			}

			ev, err := Evaluate(pr.tissue, pr.trait, recs, b.Curve, b.Params)
			if err != nil {
				return err
			}

			results[i] = PairResult{Evaluation: ev}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Aggregate concatenates the significant subsets of all pairs in processing
// order.
func Aggregate(results []PairResult) []EvaluatedRecord {
	var out []EvaluatedRecord
	for _, res := range results {
		out = append(out, res.Significant...)
	}
	return out
}
