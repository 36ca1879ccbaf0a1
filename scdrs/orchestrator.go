package scdrs

import (
	"context"
	"errors"
	"log"
	"os/exec"

	"github.com/seirana/wesscdrs"
	"github.com/seirana/wesscdrs/geneset"
)

// Traits with fewer genes than this are skipped; the scoring statistics
// are unstable on tiny sets.
const MinGeneSetSize = 10

// Orchestrator drives the external engine over every trait of a gene-set
// file and dispatches the requested downstream analyses.
type Orchestrator struct {
	Opts     Options
	Engine   Engine
	Analyses []DownstreamRequest
}

// Run scores each trait in turn. A failed or timed-out engine call is
// logged with the trait name (and exit code, when there is one) and the
// run continues with the next trait.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.Opts.Validate(); err != nil {
		return err
	}

	f, err := wesscdrs.Open(o.Opts.GeneSetPath)
	if err != nil {
		return err
	}
	sets, err := geneset.ReadGS(f)
	f.Close()
	if err != nil {
		return err
	}
	log.Printf("Loaded %d gene sets from %s", len(sets), o.Opts.GeneSetPath)

	for _, gs := range sets {
		if len(gs.Genes) < MinGeneSetSize {
			log.Printf("Trait %s skipped due to small size (n_gene=%d)", gs.Trait, len(gs.Genes))
			continue
		}

		if err := o.runTrait(ctx, gs); err != nil {
			logEngineFailure(gs.Trait, err)
			continue
		}
	}

	return nil
}

func (o *Orchestrator) runTrait(ctx context.Context, gs geneset.GeneSet) error {
	tctx := ctx
	if o.Opts.Timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, o.Opts.Timeout)
		defer cancel()
	}

	tbl, err := o.Engine.Score(tctx, gs.Trait, gs.Genes, o.Opts)
	if err != nil {
		return err
	}

	// Engines that persist their own outputs return a nil table.
	if tbl != nil {
		if err := PersistScores(tbl, o.Opts); err != nil {
			return err
		}
		logFDRCellCounts(gs.Trait, len(gs.Genes), tbl)
	}

	for _, req := range o.Analyses {
		if err := o.Engine.Downstream(tctx, gs.Trait, req, o.Opts); err != nil {
			return err
		}
		log.Printf("Finished %s-analysis for trait %s", req.Kind, gs.Trait)
	}

	return nil
}

func logFDRCellCounts(trait string, nGene int, tbl *ScoreTable) {
	pvals := make([]float64, 0, len(tbl.Cells))
	for _, cell := range tbl.Cells {
		pvals = append(pvals, cell.Pval)
	}

	adj := geneset.BenjaminiHochberg(pvals)
	var n01, n02 int
	for _, p := range adj {
		if p < 0.1 {
			n01++
		}
		if p < 0.2 {
			n02++
		}
	}

	log.Printf("Trait=%s, n_gene=%d: %d/%d FDR<0.1 cells, %d/%d FDR<0.2 cells", trait, nGene, n01, len(pvals), n02, len(pvals))
}

func logEngineFailure(trait string, err error) {
	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		log.Printf("Warning: scoring trait %s failed with exit code %d; continuing with the next trait", trait, exitErr.ExitCode())
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("Warning: scoring trait %s timed out; continuing with the next trait", trait)
	default:
		log.Printf("Warning: scoring trait %s failed: %v; continuing with the next trait", trait, err)
	}
}
