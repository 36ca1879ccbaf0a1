package scdrs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/seirana/wesscdrs/geneset"
)

// ExternalEngine shells out to the scdrs command-line tool. The tool
// persists its own score files into Options.OutFolder, so Score returns a
// nil table.
type ExternalEngine struct {
	// Bin is the scdrs executable; "scdrs" if empty.
	Bin string
}

func (e *ExternalEngine) bin() string {
	if e.Bin == "" {
		return "scdrs"
	}
	return e.Bin
}

func (e *ExternalEngine) Score(ctx context.Context, trait string, genes []geneset.GeneWeight, opts Options) (*ScoreTable, error) {
	args := []string{
		"compute-score",
		"--h5ad-file", opts.DatasetPath,
		"--h5ad-species", opts.DatasetSpecies,
		"--gs-file", opts.GeneSetPath,
		"--gs-species", opts.GeneSetSpecies,
		"--ctrl-match-opt", opts.CtrlMatch,
		"--weight-opt", opts.WeightOpt,
		"--flag-filter-data", pyBool(opts.FilterData),
		"--flag-raw-count", pyBool(opts.RawCount),
		"--n-ctrl", strconv.Itoa(opts.NCtrl),
		"--flag-return-ctrl-raw-score", pyBool(opts.ReturnCtrlRawScore),
		"--flag-return-ctrl-norm-score", pyBool(opts.ReturnCtrlNormScore),
		"--out-folder", opts.OutFolder,
	}
	if opts.CovariateFile != "" {
		args = append(args, "--cov-file", opts.CovariateFile)
	}
	if opts.AdjProp != "" {
		args = append(args, "--adj-prop", opts.AdjProp)
	}

	cmd := exec.CommandContext(ctx, e.bin(), args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return nil, nil
}

func (e *ExternalEngine) Downstream(ctx context.Context, trait string, req DownstreamRequest, opts Options) error {
	args := []string{
		"perform-downstream",
		"--h5ad-file", opts.DatasetPath,
		"--score-file", filepath.Join(opts.OutFolder, trait+".full_score.gz"),
		"--out-folder", opts.OutFolder,
		"--flag-filter-data", pyBool(opts.FilterData),
		"--flag-raw-count", pyBool(opts.RawCount),
	}
	switch req.Kind {
	case AnalysisGroup:
		args = append(args, "--group-analysis", req.Annotation)
	case AnalysisCorr:
		args = append(args, "--corr-analysis", req.Annotation)
	case AnalysisGene:
		args = append(args, "--gene-analysis", "true")
	}

	cmd := exec.CommandContext(ctx, e.bin(), args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// The Python CLI parses booleans from their repr.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
