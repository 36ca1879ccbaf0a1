// runscore drives the external scDRS engine over every trait in a .gs
// gene-set file: per-cell disease relevance scores plus the requested
// downstream analyses.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seirana/wesscdrs"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
	"github.com/seirana/wesscdrs/scdrs"
)

func main() {
	var dataset, datasetSpecies, gsPath, gsSpecies, covFile, cellMeta, ctrlMatch, weightOpt, adjProp, outFolder, bin, groupBy string
	var filterData, rawCount, ctrlRaw, ctrlNorm bool
	var nCtrl int
	var timeout time.Duration
	flag.StringVar(&dataset, "dataset", "", "Path to the .h5ad single-cell dataset.")
	flag.StringVar(&datasetSpecies, "dataset-species", "human", "Species of the dataset genes.")
	flag.StringVar(&gsPath, "gs", "", "Path to the .gs gene-set file.")
	flag.StringVar(&gsSpecies, "gs-species", "human", "Species of the gene-set genes.")
	flag.StringVar(&covFile, "cov", "", "Path to a covariate file. When empty and -cell-meta is set, covariates are built from the cell metadata.")
	flag.StringVar(&cellMeta, "cell-meta", "", "Path to a cell metadata table with an n_genes column, used to build covariates.")
	flag.StringVar(&ctrlMatch, "ctrl-match", scdrs.CtrlMatchMeanVar, "Control gene matching: mean or mean_var.")
	flag.StringVar(&weightOpt, "weight", scdrs.WeightVS, "Cell weighting: uniform, vs, inv_std or od.")
	flag.StringVar(&adjProp, "adj-prop", "", "Cell annotation used to adjust for group proportions; empty disables it.")
	flag.BoolVar(&filterData, "filter-data", true, "Filter cells and genes before scoring.")
	flag.BoolVar(&rawCount, "raw-count", true, "Treat the dataset as raw counts.")
	flag.IntVar(&nCtrl, "n-ctrl", 1000, "Number of control gene sets.")
	flag.BoolVar(&ctrlRaw, "return-ctrl-raw-score", false, "Persist per-control raw scores.")
	flag.BoolVar(&ctrlNorm, "return-ctrl-norm-score", true, "Persist per-control normalized scores.")
	flag.StringVar(&outFolder, "out", "", "Output folder; defaults to the resolved output root.")
	flag.StringVar(&bin, "bin", "scdrs", "Path to the scdrs executable.")
	flag.StringVar(&groupBy, "group-analysis", "cell_ontology_class", "Comma-separated cell annotations for group-level analysis; empty disables it.")
	flag.DurationVar(&timeout, "timeout", 0, "Per-trait time limit for the engine; 0 means none.")
	flag.Parse()

	if dataset == "" || gsPath == "" {
		log.Println("runscore")
		flag.PrintDefaults()
		os.Exit(1)
	}

	paths := wesscdrs.FindPaths(".")
	if outFolder == "" {
		outFolder = paths.Out
	}
	if err := os.MkdirAll(outFolder, 0755); err != nil {
		log.Fatalln(err)
	}

	if covFile == "" && cellMeta != "" {
		built, err := buildCovariates(cellMeta, outFolder)
		if err != nil {
			log.Fatalln(err)
		}
		covFile = built
	}

	opts := scdrs.Options{
		DatasetPath:         dataset,
		DatasetSpecies:      datasetSpecies,
		GeneSetPath:         gsPath,
		GeneSetSpecies:      gsSpecies,
		CovariateFile:       covFile,
		CtrlMatch:           ctrlMatch,
		WeightOpt:           weightOpt,
		AdjProp:             adjProp,
		FilterData:          filterData,
		RawCount:            rawCount,
		NCtrl:               nCtrl,
		ReturnCtrlRawScore:  ctrlRaw,
		ReturnCtrlNormScore: ctrlNorm,
		OutFolder:           outFolder,
		Timeout:             timeout,
	}

	var analyses []scdrs.DownstreamRequest
	if groupBy != "" {
		for _, annot := range strings.Split(groupBy, ",") {
			analyses = append(analyses, scdrs.DownstreamRequest{Kind: scdrs.AnalysisGroup, Annotation: strings.TrimSpace(annot)})
		}
	}

	orch := scdrs.Orchestrator{
		Opts:     opts,
		Engine:   &scdrs.ExternalEngine{Bin: bin},
		Analyses: analyses,
	}
	if err := orch.Run(context.Background()); err != nil {
		log.Fatalln(err)
	}
}

// buildCovariates derives a covariate file (cell_id, n_genes, const) from
// the cell metadata and writes it next to the scoring outputs.
func buildCovariates(cellMeta, outFolder string) (string, error) {
	r, err := wesscdrs.Open(cellMeta)
	if err != nil {
		return "", err
	}
	covs, err := scdrs.ReadCellMetadata(r, cellMeta)
	r.Close()
	if err != nil {
		return "", err
	}

	mean, sd := scdrs.NGenesSummary(covs)
	log.Printf("Built covariates for %d cells (n_genes mean %.1f, sd %.1f)", len(covs), mean, sd)

	out := filepath.Join(outFolder, "covariates.tsv")
	f, err := os.Create(out)
	if err != nil {
		return "", err
	}
	if err := scdrs.WriteCovariates(f, covs); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	return out, nil
}
