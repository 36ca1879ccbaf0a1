// mungegs builds a .gs gene-set file from a gene p-value or z-score
// table, selecting and weighting the top genes per trait.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/seirana/wesscdrs"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
	"github.com/seirana/wesscdrs/geneset"
)

func main() {
	var pvalFile, zscoreFile, weight, out string
	var fdr, fwer float64
	var nMin, nMax int
	var verbose bool
	flag.StringVar(&pvalFile, "pval-file", "", "Path to a tab-delimited gene p-value table (GENE column plus one column per trait).")
	flag.StringVar(&zscoreFile, "zscore-file", "", "Path to a tab-delimited gene z-score table. Exactly one of -pval-file and -zscore-file must be set.")
	flag.StringVar(&weight, "weight", geneset.WeightZScore, "Gene weighting: zscore or uniform.")
	flag.Float64Var(&fdr, "fdr", 0, "Select genes at this Benjamini-Hochberg FDR level instead of taking the top -n-max.")
	flag.Float64Var(&fwer, "fwer", 0, "Select genes at this Bonferroni FWER level instead of taking the top -n-max.")
	flag.IntVar(&nMin, "n-min", 100, "Minimum number of genes per trait.")
	flag.IntVar(&nMax, "n-max", 1000, "Maximum number of genes per trait.")
	flag.StringVar(&out, "out", "", "Output .gs path.")
	flag.BoolVar(&verbose, "verbose", false, "Print a histogram of gene weights per trait.")
	flag.Parse()

	if out == "" || (pvalFile == "" && zscoreFile == "") {
		log.Println("mungegs")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if pvalFile != "" && zscoreFile != "" {
		log.Fatalln(geneset.ConfigError("only one of -pval-file and -zscore-file may be set"))
	}

	path, kind := pvalFile, geneset.KindPValue
	if zscoreFile != "" {
		path, kind = zscoreFile, geneset.KindZScore
	}

	r, err := wesscdrs.Open(path)
	if err != nil {
		log.Fatalln(err)
	}
	tbl, err := geneset.ReadStatTable(r, kind)
	r.Close()
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Read %d genes x %d traits from %s", len(tbl.Genes), len(tbl.Traits), path)

	sets, err := geneset.Build(tbl, geneset.BuildOptions{
		Weight: weight,
		FDR:    fdr,
		FWER:   fwer,
		NMin:   nMin,
		NMax:   nMax,
	})
	if err != nil {
		log.Fatalln(err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalln(err)
	}
	if err := geneset.WriteGS(f, sets); err != nil {
		log.Fatalln(err)
	}
	if err := f.Close(); err != nil {
		log.Fatalln(err)
	}

	for _, set := range sets {
		log.Printf("%s: %d genes", set.Trait, len(set.Genes))
		if verbose {
			printWeightHistogram(set)
		}
	}
}

func printWeightHistogram(set geneset.GeneSet) {
	weights := make([]float64, 0, len(set.Genes))
	for _, gw := range set.Genes {
		weights = append(weights, gw.Weight)
	}

	hist := histogram.Hist(10, weights)
	if err := histogram.Fprint(os.Stderr, hist, histogram.Linear(40)); err != nil {
		log.Println(err)
	}
}
