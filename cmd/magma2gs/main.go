// magma2gs turns MAGMA gene-based test output into scDRS inputs: a
// gene z-score table keyed by symbol, a single-trait .gs gene set, a
// Manhattan plot of the gene-based results, and a table of
// exome-wide significant genes.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/carbocation/pfx"

	"github.com/seirana/wesscdrs"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
	"github.com/seirana/wesscdrs/geneset"
	"github.com/seirana/wesscdrs/magma"
	"github.com/seirana/wesscdrs/mygene"
	"github.com/seirana/wesscdrs/plot"
)

// SignificanceThreshold is the conventional exome-wide significance
// level for gene-based tests.
const SignificanceThreshold = 2.5e-6

func main() {
	var genesOut, trait, lookup, outPrefix, species, source string
	var topN int
	flag.StringVar(&genesOut, "genes-out", "", "Path to the MAGMA .genes.out file.")
	flag.StringVar(&trait, "trait", "", "Trait name for the emitted gene set.")
	flag.StringVar(&lookup, "lookup", "", "Optional two-column gene ID to symbol file. When empty, symbols are fetched from mygene.info.")
	flag.StringVar(&outPrefix, "out", "", "Output prefix; writes <out>.zscore.csv, <out>.gs, <out>.manhattan.png and <out>.significant.csv.")
	flag.StringVar(&species, "species", "human", "Species passed to the symbol lookup service.")
	flag.StringVar(&source, "source", "SAIGE", "Label recorded as the source of the single-marker p-values.")
	flag.IntVar(&topN, "top", 1000, "Number of top genes by z-score to keep.")
	flag.Parse()

	if genesOut == "" || trait == "" || outPrefix == "" {
		log.Println("magma2gs")
		flag.PrintDefaults()
		os.Exit(1)
	}

	r, err := wesscdrs.Open(genesOut)
	if err != nil {
		log.Fatalln(err)
	}
	results, err := magma.ReadGenesOut(r)
	r.Close()
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Read %d gene results from %s", len(results), genesOut)

	top := magma.TopByZStat(results, topN)

	symbols, err := resolveSymbols(top, lookup, species)
	if err != nil {
		log.Fatalln(err)
	}
	for i := range top {
		if sym, ok := symbols[top[i].Gene]; ok && sym != "" {
			top[i].Symbol = sym
		} else {
			top[i].Symbol = top[i].Gene
		}
	}

	if err := writeZScoreTable(outPrefix+".zscore.csv", trait, top); err != nil {
		log.Fatalln(err)
	}

	if err := writeGeneSet(outPrefix+".gs", trait, top); err != nil {
		log.Fatalln(err)
	}

	png, err := plot.Manhattan(results)
	if err != nil {
		log.Fatalln(err)
	}
	if err := os.WriteFile(outPrefix+".manhattan.png", png, 0644); err != nil {
		log.Fatalln(err)
	}

	sig := magma.Significant(results, SignificanceThreshold)
	if err := writeSignificant(outPrefix+".significant.csv", source, sig, symbols); err != nil {
		log.Fatalln(err)
	}
	log.Printf("%d genes reach P <= %g", len(sig), SignificanceThreshold)
}

func resolveSymbols(results []magma.GeneResult, lookup, species string) (map[string]string, error) {
	if lookup != "" {
		// The detector consumes the reader, so open the file twice.
		dr, err := wesscdrs.Open(lookup)
		if err != nil {
			return nil, err
		}
		delim := wesscdrs.DetermineDelimiter(dr)
		dr.Close()

		r, err := wesscdrs.Open(lookup)
		if err != nil {
			return nil, err
		}
		defer r.Close()

		return mygene.ReadLookup(r, delim)
	}

	ids := make([]string, 0, len(results))
	for _, res := range results {
		ids = append(ids, res.Gene)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client := mygene.NewClient()
	return client.Symbols(ctx, ids, species)
}

func writeZScoreTable(path, trait string, results []magma.GeneResult) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	cw.Comma = '\t'

	if err := cw.Write([]string{"GENE", trait}); err != nil {
		return pfx.Err(err)
	}
	for _, res := range results {
		if err := cw.Write([]string{res.Symbol, strconv.FormatFloat(res.ZStat, 'g', -1, 64)}); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func writeGeneSet(path, trait string, results []magma.GeneResult) error {
	weights := make([]geneset.GeneWeight, 0, len(results))
	for _, res := range results {
		weights = append(weights, geneset.GeneWeight{Gene: res.Symbol, Weight: res.ZStat})
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	return geneset.WriteGS(f, []geneset.GeneSet{{Trait: trait, Genes: weights}})
}

func writeSignificant(path, source string, results []magma.GeneResult, symbols map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"gene", "symbol", "chrom", "start", "stop", "n_snps", "zstat", "p", "source"}); err != nil {
		return pfx.Err(err)
	}
	for _, res := range results {
		sym := symbols[res.Gene]
		if sym == "" {
			sym = res.Gene
		}
		if err := cw.Write([]string{
			res.Gene,
			sym,
			res.Chrom,
			strconv.Itoa(res.Start),
			strconv.Itoa(res.Stop),
			strconv.Itoa(res.NSNPs),
			strconv.FormatFloat(res.ZStat, 'g', -1, 64),
			strconv.FormatFloat(res.P, 'g', -1, 64),
			source,
		}); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
