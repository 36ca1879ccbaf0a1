// evalassoc evaluates the group-level association tables of every
// (tissue, trait) pair against the cell-count threshold curve and
// writes per-pair, per-tissue and aggregate significance tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aybabtme/uniplot/histogram"

	"github.com/seirana/wesscdrs"
	"github.com/seirana/wesscdrs/assoc"
	_ "github.com/seirana/wesscdrs/buildinfo/autoprint"
	"github.com/seirana/wesscdrs/plot"
	"github.com/seirana/wesscdrs/threshold"
)

func main() {
	var tissuesFile, traitsFile, scoresDir, outDir, annotation string
	var minCellCount, upperThreshold, scaleFactor, floor float64
	var workers int
	var verbose bool
	flag.StringVar(&tissuesFile, "tissues", "", "Single-column CSV listing the tissues.")
	flag.StringVar(&traitsFile, "traits", "", "Single-column CSV listing the traits.")
	flag.StringVar(&scoresDir, "scores", "", "Directory holding the per-tissue group-analysis tables.")
	flag.StringVar(&outDir, "out", "", "Output directory; tables are written beneath <out>/Tables.")
	flag.StringVar(&annotation, "annotation", "cell_ontology_class", "Cell annotation the group analysis was run on.")
	flag.Float64Var(&minCellCount, "min-cell-count", threshold.DefaultMinCellCount, "Cell count below which groups are never significant.")
	flag.Float64Var(&upperThreshold, "upper-threshold", threshold.DefaultUpperThreshold, "Threshold at the minimum cell count.")
	flag.Float64Var(&scaleFactor, "scale-factor", threshold.DefaultScaleFactor, "Cell-count multiple at which the curve reaches a hundredth of the upper threshold.")
	flag.Float64Var(&floor, "floor", threshold.DefaultFloor, "Lower bound of the threshold curve.")
	flag.IntVar(&workers, "workers", 1, "Number of pairs evaluated concurrently.")
	flag.BoolVar(&verbose, "verbose", false, "Print a histogram of associated-cell percentages.")
	flag.Parse()

	if tissuesFile == "" || traitsFile == "" || scoresDir == "" || outDir == "" {
		log.Println("evalassoc")
		flag.PrintDefaults()
		os.Exit(1)
	}

	curve, err := threshold.Fit(minCellCount, upperThreshold, scaleFactor)
	if err != nil {
		log.Fatalln(err)
	}

	tissues, err := readNames(tissuesFile)
	if err != nil {
		log.Fatalln(err)
	}
	traits, err := readNames(traitsFile)
	if err != nil {
		log.Fatalln(err)
	}
	log.Printf("Evaluating %d tissues x %d traits", len(tissues), len(traits))

	tablesDir := filepath.Join(outDir, "Tables")
	tissuesDir := filepath.Join(tablesDir, "tissues")
	if err := os.MkdirAll(tissuesDir, 0755); err != nil {
		log.Fatalln(err)
	}

	png, err := plot.ThresholdCurve(curve, minCellCount, minCellCount*scaleFactor, floor)
	if err != nil {
		log.Fatalln(err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "threshold_curve.png"), png, 0644); err != nil {
		log.Fatalln(err)
	}

	batch := assoc.Batch{
		Curve:  curve,
		Params: assoc.Params{MinCellCount: minCellCount, Floor: floor},
		GroupFilePath: func(tissue, trait string) string {
			return filepath.Join(scoresDir, tissue, fmt.Sprintf("%s.scdrs_group.%s", trait, annotation))
		},
		Workers: workers,
	}

	results, err := batch.Run(context.Background(), tissues, traits)
	if err != nil {
		log.Fatalln(err)
	}

	perTissue := map[string][]assoc.EvaluatedRecord{}
	for _, res := range results {
		if res.Skipped {
			continue
		}

		name := fmt.Sprintf("%s_%s.csv", res.Tissue, res.Trait)
		if err := writeTable(filepath.Join(tablesDir, name), res.All); err != nil {
			log.Fatalln(err)
		}

		perTissue[res.Tissue] = append(perTissue[res.Tissue], res.Significant...)
	}

	for _, tissue := range tissues {
		recs := perTissue[tissue]
		if len(recs) == 0 {
			continue
		}
		if err := writeTable(filepath.Join(tissuesDir, tissue+".csv"), recs); err != nil {
			log.Fatalln(err)
		}
	}

	all := assoc.Aggregate(results)
	if err := writeTable(filepath.Join(tissuesDir, "all_traits_tissues_cell_types.csv"), all); err != nil {
		log.Fatalln(err)
	}
	log.Printf("%d significant cell groups across all pairs", len(all))

	if verbose {
		printPercentHistogram(results)
	}
}

func readNames(path string) ([]string, error) {
	r, err := wesscdrs.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	names, err := assoc.ReadNameList(r)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no names in %s", path)
	}

	return names, nil
}

func writeTable(path string, recs []assoc.EvaluatedRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := assoc.WriteEvaluationCSV(f, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printPercentHistogram(results []assoc.PairResult) {
	var percents []float64
	for _, res := range results {
		for _, rec := range res.All {
			percents = append(percents, rec.Percent)
		}
	}
	if len(percents) == 0 {
		return
	}

	log.Println(strings.Repeat("-", 40))
	hist := histogram.Hist(10, percents)
	if err := histogram.Fprint(os.Stderr, hist, histogram.Linear(40)); err != nil {
		log.Println(err)
	}
}
