package geneset

import (
	"encoding/csv"
	"io"
	"log"
	"math"
	"strconv"

	"github.com/carbocation/pfx"
)

// Statistic kinds for the input table.
const (
	KindPValue = "pvalue"
	KindZScore = "zscore"
)

// StatTable is a parsed gene-statistic table: one row per gene, one column
// per trait. Missing statistics are stored as NaN. Row order is preserved
// from the input; it is the tie-break order during gene selection.
type StatTable struct {
	Kind   string
	Genes  []string
	Traits []string
	// Values is row-major: Values[gene][trait].
	Values [][]float64
}

// ReadStatTable parses a tab-delimited statistic table whose first column
// holds gene identifiers (header GENE by convention) and whose remaining
// columns hold one trait each. kind declares whether the values are
// p-values or one-sided z-scores; it is never auto-detected, but a table
// whose value range contradicts the declared kind triggers a warning.
func ReadStatTable(r io.Reader, kind string) (*StatTable, error) {
	if kind != KindPValue && kind != KindZScore {
		return nil, ConfigError("statistic kind must be one of pvalue, zscore; got " + kind)
	}

	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(header) < 2 {
		return nil, ConfigError("statistic table needs a gene column plus at least one trait column")
	}

	out := &StatTable{
		Kind:   kind,
		Traits: header[1:],
	}

	seen := make(map[string]bool)
	var duplicates []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		gene := rec[0]
		if seen[gene] {
			duplicates = append(duplicates, gene)
			continue
		}
		seen[gene] = true

		row := make([]float64, len(out.Traits))
		for i, field := range rec[1:] {
			row[i] = math.NaN()
			if field == "" || field == "NA" || field == "NaN" || field == "nan" {
				continue
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, pfx.Err(err)
			}
			row[i] = v
		}

		out.Genes = append(out.Genes, gene)
		out.Values = append(out.Values, row)
	}

	if len(duplicates) > 0 {
		return nil, DuplicateGeneError{Genes: duplicates}
	}

	warnSuspectRange(out)

	return out, nil
}

// warnSuspectRange flags tables whose values do not look like the declared
// statistic kind. The declaration always wins; this only logs.
func warnSuspectRange(tbl *StatTable) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, row := range tbl.Values {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}
	if math.IsInf(min, 1) {
		return
	}

	switch tbl.Kind {
	case KindPValue:
		if min <= 0 || max >= 1 {
			log.Printf("Warning: p-value table has values outside (0, 1): min=%g max=%g", min, max)
		}
	case KindZScore:
		// Genuine z-score tables span negative and large positive values.
		if min >= 0 || max <= 1 {
			log.Printf("Warning: z-score table values do not span (-inf, 0) and (1, inf); it may actually contain p-values (min=%g max=%g)", min, max)
		}
	}
}
