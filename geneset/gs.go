package geneset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// gsRow is the on-disk .gs layout: one trait per row, the gene set packed
// into a single comma-delimited field of gene:weight tokens.
type gsRow struct {
	Trait   string `csv:"TRAIT"`
	GeneSet string `csv:"GENESET"`
}

// WriteGS writes gene sets in the tab-delimited .gs format.
func WriteGS(w io.Writer, sets []GeneSet) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{"TRAIT", "GENESET"}); err != nil {
		return pfx.Err(err)
	}
	for _, gs := range sets {
		if err := cw.Write([]string{gs.Trait, FormatGeneSet(gs.Genes)}); err != nil {
			return pfx.Err(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// ReadGS parses a .gs file.
func ReadGS(r io.Reader) ([]GeneSet, error) {
	// A locally constructed reader avoids gocsv's package-global reader
	// factory, so callers may decode concurrently.
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	rows := []*gsRow{}
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]GeneSet, 0, len(rows))
	for _, row := range rows {
		genes, err := ParseGeneSet(row.GeneSet)
		if err != nil {
			return nil, fmt.Errorf("trait %s: %w", row.Trait, err)
		}
		out = append(out, GeneSet{Trait: row.Trait, Genes: genes})
	}

	return out, nil
}

// FormatGeneSet renders gene:weight tokens joined by commas, weights with 5
// significant digits.
func FormatGeneSet(genes []GeneWeight) string {
	tokens := make([]string, 0, len(genes))
	for _, gw := range genes {
		tokens = append(tokens, fmt.Sprintf("%s:%.5g", gw.Gene, gw.Weight))
	}
	return strings.Join(tokens, ",")
}

// ParseGeneSet is the inverse of FormatGeneSet.
func ParseGeneSet(s string) ([]GeneWeight, error) {
	if s == "" {
		return nil, nil
	}

	tokens := strings.Split(s, ",")
	out := make([]GeneWeight, 0, len(tokens))
	for _, token := range tokens {
		sep := strings.LastIndex(token, ":")
		if sep < 1 {
			return nil, fmt.Errorf("geneset: malformed gene:weight token %q", token)
		}
		w, err := strconv.ParseFloat(token[sep+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("geneset: malformed weight in token %q: %w", token, err)
		}
		out = append(out, GeneWeight{Gene: token[:sep], Weight: w})
	}

	return out, nil
}
