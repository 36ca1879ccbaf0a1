package scdrs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/carbocation/runningvariance"
)

// Covariate is one row of the engine's covariate file: cell identifier,
// per-cell gene count, and a constant intercept term.
type Covariate struct {
	CellID string
	NGenes float64
	Const  int
}

// ReadCellMetadata builds covariates from a cell-metadata TSV whose first
// column is the cell identifier and which contains an n_genes column. Cell
// order is preserved.
func ReadCellMetadata(r io.Reader, name string) ([]Covariate, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}

	nGenesCol := -1
	for j, col := range header {
		if col == "n_genes" {
			nGenesCol = j
		}
	}
	if nGenesCol < 0 {
		return nil, fmt.Errorf("scdrs: %s: cell metadata is missing the n_genes column", name)
	}

	var out []Covariate
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		nGenes, err := strconv.ParseFloat(rec[nGenesCol], 64)
		if err != nil {
			return nil, pfx.Err(err)
		}

		out = append(out, Covariate{CellID: rec[0], NGenes: nGenes, Const: 1})
	}

	return out, nil
}

// WriteCovariates writes the tab-delimited covariate file the engine
// expects: cell_id, n_genes, const.
func WriteCovariates(w io.Writer, covs []Covariate) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{"cell_id", "n_genes", "const"}); err != nil {
		return pfx.Err(err)
	}
	for _, cov := range covs {
		row := []string{
			cov.CellID,
			strconv.FormatFloat(cov.NGenes, 'f', -1, 64),
			strconv.Itoa(cov.Const),
		}
		if err := cw.Write(row); err != nil {
			return pfx.Err(err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

// NGenesSummary returns the running mean and standard deviation of the
// per-cell gene counts, for logging alongside the covariate file.
func NGenesSummary(covs []Covariate) (mean, sd float64) {
	rs := runningvariance.NewRunningStat()
	for _, cov := range covs {
		rs.Push(cov.NGenes)
	}
	return rs.Mean(), rs.StandardDeviation()
}
