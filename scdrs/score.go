package scdrs

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/carbocation/pfx"

	"github.com/seirana/wesscdrs/geneset"
)

// CellScore is one cell's disease-relevance score with its Monte-Carlo
// statistics.
type CellScore struct {
	Cell       string
	RawScore   float64
	NormScore  float64
	MCPval     float64
	Pval       float64
	NLog10Pval float64
	Zscore     float64
	// CtrlNormScores holds the per-control-set normalized scores; empty
	// unless control scores were requested.
	CtrlNormScores []float64
}

// ScoreTable is the per-cell scoring result for one trait.
type ScoreTable struct {
	Trait string
	Cells []CellScore
}

// Engine is the external scoring capability. Score produces per-cell
// scores for one trait's weighted gene set; Downstream runs one follow-up
// analysis over a previously persisted full-score table.
type Engine interface {
	Score(ctx context.Context, trait string, genes []geneset.GeneWeight, opts Options) (*ScoreTable, error)
	Downstream(ctx context.Context, trait string, req DownstreamRequest, opts Options) error
}

// Downstream analysis kinds.
const (
	AnalysisGroup = "group"
	AnalysisCorr  = "corr"
	AnalysisGene  = "gene"
)

// DownstreamRequest names one downstream analysis. Annotation is the
// cell-metadata column for group and corr analyses; gene analysis takes
// none.
type DownstreamRequest struct {
	Kind       string
	Annotation string
}

// OutputName returns the conventional output file name for a trait and
// analysis, e.g. PSC.scdrs_group.cell_ontology_class.
func (r DownstreamRequest) OutputName(trait string) string {
	switch r.Kind {
	case AnalysisGroup:
		return fmt.Sprintf("%s.scdrs_group.%s", trait, r.Annotation)
	case AnalysisCorr:
		return fmt.Sprintf("%s.scdrs_cell_corr", trait)
	default:
		return fmt.Sprintf("%s.scdrs_gene", trait)
	}
}

var compactColumns = []string{"cell", "raw_score", "norm_score", "mc_pval", "pval", "nlog10_pval", "zscore"}

// WriteScore writes the compact per-cell score view as gzipped TSV.
func WriteScore(w io.Writer, tbl *ScoreTable) error {
	return writeScore(w, tbl, false)
}

// WriteFullScore writes the score view including per-control-set scores.
func WriteFullScore(w io.Writer, tbl *ScoreTable) error {
	return writeScore(w, tbl, true)
}

func writeScore(w io.Writer, tbl *ScoreTable, full bool) error {
	gz := gzip.NewWriter(w)
	cw := csv.NewWriter(gz)
	cw.Comma = '\t'

	header := append([]string{}, compactColumns...)
	nCtrl := 0
	if full && len(tbl.Cells) > 0 {
		nCtrl = len(tbl.Cells[0].CtrlNormScores)
		for i := 0; i < nCtrl; i++ {
			header = append(header, fmt.Sprintf("ctrl_norm_score_%d", i))
		}
	}
	if err := cw.Write(header); err != nil {
		return pfx.Err(err)
	}

	for _, cell := range tbl.Cells {
		row := []string{
			cell.Cell,
			formatScore(cell.RawScore),
			formatScore(cell.NormScore),
			formatScore(cell.MCPval),
			formatScore(cell.Pval),
			formatScore(cell.NLog10Pval),
			formatScore(cell.Zscore),
		}
		for i := 0; i < nCtrl; i++ {
			row = append(row, formatScore(cell.CtrlNormScores[i]))
		}
		if err := cw.Write(row); err != nil {
			return pfx.Err(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return pfx.Err(err)
	}
	if err := gz.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PersistScores writes the compact view always and the full view when
// control scores were requested, following the engine's file naming.
func PersistScores(tbl *ScoreTable, opts Options) error {
	f, err := os.Create(filepath.Join(opts.OutFolder, tbl.Trait+".score.gz"))
	if err != nil {
		return pfx.Err(err)
	}
	if err := WriteScore(f, tbl); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	if !opts.ReturnCtrlRawScore && !opts.ReturnCtrlNormScore {
		return nil
	}

	ff, err := os.Create(filepath.Join(opts.OutFolder, tbl.Trait+".full_score.gz"))
	if err != nil {
		return pfx.Err(err)
	}
	if err := WriteFullScore(ff, tbl); err != nil {
		ff.Close()
		return err
	}
	if err := ff.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
