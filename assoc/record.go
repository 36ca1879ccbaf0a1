// Package assoc combines per-cell-group association statistics from the
// scoring engine with the fitted threshold curve to decide which
// tissue/trait/cell-type combinations are disease-associated.
package assoc

import (
	"fmt"
	"strings"
)

// GroupRecord is one raw row of a group-analysis table: the association of
// one cell group (e.g. one cell ontology class) with one trait.
type GroupRecord struct {
	Group     string
	NCell     float64
	AssocMCP  float64
	HeteroMCP float64
	// NFDR counts the group's cells with individual-cell FDR below 0.05.
	NFDR float64
}

// EvaluatedRecord extends a GroupRecord with the derived significance call.
// Records are constructed once and never mutated.
type EvaluatedRecord struct {
	Tissue    string
	Trait     string
	Group     string
	NCell     float64
	AssocMCP  float64
	HeteroMCP float64
	NFDR      float64
	// Percent is the percentage of the group's cells with FDR below 0.05.
	Percent     float64
	Threshold   float64
	Significant bool
}

// SchemaError indicates a group-analysis table missing required columns.
type SchemaError struct {
	File    string
	Missing []string
}

func (e SchemaError) Error() string {
	return fmt.Sprintf("assoc: %s: missing required columns: %s", e.File, strings.Join(e.Missing, ", "))
}
