package assoc

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/carbocation/pfx"
)

// Columns of the evaluation output tables.
var outputColumns = []string{
	"tissue",
	"trait",
	"cell",
	"n cell",
	"assoc.",
	"hetero.",
	"percentage of associated cells with fdr 0.05",
	"threshold",
	"significance",
}

// WriteEvaluationCSV writes evaluated records as comma-delimited CSV.
// Floats are rounded to 5 decimal places.
func WriteEvaluationCSV(w io.Writer, recs []EvaluatedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(outputColumns); err != nil {
		return pfx.Err(err)
	}

	for _, rec := range recs {
		row := []string{
			rec.Tissue,
			rec.Trait,
			rec.Group,
			strconv.FormatFloat(rec.NCell, 'f', -1, 64),
			formatRounded(rec.AssocMCP),
			formatRounded(rec.HeteroMCP),
			formatRounded(rec.Percent),
			formatRounded(rec.Threshold),
			strconv.FormatBool(rec.Significant),
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

func formatRounded(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e5)/1e5, 'f', -1, 64)
}
