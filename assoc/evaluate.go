package assoc

import (
	"github.com/seirana/wesscdrs/threshold"
)

// Params carries the evaluation constants. MinCellCount must be the same
// value the threshold curve was fitted with.
type Params struct {
	MinCellCount float64
	Floor        float64
}

// Evaluation holds the full derived table for one (tissue, trait) pair and
// the subset passing the significance filters.
type Evaluation struct {
	Tissue string
	Trait  string
	// All has one derived record per input record, in input order.
	All []EvaluatedRecord
	// Significant is the subset with NCell >= MinCellCount,
	// AssocMCP <= 0.05 and NFDR > 0, in input order.
	Significant []EvaluatedRecord
}

// Evaluate derives the significance call for every record of one
// (tissue, trait) pair.
func Evaluate(tissue, trait string, recs []GroupRecord, curve threshold.Curve, p Params) (Evaluation, error) {
	out := Evaluation{
		Tissue: tissue,
		Trait:  trait,
		All:    make([]EvaluatedRecord, 0, len(recs)),
	}

	for _, rec := range recs {
		ev := EvaluatedRecord{
			Tissue:    tissue,
			Trait:     trait,
			Group:     rec.Group,
			NCell:     rec.NCell,
			AssocMCP:  rec.AssocMCP,
			HeteroMCP: rec.HeteroMCP,
			NFDR:      rec.NFDR,
		}

		if rec.NCell > 0 {
			ev.Percent = 100 * rec.NFDR / rec.NCell
		}

		// A group with no FDR-significant cells gets no threshold and can
		// never be called significant.
		if rec.NFDR > 0 && rec.NCell > 0 {
			thr, err := curve.Evaluate(rec.NCell, p.Floor)
			if err != nil {
				return Evaluation{}, err
			}
			ev.Threshold = thr
			ev.Significant = ev.Percent >= thr
		}

		out.All = append(out.All, ev)

		if rec.NCell >= p.MinCellCount && rec.AssocMCP <= 0.05 && rec.NFDR > 0 {
			out.Significant = append(out.Significant, ev)
		}
	}

	return out, nil
}
