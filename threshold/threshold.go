// Package threshold fits and evaluates the significance-threshold curve
// relating the size of a cell group to the percentage of FDR-significant
// cells required to call the group disease-associated.
//
// The curve has the form threshold(n) = a + b/log10(n) and is pinned by two
// anchor points: upperThreshold percent at minCellCount cells, and
// upperThreshold/scaleFactor percent at minCellCount*scaleFactor cells.
package threshold

import (
	"fmt"
	"math"
)

// Named defaults for the canonical evaluation run. Variant analyses have
// used scaleFactor=100 with floor=1; both knobs are plumbed through as
// flags wherever a curve is fitted.
const (
	DefaultMinCellCount   = 150
	DefaultUpperThreshold = 5
	DefaultScaleFactor    = 1000
	DefaultFloor          = 0.005
)

// Curve is an immutable fitted threshold curve.
type Curve struct {
	A float64
	B float64
}

// DegenerateModelError indicates anchor points from which no curve can be
// fitted.
type DegenerateModelError struct {
	MinCellCount float64
	ScaleFactor  float64
}

func (e DegenerateModelError) Error() string {
	return fmt.Sprintf("threshold: degenerate model: min_cell_count %v and scale_factor %v must both exceed 1", e.MinCellCount, e.ScaleFactor)
}

// InvalidInputError indicates a cell count at which the curve is undefined.
type InvalidInputError struct {
	NCell float64
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("threshold: cannot evaluate curve at n_cell %v (must exceed 1)", e.NCell)
}

// Fit solves for the curve passing through (minCellCount, upperThreshold)
// and (minCellCount*scaleFactor, upperThreshold/scaleFactor). The system is
// linear in a and b and is solved in closed form.
func Fit(minCellCount, upperThreshold, scaleFactor float64) (Curve, error) {
	if minCellCount <= 1 || scaleFactor <= 1 {
		return Curve{}, DegenerateModelError{MinCellCount: minCellCount, ScaleFactor: scaleFactor}
	}

	// a + b/l1 = t and a + b/l2 = t/s, with l1, l2 the log10 of the two
	// anchor cell counts.
	l1 := math.Log10(minCellCount)
	l2 := math.Log10(minCellCount * scaleFactor)

	b := upperThreshold * (1 - 1/scaleFactor) / (1/l1 - 1/l2)
	a := upperThreshold - b/l1

	return Curve{A: a, B: b}, nil
}

// Evaluate returns max(a + b/log10(nCell), floor). The floor guards against
// vanishing or negative thresholds at very large cell counts.
func (c Curve) Evaluate(nCell, floor float64) (float64, error) {
	if nCell <= 1 {
		return 0, InvalidInputError{NCell: nCell}
	}

	return math.Max(c.A+c.B/math.Log10(nCell), floor), nil
}
