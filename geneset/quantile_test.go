package geneset

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// Reference values from R: qnorm(p, lower.tail = FALSE).
func TestUpperTailZReferenceValues(t *testing.T) {
	for _, v := range []struct {
		p        float64
		expected float64
		tol      float64
	}{
		{0.5, 0, 1e-12},
		{0.05, 1.6448536269514722, 1e-9},
		{0.01, 2.3263478740408408, 1e-9},
		{1e-6, 4.753424308822899, 1e-9},
		{1e-20, 9.262340089798408, 1e-6},
		{1e-100, 21.27345466438747, 1e-5},
	} {
		if got := upperTailZ(v.p); math.Abs(got-v.expected) > v.tol {
			t.Fatalf("upperTailZ(%g) = %v, expected %v", v.p, got, v.expected)
		}
	}
}

func TestQuantileSurvivalRoundTrip(t *testing.T) {
	for p := 1e-12; p <= 0.5; p *= 10 {
		z := upperTailZ(p)
		back := distuv.UnitNormal.Survival(z)
		if math.Abs(back-p)/p > 1e-9 {
			t.Fatalf("Survival(upperTailZ(%g)) = %g; relative error too large", p, back)
		}
	}
}

func TestQuantileSymmetry(t *testing.T) {
	for _, p := range []float64{0.001, 0.01, 0.1, 0.3} {
		if got := normalQuantile(p) + normalQuantile(1-p); math.Abs(got) > 1e-12 {
			t.Fatalf("quantile not symmetric at p=%g: sum=%g", p, got)
		}
	}
}
